package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FOODDIARY_DB", "FOODDIARY_DEBUG", "FOODDIARY_LOG_LEVEL", "FOODDIARY_LOCALE"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Log.Level != "info" {
		t.Errorf("Expected log.level=info, got %s", cfg.Log.Level)
	}
	if cfg.AutoComplete.DebounceMs != 50 {
		t.Errorf("Expected autocomplete.debounce_ms=50, got %d", cfg.AutoComplete.DebounceMs)
	}
	if cfg.AutoComplete.EmptyQueryLimit != 5 {
		t.Errorf("Expected autocomplete.empty_query_limit=5, got %d", cfg.AutoComplete.EmptyQueryLimit)
	}
	if cfg.UI.Locale != "zh-Hant" {
		t.Errorf("Expected ui.locale=zh-Hant, got %s", cfg.UI.Locale)
	}
	if cfg.UI.ToastMs != 3000 {
		t.Errorf("Expected ui.toast_ms=3000, got %d", cfg.UI.ToastMs)
	}
	if cfg.Storage.Ephemeral {
		t.Error("Expected storage.ephemeral=false")
	}
	if cfg.Debounce() != 50*time.Millisecond {
		t.Errorf("Debounce() = %v", cfg.Debounce())
	}
	if cfg.ToastDuration() != 3*time.Second {
		t.Errorf("ToastDuration() = %v", cfg.ToastDuration())
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfigGet(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key      string
		expected string
	}{
		{"storage.path", ""},
		{"storage.ephemeral", "false"},
		{"log.level", "info"},
		{"log.file", ""},
		{"autocomplete.debounce_ms", "50"},
		{"autocomplete.empty_query_limit", "5"},
		{"ui.locale", "zh-Hant"},
		{"ui.toast_ms", "3000"},
		{"ui.max_item_width", "40"},
		{"backup.dir", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.expected {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"storage.path", "/tmp/diary.db"},
		{"storage.ephemeral", "true"},
		{"log.level", "debug"},
		{"log.file", "/tmp/fooddiary.log"},
		{"autocomplete.debounce_ms", "120"},
		{"autocomplete.empty_query_limit", "8"},
		{"ui.locale", "en"},
		{"ui.toast_ms", "1500"},
		{"ui.max_item_width", "60"},
		{"backup.dir", "/tmp/backups"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q, %q) error = %v", tt.key, tt.value, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.value {
				t.Errorf("Get(%q) after Set = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestConfigGetInvalidKey(t *testing.T) {
	cfg := DefaultConfig()

	for _, key := range []string{"", "log", "log.level.extra", "unknown.key", "log.unknown", "ui.nope", "backup.nope"} {
		t.Run(key, func(t *testing.T) {
			if _, err := cfg.Get(key); err == nil {
				t.Errorf("Get(%q) expected error", key)
			}
		})
	}
}

func TestConfigSetInvalidValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"log.level", "verbose"},
		{"storage.ephemeral", "maybe"},
		{"autocomplete.debounce_ms", "fast"},
		{"autocomplete.debounce_ms", "-1"},
		{"autocomplete.empty_query_limit", "0"},
		{"ui.toast_ms", "-5"},
		{"ui.max_item_width", "wide"},
		{"unknown.key", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.Set(tt.key, tt.value); err == nil {
				t.Errorf("Set(%q, %q) expected error", tt.key, tt.value)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"negative debounce", func(c *Config) { c.AutoComplete.DebounceMs = -1 }, true},
		{"zero debounce", func(c *Config) { c.AutoComplete.DebounceMs = 0 }, false},
		{"zero empty query limit", func(c *Config) { c.AutoComplete.EmptyQueryLimit = 0 }, true},
		{"negative toast", func(c *Config) { c.UI.ToastMs = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMaxItemWidthClamping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI.MaxItemWidth = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.UI.MaxItemWidth != 10 {
		t.Errorf("MaxItemWidth = %d, want 10", cfg.UI.MaxItemWidth)
	}

	cfg.UI.MaxItemWidth = 1000
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.UI.MaxItemWidth != 200 {
		t.Errorf("MaxItemWidth = %d, want 200", cfg.UI.MaxItemWidth)
	}
}

func TestResolvedPaths(t *testing.T) {
	paths := &Paths{ConfigDir: "/cfg", DataDir: "/data"}
	cfg := DefaultConfig()

	if got := cfg.DatabasePath(paths); got != paths.DatabaseFile() {
		t.Errorf("DatabasePath() = %s", got)
	}
	if got := cfg.LogFilePath(paths); got != paths.LogFile() {
		t.Errorf("LogFilePath() = %s", got)
	}
	if got := cfg.BackupDir(paths); got != paths.BackupDir() {
		t.Errorf("BackupDir() = %s", got)
	}

	cfg.Storage.Path = "/x/diary.db"
	cfg.Log.File = "/x/log"
	cfg.Backup.Dir = "/x/backups"
	if got := cfg.DatabasePath(paths); got != "/x/diary.db" {
		t.Errorf("DatabasePath() override = %s", got)
	}
	if got := cfg.LogFilePath(paths); got != "/x/log" {
		t.Errorf("LogFilePath() override = %s", got)
	}
	if got := cfg.BackupDir(paths); got != "/x/backups" {
		t.Errorf("BackupDir() override = %s", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOODDIARY_DB", "/env/diary.db")
	t.Setenv("FOODDIARY_DEBUG", "1")
	t.Setenv("FOODDIARY_LOCALE", "en")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Storage.Path != "/env/diary.db" {
		t.Errorf("storage.path = %s", cfg.Storage.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %s, want debug", cfg.Log.Level)
	}
	if cfg.UI.Locale != "en" {
		t.Errorf("ui.locale = %s, want en", cfg.UI.Locale)
	}

	// An explicit level wins over the debug flag.
	t.Setenv("FOODDIARY_LOG_LEVEL", "warn")
	cfg = DefaultConfig()
	cfg.ApplyEnvOverrides()
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %s, want warn", cfg.Log.Level)
	}

	t.Setenv("FOODDIARY_LOG_LEVEL", "loud")
	t.Setenv("FOODDIARY_DEBUG", "")
	cfg = DefaultConfig()
	cfg.ApplyEnvOverrides()
	if cfg.Log.Level != "info" {
		t.Errorf("invalid FOODDIARY_LOG_LEVEL should be ignored, got %s", cfg.Log.Level)
	}
}

func TestLoadFromFile_NonExistent(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected defaults, got log.level=%s", cfg.Log.Level)
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromFile_InvalidValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("autocomplete:\n  empty_query_limit: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadFromFile_PartialConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "ui:\n  locale: en\nautocomplete:\n  debounce_ms: 200\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.UI.Locale != "en" {
		t.Errorf("ui.locale = %s, want en", cfg.UI.Locale)
	}
	if cfg.AutoComplete.DebounceMs != 200 {
		t.Errorf("autocomplete.debounce_ms = %d, want 200", cfg.AutoComplete.DebounceMs)
	}
	// Unset values keep their defaults
	if cfg.UI.ToastMs != 3000 {
		t.Errorf("ui.toast_ms = %d, want 3000", cfg.UI.ToastMs)
	}
	if cfg.AutoComplete.EmptyQueryLimit != 5 {
		t.Errorf("autocomplete.empty_query_limit = %d, want 5", cfg.AutoComplete.EmptyQueryLimit)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Log.Level = "warn"
	cfg.Storage.Path = "/srv/diary.db"
	cfg.UI.ToastMs = 1000
	cfg.Backup.Dir = "/srv/backups"

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
	}
}

func TestListKeysAllGettableAndSettable(t *testing.T) {
	cfg := DefaultConfig()
	for _, key := range ListKeys() {
		v, err := cfg.Get(key)
		if err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
			continue
		}
		if err := cfg.Set(key, v); err != nil {
			t.Errorf("Set(%q, %q) error = %v", key, v, err)
		}
	}
}

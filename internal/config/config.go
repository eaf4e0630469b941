package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the fooddiary configuration.
type Config struct {
	Storage      StorageConfig      `yaml:"storage"`
	Log          LogConfig          `yaml:"log"`
	AutoComplete AutoCompleteConfig `yaml:"autocomplete"`
	UI           UIConfig           `yaml:"ui"`
	Backup       BackupConfig       `yaml:"backup"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Path      string `yaml:"path"`      // SQLite database path (overrides default)
	Ephemeral bool   `yaml:"ephemeral"` // Keep the diary in memory only
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (overrides default)
}

// AutoCompleteConfig tunes the suggestion widgets.
type AutoCompleteConfig struct {
	DebounceMs      int `yaml:"debounce_ms"`       // Quiet period before suggestions refresh
	EmptyQueryLimit int `yaml:"empty_query_limit"` // Suggestions shown for a blank field
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	Locale       string `yaml:"locale"`         // BCP 47 tag used to order equal-score suggestions
	ToastMs      int    `yaml:"toast_ms"`       // How long notices stay visible
	MaxItemWidth int    `yaml:"max_item_width"` // Suggestion row width before truncation
}

// BackupConfig holds export settings.
type BackupConfig struct {
	Dir string `yaml:"dir"` // Export directory (overrides default)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:      "", // Use default from paths
			Ephemeral: false,
		},
		Log: LogConfig{
			Level: "info",
			File:  "", // Use default from paths
		},
		AutoComplete: AutoCompleteConfig{
			DebounceMs:      50,
			EmptyQueryLimit: 5,
		},
		UI: UIConfig{
			Locale:       "zh-Hant",
			ToastMs:      3000,
			MaxItemWidth: 40,
		},
		Backup: BackupConfig{
			Dir: "", // Use default from paths
		},
	}
}

// Debounce returns the autocomplete debounce delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.AutoComplete.DebounceMs) * time.Millisecond
}

// ToastDuration returns how long notices stay visible.
func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.UI.ToastMs) * time.Millisecond
}

// DatabasePath resolves the database path against paths.
func (c *Config) DatabasePath(paths *Paths) string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return paths.DatabaseFile()
}

// LogFilePath resolves the log file path against paths.
func (c *Config) LogFilePath(paths *Paths) string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return paths.LogFile()
}

// BackupDir resolves the export directory against paths.
func (c *Config) BackupDir(paths *Paths) string {
	if c.Backup.Dir != "" {
		return c.Backup.Dir
	}
	return paths.BackupDir()
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from a specific file.
// A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default config file.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to a specific file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by "section.key".
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "storage":
		return c.getStorageField(field)
	case "log":
		return c.getLogField(field)
	case "autocomplete":
		return c.getAutoCompleteField(field)
	case "ui":
		return c.getUIField(field)
	case "backup":
		return c.getBackupField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by "section.key".
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "storage":
		return c.setStorageField(field, value)
	case "log":
		return c.setLogField(field, value)
	case "autocomplete":
		return c.setAutoCompleteField(field, value)
	case "ui":
		return c.setUIField(field, value)
	case "backup":
		return c.setBackupField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getStorageField(field string) (string, error) {
	switch field {
	case "path":
		return c.Storage.Path, nil
	case "ephemeral":
		return strconv.FormatBool(c.Storage.Ephemeral), nil
	default:
		return "", fmt.Errorf("unknown field: storage.%s", field)
	}
}

func (c *Config) setStorageField(field, value string) error {
	switch field {
	case "path":
		c.Storage.Path = value
	case "ephemeral":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for ephemeral: %w", err)
		}
		c.Storage.Ephemeral = v
	default:
		return fmt.Errorf("unknown field: storage.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

func (c *Config) getAutoCompleteField(field string) (string, error) {
	switch field {
	case "debounce_ms":
		return strconv.Itoa(c.AutoComplete.DebounceMs), nil
	case "empty_query_limit":
		return strconv.Itoa(c.AutoComplete.EmptyQueryLimit), nil
	default:
		return "", fmt.Errorf("unknown field: autocomplete.%s", field)
	}
}

func (c *Config) setAutoCompleteField(field, value string) error {
	switch field {
	case "debounce_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for debounce_ms: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid debounce_ms: must be non-negative")
		}
		c.AutoComplete.DebounceMs = v
	case "empty_query_limit":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for empty_query_limit: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid empty_query_limit: must be at least 1")
		}
		c.AutoComplete.EmptyQueryLimit = v
	default:
		return fmt.Errorf("unknown field: autocomplete.%s", field)
	}
	return nil
}

func (c *Config) getUIField(field string) (string, error) {
	switch field {
	case "locale":
		return c.UI.Locale, nil
	case "toast_ms":
		return strconv.Itoa(c.UI.ToastMs), nil
	case "max_item_width":
		return strconv.Itoa(c.UI.MaxItemWidth), nil
	default:
		return "", fmt.Errorf("unknown field: ui.%s", field)
	}
}

func (c *Config) setUIField(field, value string) error {
	switch field {
	case "locale":
		c.UI.Locale = value
	case "toast_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for toast_ms: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid toast_ms: must be non-negative")
		}
		c.UI.ToastMs = v
	case "max_item_width":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_item_width: %w", err)
		}
		c.UI.MaxItemWidth = v
	default:
		return fmt.Errorf("unknown field: ui.%s", field)
	}
	return nil
}

func (c *Config) getBackupField(field string) (string, error) {
	switch field {
	case "dir":
		return c.Backup.Dir, nil
	default:
		return "", fmt.Errorf("unknown field: backup.%s", field)
	}
}

func (c *Config) setBackupField(field, value string) error {
	switch field {
	case "dir":
		c.Backup.Dir = value
	default:
		return fmt.Errorf("unknown field: backup.%s", field)
	}
	return nil
}

// Validate checks the configuration. Out-of-range display settings are
// clamped rather than rejected.
func (c *Config) Validate() error {
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	if c.AutoComplete.DebounceMs < 0 {
		return errors.New("autocomplete.debounce_ms must be >= 0")
	}

	if c.AutoComplete.EmptyQueryLimit < 1 {
		return errors.New("autocomplete.empty_query_limit must be >= 1")
	}

	if c.UI.ToastMs < 0 {
		return errors.New("ui.toast_ms must be >= 0")
	}

	// Clamp suggestion width to [10, 200]
	if c.UI.MaxItemWidth < 10 {
		c.UI.MaxItemWidth = 10
	}
	if c.UI.MaxItemWidth > 200 {
		c.UI.MaxItemWidth = 200
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FOODDIARY_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("FOODDIARY_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("FOODDIARY_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
	if v := os.Getenv("FOODDIARY_LOCALE"); v != "" {
		c.UI.Locale = v
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"storage.path",
		"storage.ephemeral",
		"log.level",
		"log.file",
		"autocomplete.debounce_ms",
		"autocomplete.empty_query_limit",
		"ui.locale",
		"ui.toast_ms",
		"ui.max_item_width",
		"backup.dir",
	}
}

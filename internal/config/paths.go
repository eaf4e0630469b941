// Package config provides configuration management for fooddiary.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "fooddiary"

// Paths holds all the path configurations for fooddiary.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/fooddiary)
	ConfigDir string

	// DataDir is the directory for the diary database and logs (~/.local/share/fooddiary)
	DataDir string
}

// DefaultPaths returns the default paths based on XDG Base Directory spec.
// On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir: filepath.Join(appData, appName),
			DataDir:   filepath.Join(localAppData, appName),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, appName),
		DataDir:   filepath.Join(dataHome, appName),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DatabaseFile returns the path to the SQLite database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "diary.db")
}

// LogDir returns the path to the log directory.
func (p *Paths) LogDir() string {
	return filepath.Join(p.DataDir, "logs")
}

// LogFile returns the path to the application log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogDir(), appName+".log")
}

// BackupDir returns the default directory for exported backups.
func (p *Paths) BackupDir() string {
	return filepath.Join(p.DataDir, "backups")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.LogDir(), p.BackupDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}

// Package config provides program configuration for deskshell: where
// state lives, how chatty the logs are, and which optional features
// run. The desktop settings record itself is owned by the settings
// package; this file only configures the process.
//
// Config file location:
//   - Windows: %APPDATA%\Deskshell\deskshell.conf
//   - Unix: ~/.config/deskshell/deskshell.conf
//
// INI format:
//
//	[shell]
//	log_level = info
//	state_dir =
//	cache_dir =
//	notifications = false
//	watch_settings = true
//	debounce_ms = 150
//
// Environment variables (DESKSHELL_*) override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"gopkg.in/ini.v1"
)

// ShellConfig is the process configuration.
type ShellConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `ini:"log_level" env:"DESKSHELL_LOG_LEVEL"`

	// StateDir holds the persisted settings record and hidden-apps
	// set. Empty means the platform default.
	StateDir string `ini:"state_dir" env:"DESKSHELL_STATE_DIR"`

	// CacheDir holds fetched icon assets. Empty means the platform
	// default.
	CacheDir string `ini:"cache_dir" env:"DESKSHELL_CACHE_DIR"`

	// Notifications enables desktop popups for settings outcomes.
	Notifications bool `ini:"notifications" env:"DESKSHELL_NOTIFICATIONS"`

	// WatchSettings re-publishes settings when the file changes on
	// disk (external edits).
	WatchSettings bool `ini:"watch_settings" env:"DESKSHELL_WATCH_SETTINGS"`

	// DebounceMS coalesces display-event re-renders. Valid range
	// 50–1000.
	DebounceMS int `ini:"debounce_ms" env:"DESKSHELL_DEBOUNCE_MS"`
}

// ErrInvalidDebounce reports an out-of-range debounce_ms value.
var ErrInvalidDebounce = errors.New("debounce_ms must be between 50 and 1000")

// NewShellConfig returns the default configuration.
func NewShellConfig() *ShellConfig {
	return &ShellConfig{
		LogLevel:      "info",
		StateDir:      "",
		CacheDir:      "",
		Notifications: false,
		WatchSettings: true,
		DebounceMS:    150,
	}
}

// DefaultConfigPath returns the default path of deskshell.conf.
func DefaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "deskshell.conf"), nil
}

func configDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA environment variable not set")
		}
		return filepath.Join(appData, "Deskshell"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "deskshell"), nil
}

// DefaultStateDir returns the platform default for persisted shell
// state.
func DefaultStateDir() string {
	dir, err := configDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "deskshell", "state")
	}
	return filepath.Join(dir, "state")
}

// DefaultCacheDir returns the platform default for the icon cache.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "deskshell", "cache")
	}
	return filepath.Join(dir, "deskshell", "icons")
}

// Load reads configuration: defaults, then the INI file (missing file
// is fine), then environment overrides. An unreadable or malformed
// file is an error; empty path means the default location.
func Load(path string) (*ShellConfig, error) {
	cfg := NewShellConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			path = "" // fall through to env-only
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			iniFile, err := ini.Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load deskshell.conf: %w", err)
			}
			section := iniFile.Section("shell")
			cfg.LogLevel = section.Key("log_level").MustString(cfg.LogLevel)
			cfg.StateDir = section.Key("state_dir").MustString(cfg.StateDir)
			cfg.CacheDir = section.Key("cache_dir").MustString(cfg.CacheDir)
			cfg.Notifications = section.Key("notifications").MustBool(cfg.Notifications)
			cfg.WatchSettings = section.Key("watch_settings").MustBool(cfg.WatchSettings)
			cfg.DebounceMS = section.Key("debounce_ms").MustInt(cfg.DebounceMS)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir()
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path (default location when empty),
// creating parent directories and using a tmp+rename write.
func Save(cfg *ShellConfig, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()
	section, err := iniFile.NewSection("shell")
	if err != nil {
		return fmt.Errorf("failed to create shell section: %w", err)
	}
	section.Key("log_level").SetValue(cfg.LogLevel)
	section.Key("state_dir").SetValue(cfg.StateDir)
	section.Key("cache_dir").SetValue(cfg.CacheDir)
	section.Key("notifications").SetValue(fmt.Sprintf("%t", cfg.Notifications))
	section.Key("watch_settings").SetValue(fmt.Sprintf("%t", cfg.WatchSettings))
	section.Key("debounce_ms").SetValue(fmt.Sprintf("%d", cfg.DebounceMS))

	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (cfg *ShellConfig) Validate() error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.DebounceMS < 50 || cfg.DebounceMS > 1000 {
		return ErrInvalidDebounce
	}
	return nil
}

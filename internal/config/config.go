package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dori/airtrack/internal/fsutil"
	"github.com/dori/airtrack/internal/snooze"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables. A double underscore
// separates nesting levels, so AIRTRACK_LOCK__IDLE_MINUTES sets
// lock.idle_minutes.
const EnvPrefix = "AIRTRACK_"

type Config struct {
	DataDir   string         `koanf:"data_dir"`
	Log       LogConfig      `koanf:"log"`
	Reminders ReminderConfig `koanf:"reminders"`
	Lock      LockConfig     `koanf:"lock"`
	Backup    BackupConfig   `koanf:"backup"`
	History   HistoryConfig  `koanf:"history"`
	UI        UIConfig       `koanf:"ui"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type ReminderConfig struct {
	Enabled         bool `koanf:"enabled"`
	IntervalSeconds int  `koanf:"interval_seconds"`
	SnoozeMinutes   int  `koanf:"snooze_minutes"`
	Desktop         bool `koanf:"desktop"`
}

type LockConfig struct {
	IdleMinutes  int `koanf:"idle_minutes"`
	CheckSeconds int `koanf:"check_seconds"`
}

type BackupConfig struct {
	Enabled       bool `koanf:"enabled"`
	IntervalHours int  `koanf:"interval_hours"`
	CheckMinutes  int  `koanf:"check_minutes"`
	Keep          int  `koanf:"keep"`
}

type HistoryConfig struct {
	RetentionDays int `koanf:"retention_days"`
}

type UIConfig struct {
	Theme string `koanf:"theme"`
}

// DefaultConfigPath returns ~/.config/airtrack/config.yaml
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "airtrack", "config.yaml")
}

// DefaultDataDir returns the default data directory path
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".airtrack"
	}
	return filepath.Join(home, ".local", "share", "airtrack")
}

// Load layers defaults, the YAML file at configPath (if it exists) and
// AIRTRACK_ environment variables.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := loadEnv(k); err != nil {
		return nil, err
	}

	// Settings changed from inside the app live in the data directory and
	// sit between the config file and the environment.
	dataDir := k.String("data_dir")
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	settings := NewPaths(expandPath(dataDir)).SettingsFile
	if _, err := os.Stat(settings); err == nil {
		if err := k.Load(file.Provider(settings), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		if err := loadEnv(k); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	cfg.DataDir = expandPath(cfg.DataDir)

	return &cfg, nil
}

func loadEnv(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return fmt.Errorf("failed to load env vars: %w", err)
	}
	return nil
}

// SaveSettings writes the settings that can be changed at runtime
func (c *Config) SaveSettings() error {
	k := koanf.New(".")
	err := k.Load(confmap.Provider(map[string]interface{}{
		"reminders.enabled":        c.Reminders.Enabled,
		"reminders.snooze_minutes": c.Reminders.SnoozeMinutes,
		"reminders.desktop":        c.Reminders.Desktop,
		"backup.enabled":           c.Backup.Enabled,
		"ui.theme":                 c.UI.Theme,
	}, "."), nil)
	if err != nil {
		return err
	}
	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := fsutil.WriteAtomic(c.Paths().SettingsFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Reminders.IntervalSeconds <= 0 {
		return fmt.Errorf("reminders.interval_seconds must be positive")
	}
	if !slices.Contains(snooze.Options, c.Reminders.SnoozeMinutes) {
		return fmt.Errorf("reminders.snooze_minutes must be one of %v", snooze.Options)
	}
	if c.Lock.IdleMinutes <= 0 {
		return fmt.Errorf("lock.idle_minutes must be positive")
	}
	if c.Lock.CheckSeconds <= 0 {
		return fmt.Errorf("lock.check_seconds must be positive")
	}
	if c.Backup.IntervalHours <= 0 || c.Backup.CheckMinutes <= 0 {
		return fmt.Errorf("backup intervals must be positive")
	}
	if c.Backup.Keep < 0 || c.History.RetentionDays < 0 {
		return fmt.Errorf("backup.keep and history.retention_days cannot be negative")
	}
	return nil
}

func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.Reminders.IntervalSeconds) * time.Second
}

func (c *Config) SnoozeDuration() time.Duration {
	return time.Duration(c.Reminders.SnoozeMinutes) * time.Minute
}

func (c *Config) IdleThreshold() time.Duration {
	return time.Duration(c.Lock.IdleMinutes) * time.Minute
}

func (c *Config) LockCheckInterval() time.Duration {
	return time.Duration(c.Lock.CheckSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) BackupCheckInterval() time.Duration {
	return time.Duration(c.Backup.CheckMinutes) * time.Minute
}

// HistoryRetention is zero when events are never pruned
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
}

func (c *Config) Paths() Paths {
	return NewPaths(c.DataDir)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

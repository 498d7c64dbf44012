package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("AIRTRACK_DATA_DIR", dataDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.DataDir != dataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dataDir)
	}
	if cfg.ReminderInterval() != time.Minute {
		t.Errorf("ReminderInterval = %v", cfg.ReminderInterval())
	}
	if cfg.SnoozeDuration() != 30*time.Minute {
		t.Errorf("SnoozeDuration = %v", cfg.SnoozeDuration())
	}
	if cfg.IdleThreshold() != 10*time.Minute {
		t.Errorf("IdleThreshold = %v", cfg.IdleThreshold())
	}
	if cfg.BackupInterval() != 24*time.Hour || cfg.BackupCheckInterval() != time.Hour {
		t.Errorf("backup intervals = %v / %v", cfg.BackupInterval(), cfg.BackupCheckInterval())
	}
	if !cfg.Reminders.Enabled {
		t.Error("reminders should be enabled by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("data_dir: " + dir + "\nreminders:\n  snooze_minutes: 60\nlock:\n  idle_minutes: 5\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AIRTRACK_LOCK__IDLE_MINUTES", "15")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reminders.SnoozeMinutes != 60 {
		t.Errorf("snooze_minutes = %d, want 60 from file", cfg.Reminders.SnoozeMinutes)
	}
	if cfg.Lock.IdleMinutes != 15 {
		t.Errorf("idle_minutes = %d, want 15 from env", cfg.Lock.IdleMinutes)
	}
}

func TestValidateRejectsOddSnooze(t *testing.T) {
	t.Setenv("AIRTRACK_DATA_DIR", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Reminders.SnoozeMinutes = 7
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for snooze_minutes outside the offered choices")
	}
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	p := NewPaths(dir)
	if err := p.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p.PasswordFile != filepath.Join(dir, "security", "password.txt") {
		t.Errorf("PasswordFile = %q", p.PasswordFile)
	}
	if _, err := os.Stat(p.BackupDir); err != nil {
		t.Errorf("backup dir not created: %v", err)
	}
}

func TestSaveSettingsIsLayeredUnderEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AIRTRACK_DATA_DIR", dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Reminders.SnoozeMinutes = 120
	cfg.Backup.Enabled = false
	cfg.UI.Theme = "dracula"
	if err := cfg.SaveSettings(); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	t.Setenv("AIRTRACK_UI__THEME", "gruvbox")
	reloaded, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Reminders.SnoozeMinutes != 120 || reloaded.Backup.Enabled {
		t.Fatalf("settings not restored: %+v", reloaded)
	}
	if reloaded.UI.Theme != "gruvbox" {
		t.Fatalf("env should win over saved settings, theme = %q", reloaded.UI.Theme)
	}
}

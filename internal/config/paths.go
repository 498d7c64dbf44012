package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the on-disk layout under the data directory
type Paths struct {
	DataDir      string
	DataFile     string
	SnoozeFile   string
	SettingsFile string
	HistoryDB    string
	LockFile     string
	LogFile      string
	SecurityDir  string
	PasswordFile string
	RecoveryFile string
	BackupDir    string
}

func NewPaths(dataDir string) Paths {
	security := filepath.Join(dataDir, "security")
	return Paths{
		DataDir:      dataDir,
		DataFile:     filepath.Join(dataDir, "airdrop_data.xlsx"),
		SnoozeFile:   filepath.Join(dataDir, "snooze_data.json"),
		SettingsFile: filepath.Join(dataDir, "settings.yaml"),
		HistoryDB:    filepath.Join(dataDir, "history.db"),
		LockFile:     filepath.Join(dataDir, "airtrack.lock"),
		LogFile:      filepath.Join(dataDir, "airtrack.log"),
		SecurityDir:  security,
		PasswordFile: filepath.Join(security, "password.txt"),
		RecoveryFile: filepath.Join(security, "recovery.json"),
		BackupDir:    filepath.Join(dataDir, "backups"),
	}
}

// Ensure creates the data, security and backup directories
func (p Paths) Ensure() error {
	for _, dir := range []string{p.DataDir, p.SecurityDir, p.BackupDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

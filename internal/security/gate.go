package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dori/airtrack/internal/fsutil"
)

// ErrNoPassword is returned by Verify before a password has been set
var ErrNoPassword = errors.New("no password has been set")

// Gate guards the application with a single password stored in a file
type Gate struct {
	path string
}

func NewGate(path string) *Gate {
	return &Gate{path: path}
}

// Path returns the password file location
func (g *Gate) Path() string {
	return g.path
}

// IsSet reports whether a password file exists
func (g *Gate) IsSet() bool {
	_, err := os.Stat(g.path)
	return err == nil
}

// Set hashes and stores password, replacing any previous one
func (g *Gate) Set(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(g.path), 0o700); err != nil {
		return fmt.Errorf("failed to create security directory: %w", err)
	}
	if err := fsutil.WriteAtomic(g.path, []byte(hashed), 0o600); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}
	return nil
}

// Verify checks password against the stored hash
func (g *Gate) Verify(password string) error {
	data, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoPassword
	}
	if err != nil {
		return fmt.Errorf("failed to read password file: %w", err)
	}
	return VerifyPassword(strings.TrimSpace(string(data)), password)
}

// SetOrVerify stores password on first run and verifies it afterwards.
// The returned bool is true when a new password was stored.
func (g *Gate) SetOrVerify(password string) (bool, error) {
	if !g.IsSet() {
		if err := g.Set(password); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, g.Verify(password)
}

// Change replaces the password after checking the current one
func (g *Gate) Change(current, next string) error {
	if err := g.Verify(current); err != nil {
		return err
	}
	return g.Set(next)
}

package security

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dori/airtrack/internal/fsutil"
)

var (
	ErrNoRecovery      = errors.New("no security question has been set")
	ErrIncorrectAnswer = errors.New("incorrect answer")
	ErrEmptyRecovery   = errors.New("question and answer are required")
)

type recoveryFile struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Recovery holds the security question used to reset a forgotten password.
// The answer is stored lower-cased and compared case-insensitively.
type Recovery struct {
	path string
}

func NewRecovery(path string) *Recovery {
	return &Recovery{path: path}
}

// Has reports whether a question has been configured
func (r *Recovery) Has() bool {
	_, err := r.load()
	return err == nil
}

// Setup stores a question and answer, replacing any previous pair
func (r *Recovery) Setup(question, answer string) error {
	question = strings.TrimSpace(question)
	answer = normalizeAnswer(answer)
	if question == "" || answer == "" {
		return ErrEmptyRecovery
	}
	data, err := json.MarshalIndent(recoveryFile{Question: question, Answer: answer}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("failed to create security directory: %w", err)
	}
	if err := fsutil.WriteAtomic(r.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to save recovery data: %w", err)
	}
	return nil
}

// Question returns the configured question
func (r *Recovery) Question() (string, error) {
	f, err := r.load()
	if err != nil {
		return "", err
	}
	return f.Question, nil
}

// Check compares answer with the stored one ignoring case
func (r *Recovery) Check(answer string) error {
	f, err := r.load()
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(normalizeAnswer(answer)), []byte(f.Answer)) != 1 {
		return ErrIncorrectAnswer
	}
	return nil
}

// Reset sets a new password on gate without the old one
func (r *Recovery) Reset(gate *Gate, answer, newPassword string) error {
	if err := r.Check(answer); err != nil {
		return err
	}
	return gate.Set(newPassword)
}

func (r *Recovery) load() (recoveryFile, error) {
	var f recoveryFile
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, ErrNoRecovery
	}
	if err != nil {
		return f, fmt.Errorf("failed to read recovery data: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to parse recovery data: %w", err)
	}
	if f.Question == "" {
		return f, ErrNoRecovery
	}
	return f, nil
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

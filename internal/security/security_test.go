package security

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashRoundTrip(t *testing.T) {
	stored, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	// 64 hex salt + 128 hex digest
	if len(stored) != SaltLen+128 {
		t.Fatalf("stored length = %d", len(stored))
	}
	if _, err := hex.DecodeString(stored); err != nil {
		t.Fatalf("stored value is not hex: %v", err)
	}

	if err := VerifyPassword(stored, "hunter2"); err != nil {
		t.Fatalf("VerifyPassword(correct) = %v", err)
	}
	if err := VerifyPassword(stored, "hunter3"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("VerifyPassword(wrong) = %v", err)
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, _ := HashPassword("same")
	b, _ := HashPassword("same")
	if a[:SaltLen] == b[:SaltLen] {
		t.Fatal("two hashes share a salt")
	}
}

func TestVerifyMalformed(t *testing.T) {
	if err := VerifyPassword("short", "x"); !errors.Is(err, ErrMalformedHash) {
		t.Fatalf("got %v", err)
	}
}

func TestGateSetOrVerify(t *testing.T) {
	g := NewGate(filepath.Join(t.TempDir(), "security", "password.txt"))

	if err := g.Verify("x"); !errors.Is(err, ErrNoPassword) {
		t.Fatalf("Verify before set = %v", err)
	}
	if _, err := g.SetOrVerify(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("empty password = %v", err)
	}

	created, err := g.SetOrVerify("secret")
	if err != nil || !created {
		t.Fatalf("first SetOrVerify = %v, %v", created, err)
	}
	created, err = g.SetOrVerify("secret")
	if err != nil || created {
		t.Fatalf("second SetOrVerify = %v, %v", created, err)
	}
	if _, err := g.SetOrVerify("wrong"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("wrong password = %v", err)
	}

	info, err := os.Stat(g.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("password file mode = %v", info.Mode().Perm())
	}
}

func TestGateChange(t *testing.T) {
	g := NewGate(filepath.Join(t.TempDir(), "password.txt"))
	if err := g.Set("old"); err != nil {
		t.Fatal(err)
	}
	if err := g.Change("nope", "new"); !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("Change with wrong current = %v", err)
	}
	if err := g.Change("old", "new"); err != nil {
		t.Fatalf("Change: %v", err)
	}
	if err := g.Verify("new"); err != nil {
		t.Fatalf("Verify(new) = %v", err)
	}
}

func TestReadsLegacyFileWithNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password.txt")
	stored, err := HashPassword("legacy")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(stored+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := NewGate(path).Verify("legacy"); err != nil {
		t.Fatalf("Verify = %v", err)
	}
}

func TestRecovery(t *testing.T) {
	dir := t.TempDir()
	gate := NewGate(filepath.Join(dir, "password.txt"))
	rec := NewRecovery(filepath.Join(dir, "recovery.json"))

	if rec.Has() {
		t.Fatal("Has() before setup")
	}
	if err := rec.Check("x"); !errors.Is(err, ErrNoRecovery) {
		t.Fatalf("Check before setup = %v", err)
	}
	if err := rec.Setup("First pet?", "  Rex "); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "recovery.json"))
	if !strings.Contains(string(data), `"answer": "rex"`) {
		t.Fatalf("answer not stored lower-cased: %s", data)
	}

	q, err := rec.Question()
	if err != nil || q != "First pet?" {
		t.Fatalf("Question() = %q, %v", q, err)
	}
	if err := rec.Check("REX"); err != nil {
		t.Fatalf("case-insensitive Check = %v", err)
	}
	if err := rec.Reset(gate, "fido", "new"); !errors.Is(err, ErrIncorrectAnswer) {
		t.Fatalf("Reset with wrong answer = %v", err)
	}
	if err := rec.Reset(gate, "rex", "new"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := gate.Verify("new"); err != nil {
		t.Fatalf("Verify after reset = %v", err)
	}
}

package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLen is the length of the hex salt prefix in a stored hash
	SaltLen    = 64
	iterations = 100000
	keyLen     = 64
	saltSource = 60
)

var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrMalformedHash     = errors.New("stored password hash is malformed")
)

// HashPassword returns salt‖hex-digest. The salt is the hex SHA-256 of 60
// random bytes and is used as ASCII bytes when deriving the key, which
// keeps files written by earlier versions verifiable.
func HashPassword(password string) (string, error) {
	raw := make([]byte, saltSource)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	sum := sha256.Sum256(raw)
	salt := hex.EncodeToString(sum[:])
	return salt + digest(password, salt), nil
}

// VerifyPassword recomputes the digest with the stored salt
func VerifyPassword(stored, password string) error {
	if len(stored) <= SaltLen {
		return ErrMalformedHash
	}
	salt, want := stored[:SaltLen], stored[SaltLen:]
	got := digest(password, salt)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return ErrIncorrectPassword
	}
	return nil
}

func digest(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLen, sha512.New)
	return hex.EncodeToString(key)
}

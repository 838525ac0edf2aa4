package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 100000
	keyLength      = 32
	saltLength     = 32
)

// HashPassword derives a PBKDF2-SHA256 key from the password and salt.
// Passwords are case-insensitive on this system and are upper-cased
// before hashing, matching 5250 sign-on behavior.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(strings.ToUpper(password)), []byte(salt), hashIterations, keyLength, sha256.New)
	return hex.EncodeToString(key)
}

// NewSalt returns a random hex salt.
func NewSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(password, salt, storedHash string) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

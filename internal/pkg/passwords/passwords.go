package passwords

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	iterations = 120000
	keyLen     = 32
)

// GenerateSalt returns a new random per-user salt, hex encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash derives a deterministic salted hash of the password. The same password
// and salt always produce the same string, so validation is an exact-string
// comparison against the stored hash.
func Hash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLen, sha256.New)
	return hex.EncodeToString(key)
}

// Matches reports whether the supplied password hashes to the stored value
// under the stored salt.
func Matches(password, salt, storedHash string) bool {
	return Hash(password, salt) == storedHash
}

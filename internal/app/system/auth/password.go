package auth

import (
	"encoding/hex"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword bcrypt-hashes plain.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether plain matches hash.
func CheckPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// GenerateDevKey returns a random 64-char hex key for local development.
func GenerateDevKey() string {
	return hex.EncodeToString(securecookie.GenerateRandomKey(32))
}

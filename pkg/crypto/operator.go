// Package crypto holds the operator credential helpers
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// OperatorCost is the bcrypt cost for operator password hashes
const OperatorCost = 12

// MinPasswordLength is the shortest operator password hash-gen accepts
const MinPasswordLength = 12

var ErrWeakPassword = fmt.Errorf("operator password must be at least %d characters", MinPasswordLength)

var (
	generateFromPassword = bcrypt.GenerateFromPassword
	readRandom           = rand.Read
)

// HashPassword hashes an operator password for OPERATOR_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := generateFromPassword([]byte(password), OperatorCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// IsPasswordHash reports whether s parses as a bcrypt hash
func IsPasswordHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// VerifyOperator checks name and password against the configured operator.
// An empty hash never verifies.
func VerifyOperator(name, password, wantName, hash string) bool {
	if hash == "" {
		return false
	}
	nameOK := subtle.ConstantTimeCompare([]byte(name), []byte(wantName)) == 1
	passwordOK := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	return nameOK && passwordOK
}

// NewSessionID returns 16 random bytes, hex encoded
func NewSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := readRandom(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

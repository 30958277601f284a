// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"gatekeeper/config"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only reads the first 72 bytes of a password.
const bcryptMaxPasswordBytes = 72

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher builds the hasher with the configured work factor.
func NewBcryptHasher(cfg *config.Config) (service.PasswordHasher, error) {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	return NewBcryptHasherWithCost(cost)
}

// NewBcryptHasherWithCost builds the hasher with an explicit work factor.
func NewBcryptHasherWithCost(cost int) (service.PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &bcryptHasher{cost: cost}, nil
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt draws a fresh salt for every call and embeds it in the output.
// Passwords longer than 72 bytes are hashed on their first 72 bytes.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(passwordBytes(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt generate")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	// err is nil only if the password and hash match; a malformed hash is a mismatch.
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(password)) == nil
}

// passwordBytes cuts the password to what bcrypt reads, so Hash and Check
// agree on passwords of any length.
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxPasswordBytes {
		b = b[:bcryptMaxPasswordBytes]
	}

	return b
}

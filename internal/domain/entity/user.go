// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash is the only credential kept;
// the plaintext password never reaches an entity.
type User struct {
	ID           uuid.UUID // Assigned by the store on creation.
	Name         string    // Display name, non-empty.
	Email        string    // Login identifier, unique across all users.
	PasswordHash string    // Salted one-way hash of the password.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity record. Email is stored trimmed and lower-cased,
// so lookups are case-insensitive by construction. PasswordHash holds the
// bcrypt hash and never the plaintext.
type User struct {
	ID           uuid.UUID // The unique identifier for the user, assigned at creation and immutable.
	Email        string    // The user's login identifier; unique across the system.
	PasswordHash string    // The bcrypt-hashed password with the salt embedded in the string.
	CreatedAt    time.Time // Timestamp of when this user account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this user's data.
}

// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents a long-lived, authorized user session.
// Access tokens are stateless and never persisted; refresh tokens are
// recorded by hash so logout can revoke them server-side.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // SHA-256 hash of the raw refresh token; the raw token is never stored.
	ExpiresAt time.Time // The exact time when this refresh token expires and becomes invalid.
	CreatedAt time.Time // Timestamp of when this session was created (i.e., when the user logged in).
}

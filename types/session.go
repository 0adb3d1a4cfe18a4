package types

import (
	"time"

	"github.com/google/uuid"
)

// Session is a login session. A session authenticates requests until it
// expires or is revoked; a user may hold any number of sessions at once.
type Session struct {
	// ID is the unique identifier of the session. It is carried as the
	// token's jti claim.
	ID uuid.UUID `json:"id" db:"id"`

	// UserID identifies the user the session belongs to.
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp when the session was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// ExpiresAt is the timestamp after which the session is no longer valid.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// RevokedAt is set when the session is explicitly ended (logout).
	RevokedAt *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// Active reports whether the session authenticates requests at time now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

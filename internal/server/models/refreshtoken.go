package models

import "time"

// RefreshToken is the persisted record behind an opaque refresh token.
// JwtID holds the jti claim of the access token it was issued alongside,
// binding the pair. Records are never deleted by the service; a consumed
// token is only ever marked used.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	JwtID     string
	IsUsed    bool
	IsRevoked bool
	AddedAt   time.Time
	ExpiresAt time.Time
}

// Package common defines shared constants and sentinel errors used across
// the client and server layers of authgate. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Login and registration errors. ErrInvalidCredentials deliberately does
	// not distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")

	// Access token decode errors.
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidSignature     = errors.New("invalid token signature")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	ErrClaimMismatch        = errors.New("token claim mismatch")
	ErrTokenExpired         = errors.New("token expired")

	// Rotation errors, one per rejected state of the refresh flow.
	ErrMalformedAccessToken  = errors.New("malformed access token")
	ErrAccessTokenNotExpired = errors.New("access token has not expired yet")
	ErrUnknownRefreshToken   = errors.New("unknown refresh token")
	ErrRefreshTokenUsed      = errors.New("refresh token already used")
	ErrRefreshTokenRevoked   = errors.New("refresh token revoked")
	ErrRefreshTokenExpired   = errors.New("refresh token expired")
	ErrTokenPairMismatch     = errors.New("token pair mismatch")
)

// Package common defines shared constants and sentinel errors used across
// the layers of assetvault. Callers should use errors.Is to match these
// values; lower layers wrap them with fmt.Errorf("...: %w", ...).
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrVersionConflict = errors.New("version conflict")

	// Validation errors, also used for failed writes while issuing tickets.
	ErrBadRequest = errors.New("bad request")

	// Stored object is missing or does not match the claimed hash.
	ErrIntegrity = errors.New("integrity error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

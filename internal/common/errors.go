// Package common defines shared constants and sentinel errors used across
// client and server layers of Daybook. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Date errors.
	ErrInvalidDate = errors.New("invalid date")

	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Remote store errors: network failure or a non-2xx status other than 404.
	ErrTransport = errors.New("transport or server error")
)

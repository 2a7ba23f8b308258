// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist for the caller.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates the persistence layer could not be reached
	// (connection failure, pool acquire timeout).
	ErrUnavailable = errors.New("persistence unavailable")

	// ErrInternal indicates a library failure (hashing, signing, unexpected DB error).
	ErrInternal = errors.New("internal error")

	// ErrInvalidArgument indicates the caller supplied unusable input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Token denials. All of them match ErrUnauthorized via errors.Is.
var (
	ErrMissingToken = fmt.Errorf("%w: missing token", ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrExpiredToken = fmt.Errorf("%w: expired token", ErrUnauthorized)
)

// ErrAmbiguousKey is returned when a key-scoped mutation would touch more than one row.
var ErrAmbiguousKey = fmt.Errorf("%w: ambiguous key", ErrNotFound)

// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Account represents a registered user. The password hash never leaves the server boundary.
type Account struct {
	ID           uuid.UUID `json:"id"`       // PK
	Username     string    `json:"username"` // unique, case-sensitive
	PasswordHash string    `json:"-"`        // PHC-encoded argon2id
	CreatedAt    time.Time `json:"created_at"`
}

// AccountResponse is the public view of an account returned by register.
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry is a single secret record owned by exactly one account.
// Value is stored as plaintext relative to the database.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"` // FK -> accounts.id, immutable
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryResponse is the projection of Entry without the secret value.
// Every handler that is not explicitly revealing the secret to its owner must use it.
type EntryResponse struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Key       string    `json:"key"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntry is a create intent for an entry.
type NewEntry struct {
	Key   string
	Value string
	Notes *string
}

// EntryUpdate replaces the value and notes of an existing entry. The key is not editable.
type EntryUpdate struct {
	ID    uuid.UUID
	Value string
	Notes *string
}

// ImportResult reports the outcome of a bulk import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // keys that already existed for the owner
}

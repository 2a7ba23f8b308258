package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/passvault/internal/model"
)

// EntryRepository provides owner-scoped access to secret entries.
// Every method filters by ownerID; rows of other owners are never visible.
type EntryRepository interface {
	// Create inserts a new entry for ownerID. created_at and updated_at are equal.
	Create(ctx context.Context, ownerID uuid.UUID, e model.NewEntry) (*model.Entry, error)

	// List returns all entries of ownerID ordered by created_at, id.
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error)

	// GetByKey returns the single entry of ownerID with the given key.
	GetByKey(ctx context.Context, ownerID uuid.UUID, key string) (*model.Entry, error)

	// Update replaces value and notes of the entry and bumps updated_at.
	Update(ctx context.Context, ownerID uuid.UUID, u model.EntryUpdate) (*model.Entry, error)

	// DeleteByKey atomically deletes and returns exactly one matching entry.
	DeleteByKey(ctx context.Context, ownerID uuid.UUID, key string) (*model.Entry, error)

	// Import inserts entries in one transaction, skipping keys the owner already has.
	Import(ctx context.Context, ownerID uuid.UUID, entries []model.NewEntry) (model.ImportResult, error)
}

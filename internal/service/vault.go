package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/passvault/internal/errs"
	"github.com/and161185/passvault/internal/model"
	"github.com/and161185/passvault/internal/repository"
)

// VaultService defines owner-scoped operations over secret entries.
// The owner is always the account id taken from a validated token.
type VaultService interface {
	// Create stores a new entry under a key that is unique per owner.
	Create(ctx context.Context, owner uuid.UUID, ne model.NewEntry) (*model.Entry, error)
	// List returns every entry of the owner, oldest first.
	List(ctx context.Context, owner uuid.UUID) ([]model.Entry, error)
	// Get returns a single entry by key, value included.
	Get(ctx context.Context, owner uuid.UUID, key string) (*model.Entry, error)
	// Update replaces value and notes of an entry by id.
	Update(ctx context.Context, owner uuid.UUID, u model.EntryUpdate) (*model.Entry, error)
	// Delete removes exactly one entry by key and returns it.
	Delete(ctx context.Context, owner uuid.UUID, key string) (*model.Entry, error)
	// Import bulk-inserts entries, skipping keys the owner already has.
	Import(ctx context.Context, owner uuid.UUID, entries []model.NewEntry) (model.ImportResult, error)
}

// DefaultMaxImport bounds a single import batch.
const DefaultMaxImport = 1000

type VaultServiceImpl struct {
	repo      repository.EntryRepository
	maxImport int
}

// NewVaultService constructs VaultService with an import batch limit.
func NewVaultService(repo repository.EntryRepository, maxImport int) *VaultServiceImpl {
	if maxImport <= 0 {
		maxImport = DefaultMaxImport
	}
	return &VaultServiceImpl{repo: repo, maxImport: maxImport}
}

func checkOwner(owner uuid.UUID) error {
	if owner == uuid.Nil {
		return errs.ErrUnauthorized
	}
	return nil
}

func checkNewEntry(ne model.NewEntry) error {
	if ne.Key == "" {
		return fmt.Errorf("%w: empty key", errs.ErrInvalidArgument)
	}
	if ne.Value == "" {
		return fmt.Errorf("%w: empty value", errs.ErrInvalidArgument)
	}
	return nil
}

// Create validates input and delegates to the repository.
func (s *VaultServiceImpl) Create(ctx context.Context, owner uuid.UUID, ne model.NewEntry) (*model.Entry, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if err := checkNewEntry(ne); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, owner, ne)
}

// List returns all entries of owner.
func (s *VaultServiceImpl) List(ctx context.Context, owner uuid.UUID) ([]model.Entry, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, owner)
}

// Get fetches one entry by key.
func (s *VaultServiceImpl) Get(ctx context.Context, owner uuid.UUID, key string) (*model.Entry, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", errs.ErrInvalidArgument)
	}
	return s.repo.GetByKey(ctx, owner, key)
}

// Update replaces value and notes. Entries of other owners are reported as not found.
func (s *VaultServiceImpl) Update(ctx context.Context, owner uuid.UUID, u model.EntryUpdate) (*model.Entry, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if u.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: empty id", errs.ErrInvalidArgument)
	}
	if u.Value == "" {
		return nil, fmt.Errorf("%w: empty value", errs.ErrInvalidArgument)
	}
	return s.repo.Update(ctx, owner, u)
}

// Delete removes the entry stored under key.
func (s *VaultServiceImpl) Delete(ctx context.Context, owner uuid.UUID, key string) (*model.Entry, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", errs.ErrInvalidArgument)
	}
	return s.repo.DeleteByKey(ctx, owner, key)
}

// Import validates every record before touching storage; one bad record rejects the batch.
func (s *VaultServiceImpl) Import(ctx context.Context, owner uuid.UUID, entries []model.NewEntry) (model.ImportResult, error) {
	if err := checkOwner(owner); err != nil {
		return model.ImportResult{}, err
	}
	if len(entries) == 0 {
		return model.ImportResult{}, nil
	}
	if len(entries) > s.maxImport {
		return model.ImportResult{}, fmt.Errorf("%w: batch too large (%d > %d)", errs.ErrInvalidArgument, len(entries), s.maxImport)
	}
	for i := range entries {
		if err := checkNewEntry(entries[i]); err != nil {
			return model.ImportResult{}, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return s.repo.Import(ctx, owner, entries)
}

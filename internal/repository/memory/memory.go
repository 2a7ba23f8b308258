// Package memory provides in-process implementations of the repository
// interfaces. They mirror the PostgreSQL constraints and are used in tests
// and by the dispatcher's end-to-end checks.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/passvault/internal/errs"
	"github.com/and161185/passvault/internal/model"
	"github.com/and161185/passvault/internal/repository"
)

var (
	_ repository.AccountRepository = (*AccountRepo)(nil)
	_ repository.EntryRepository   = (*EntryRepo)(nil)
)

// Store keeps accounts and entries behind a single mutex.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	accounts map[uuid.UUID]model.Account
	entries  map[uuid.UUID]model.Entry
}

// New creates an empty store. A nil clock means time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:      now,
		accounts: map[uuid.UUID]model.Account{},
		entries:  map[uuid.UUID]model.Entry{},
	}
}

// Accounts returns the account view of the store.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Entries returns the entry view of the store.
func (s *Store) Entries() *EntryRepo { return &EntryRepo{s: s} }

// AccountRepo implements repository.AccountRepository.
type AccountRepo struct{ s *Store }

func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.accounts {
		if x.Username == a.Username || x.ID == a.ID {
			return errs.ErrAlreadyExists
		}
	}
	a.CreatedAt = r.s.now()
	r.s.accounts[a.ID] = *a
	return nil
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, errs.ErrNotFound
}

// EntryRepo implements repository.EntryRepository.
type EntryRepo struct{ s *Store }

// insertLocked enforces the owner FK and the (owner, key) uniqueness.
func (r *EntryRepo) insertLocked(ownerID uuid.UUID, ne model.NewEntry) (*model.Entry, error) {
	if _, ok := r.s.accounts[ownerID]; !ok {
		return nil, errs.ErrInternal
	}
	for _, e := range r.s.entries {
		if e.OwnerID == ownerID && e.Key == ne.Key {
			return nil, errs.ErrAlreadyExists
		}
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, errs.ErrInternal
	}
	now := r.s.now()
	e := model.Entry{
		ID:        id,
		OwnerID:   ownerID,
		Key:       ne.Key,
		Value:     ne.Value,
		Notes:     copyNotes(ne.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.entries[id] = e
	return &e, nil
}

func (r *EntryRepo) Create(ctx context.Context, ownerID uuid.UUID, ne model.NewEntry) (*model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insertLocked(ownerID, ne)
}

func (r *EntryRepo) List(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Entry{}
	for _, e := range r.s.entries {
		if e.OwnerID == ownerID {
			e.Notes = copyNotes(e.Notes)
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *EntryRepo) GetByKey(ctx context.Context, ownerID uuid.UUID, key string) (*model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, err := r.findLocked(ownerID, key)
	if err != nil {
		return nil, err
	}
	e.Notes = copyNotes(e.Notes)
	return &e, nil
}

func (r *EntryRepo) findLocked(ownerID uuid.UUID, key string) (model.Entry, error) {
	var found []model.Entry
	for _, e := range r.s.entries {
		if e.OwnerID == ownerID && e.Key == key {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return model.Entry{}, errs.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return model.Entry{}, errs.ErrAmbiguousKey
	}
}

func (r *EntryRepo) Update(ctx context.Context, ownerID uuid.UUID, u model.EntryUpdate) (*model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[u.ID]
	if !ok || e.OwnerID != ownerID {
		return nil, errs.ErrNotFound
	}
	e.Value = u.Value
	e.Notes = copyNotes(u.Notes)
	e.UpdatedAt = r.s.now()
	r.s.entries[e.ID] = e
	return &e, nil
}

func (r *EntryRepo) DeleteByKey(ctx context.Context, ownerID uuid.UUID, key string) (*model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, err := r.findLocked(ownerID, key)
	if err != nil {
		return nil, err
	}
	delete(r.s.entries, e.ID)
	return &e, nil
}

func (r *EntryRepo) Import(ctx context.Context, ownerID uuid.UUID, entries []model.NewEntry) (model.ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ImportResult{}, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var res model.ImportResult
	var added []uuid.UUID
	for _, ne := range entries {
		e, err := r.insertLocked(ownerID, ne)
		switch {
		case err == nil:
			added = append(added, e.ID)
			res.Imported++
		case errors.Is(err, errs.ErrAlreadyExists):
			res.Skipped++
		default:
			for _, id := range added {
				delete(r.s.entries, id)
			}
			return model.ImportResult{}, err
		}
	}
	return res, nil
}

func copyNotes(n *string) *string {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

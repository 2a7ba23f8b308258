// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/passvault/internal/model"
)

// AccountRepository provides access to registered accounts.
type AccountRepository interface {
	// Create inserts a new account and fills CreatedAt. Duplicate usernames yield errs.ErrAlreadyExists.
	Create(ctx context.Context, a *model.Account) error
	// GetByUsername loads an account by its exact (case-sensitive) username.
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
}

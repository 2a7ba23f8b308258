package postgres

import (
	"context"

	"github.com/and161185/passvault/internal/model"
)

// AccountRepo implements AccountRepository using PostgreSQL.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row and fills CreatedAt from the database.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO accounts (id, username, password_hash)
VALUES ($1, $2, $3)
RETURNING created_at`
	if err := r.db.Pool.QueryRow(ctx, q, a.ID, a.Username, a.PasswordHash).Scan(&a.CreatedAt); err != nil {
		return classify(err)
	}
	return nil
}

// GetByUsername selects an account by username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	const q = `
SELECT id, username, password_hash, created_at
FROM accounts WHERE username=$1`
	var a model.Account
	if err := r.db.Pool.QueryRow(ctx, q, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, classify(err)
	}
	return &a, nil
}

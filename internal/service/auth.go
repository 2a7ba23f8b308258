// Package service contains application services for accounts and the vault.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/passvault/internal/crypto"
	"github.com/and161185/passvault/internal/errs"
	"github.com/and161185/passvault/internal/model"
	"github.com/and161185/passvault/internal/repository"
	"github.com/and161185/passvault/internal/session"
)

// AuthService defines registration and login.
type AuthService interface {
	// Register creates a new account with an argon2id password hash.
	Register(ctx context.Context, username, password string) (*model.Account, error)
	// Login verifies credentials and issues a session token.
	Login(ctx context.Context, username, password string) (session.Token, error)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

var _ PasswordHasher = (*pkgcrypto.Hasher)(nil)

type AuthServiceImpl struct {
	accounts  repository.AccountRepository
	hasher    PasswordHasher
	authority *session.Authority
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(accounts repository.AccountRepository, hasher PasswordHasher, authority *session.Authority) *AuthServiceImpl {
	return &AuthServiceImpl{accounts: accounts, hasher: hasher, authority: authority}
}

// Register stores a new account. A taken username yields errs.ErrAlreadyExists.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*model.Account, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: empty username/password", errs.ErrInvalidArgument)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("%w: new id: %v", errs.ErrInternal, err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	a := &model.Account{ID: id, Username: username, PasswordHash: hash}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Login returns a fresh token. Unknown usernames and wrong passwords are
// indistinguishable to the caller; an unreadable stored hash is errs.ErrInternal.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (session.Token, error) {
	if username == "" || password == "" {
		return session.Token{}, errs.ErrUnauthorized
	}
	a, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return session.Token{}, errs.ErrUnauthorized
		}
		return session.Token{}, err
	}
	if err := pkgcrypto.CheckEncoded(a.PasswordHash); err != nil {
		return session.Token{}, fmt.Errorf("%w: stored hash for account %s: %v", errs.ErrInternal, a.ID, err)
	}
	if !s.hasher.Verify(password, a.PasswordHash) {
		return session.Token{}, errs.ErrUnauthorized
	}
	return s.authority.Issue(a.ID)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/passvault/internal/crypto"
	"github.com/and161185/passvault/internal/errs"
	"github.com/and161185/passvault/internal/model"
	"github.com/and161185/passvault/internal/repository"
	"github.com/and161185/passvault/internal/repository/memory"
	"github.com/and161185/passvault/internal/session"
)

var fastParams = pkgcrypto.Params{Time: 1, MemoryKiB: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type failingAccounts struct {
	repository.AccountRepository
	err error
}

func (f failingAccounts) GetByUsername(context.Context, string) (*model.Account, error) {
	return nil, f.err
}

func newAuth(t *testing.T, accounts repository.AccountRepository, now func() time.Time) (*AuthServiceImpl, *session.Authority) {
	t.Helper()
	var opts []session.Option
	if now != nil {
		opts = append(opts, session.WithClock(now))
	}
	authority, err := session.NewAuthority([]byte("test-secret"), opts...)
	if err != nil {
		t.Fatalf("NewAuthority: %v", err)
	}
	return NewAuthService(accounts, pkgcrypto.NewHasher(fastParams), authority), authority
}

func TestAuth_Register_Basics(t *testing.T) {
	t.Parallel()
	store := memory.New(nil)
	s, _ := newAuth(t, store.Accounts(), nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "", "pwd"); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument on empty username, got %v", err)
	}
	if _, err := s.Register(ctx, "alice", ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument on empty password, got %v", err)
	}

	a, err := s.Register(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if a.ID == uuid.Nil || a.Username != "alice" || a.CreatedAt.IsZero() {
		t.Fatalf("unexpected account %+v", a)
	}
	if a.PasswordHash == "s3cret" || a.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	if _, err := s.Register(ctx, "alice", "other"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
	if _, err := s.Register(ctx, "Alice", "other"); err != nil {
		t.Fatalf("usernames are case-sensitive: %v", err)
	}
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.New(nil)
	s, authority := newAuth(t, store.Accounts(), func() time.Time { return now })
	ctx := context.Background()

	a, err := s.Register(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	tok, err := s.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !tok.ExpiresAt.Equal(now.Add(session.TTL)) {
		t.Fatalf("expiry = %v, want %v", tok.ExpiresAt, now.Add(session.TTL))
	}
	id, err := authority.Validate(tok.Value)
	if err != nil || id != a.ID {
		t.Fatalf("token must carry account id: %v %v", id, err)
	}

	for _, tc := range []struct{ name, user, pass string }{
		{"wrong password", "alice", "nope"},
		{"unknown user", "bob", "s3cret"},
		{"case mismatch", "ALICE", "s3cret"},
		{"empty", "", ""},
	} {
		if _, err := s.Login(ctx, tc.user, tc.pass); !errors.Is(err, errs.ErrUnauthorized) {
			t.Fatalf("%s: want ErrUnauthorized, got %v", tc.name, err)
		}
	}
}

func TestAuth_Login_CorruptStoredHash(t *testing.T) {
	t.Parallel()
	store := memory.New(nil)
	s, _ := newAuth(t, store.Accounts(), nil)
	ctx := context.Background()

	bad := &model.Account{ID: uuid.Must(uuid.NewV4()), Username: "mallory", PasswordHash: "$argon2id$garbage"}
	if err := store.Accounts().Create(ctx, bad); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := s.Login(ctx, "mallory", "anything")
	if !errors.Is(err, errs.ErrInternal) {
		t.Fatalf("want ErrInternal, got %v", err)
	}
	if errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("corrupt hash must not look like bad credentials")
	}
}

func TestAuth_Login_StorageErrorPropagates(t *testing.T) {
	t.Parallel()
	s, _ := newAuth(t, failingAccounts{err: errs.ErrUnavailable}, nil)
	_, err := s.Login(context.Background(), "alice", "pwd")
	if !errors.Is(err, errs.ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	if errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("storage failure must not look like bad credentials")
	}
}

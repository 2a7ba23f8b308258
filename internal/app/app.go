// Package app assembles the process context: pool, repositories,
// components and the dispatcher. It is built once and passed explicitly.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/passvault/internal/config"
	pkgcrypto "github.com/and161185/passvault/internal/crypto"
	"github.com/and161185/passvault/internal/dispatch"
	"github.com/and161185/passvault/internal/migrate"
	"github.com/and161185/passvault/internal/repository/postgres"
	"github.com/and161185/passvault/internal/service"
	"github.com/and161185/passvault/internal/session"
)

// App owns every long-lived resource of the process.
type App struct {
	Config     *config.Config
	Log        *zap.Logger
	DB         *postgres.DB
	Dispatcher *dispatch.Dispatcher
}

// New connects to the database and wires the components.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := postgres.New(ctx, cfg.DatabaseURL, cfg.PoolOptions())
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	a, err := assemble(cfg, log, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func assemble(cfg *config.Config, log *zap.Logger, db *postgres.DB) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	authority, err := session.NewAuthority([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	hasher := pkgcrypto.NewHasher(cfg.HashParams())

	authSvc := service.NewAuthService(postgres.NewAccountRepo(db), hasher, authority)
	vaultSvc := service.NewVaultService(postgres.NewEntryRepo(db), service.DefaultMaxImport)

	return &App{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Dispatcher: dispatch.New(authSvc, vaultSvc, authority, log.Named("dispatch")),
	}, nil
}

// Migrate applies pending schema migrations.
func (a *App) Migrate(ctx context.Context) error {
	if err := migrate.Up(ctx, a.Config.DatabaseURL); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Close releases the pool.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

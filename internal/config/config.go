// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	pkgcrypto "github.com/and161185/passvault/internal/crypto"
	"github.com/and161185/passvault/internal/repository/postgres"
)

// Config is read once at startup and never reloaded.
type Config struct {
	DatabaseURL      string        `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	Argon2Time       uint32        `env:"ARGON2_TIME" envDefault:"3"`
	Argon2MemoryKiB  uint32        `env:"ARGON2_MEMORY_KIB" envDefault:"65536"`
	Argon2Threads    uint8         `env:"ARGON2_THREADS" envDefault:"1"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	StateDir         string        `env:"PASSVAULT_STATE_DIR"`
}

// Load reads optional dotenv files (".env" when none are given) and then
// parses the environment. Variables already set take precedence over files.
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if err := c.HashParams().Validate(); err != nil {
		return fmt.Errorf("ARGON2_*: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// HashParams returns the argon2id cost settings.
func (c *Config) HashParams() pkgcrypto.Params {
	p := pkgcrypto.DefaultParams()
	p.Time = c.Argon2Time
	p.MemoryKiB = c.Argon2MemoryKiB
	p.Threads = c.Argon2Threads
	return p
}

// PoolOptions returns the connection pool bounds.
func (c *Config) PoolOptions() postgres.PoolOptions {
	return postgres.PoolOptions{MaxConns: c.DBMaxConns, ConnectTimeout: c.DBConnectTimeout}
}

// Level returns the parsed log level.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// StatePath returns the directory holding the CLI session file.
func (c *Config) StatePath() string {
	if c.StateDir != "" {
		return c.StateDir
	}
	return DefaultStateDir()
}

// DefaultStateDir follows XDG_CONFIG_HOME, falling back to ~/.config.
func DefaultStateDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "passvault")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "passvault")
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/and161185/passvault/internal/app"
	"github.com/and161185/passvault/internal/config"
	"github.com/and161185/passvault/internal/dispatch"
)

// cli holds per-invocation state shared by subcommands.
type cli struct {
	in      io.Reader
	out     io.Writer
	envFile string
	debug   bool

	cfg *config.Config
	log *zap.Logger
	app *app.App
	now func() time.Time
}

// run executes one invocation and returns the process exit code.
// The database pool and logger are released whether or not the command fails.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root, c := newRootCmd(in, out)
	defer c.close()

	root.SetErr(errOut)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}

// newRootCmd builds the command tree. Fresh instances are used in tests.
func newRootCmd(in io.Reader, out io.Writer) (*cobra.Command, *cli) {
	c := &cli{in: in, out: out, now: time.Now}

	root := &cobra.Command{
		Use:           "passvault",
		Short:         "Personal credential vault",
		Version:       version + " built: " + buildDate,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file read before the environment")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "log at debug level")

	root.AddCommand(
		c.migrateCmd(),
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.addCmd(),
		c.listCmd(),
		c.showCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.importCmd(),
		c.generateCmd(),
	)
	return root, c
}

func (c *cli) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *cli) logger() *zap.Logger {
	if c.log != nil {
		return c.log
	}
	lvl := zapcore.WarnLevel
	if c.cfg != nil {
		lvl = c.cfg.Level()
	}
	if c.debug {
		lvl = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	l, err := zc.Build()
	if err != nil {
		l = zap.NewNop()
	}
	c.log = l
	return l
}

// dispatcher connects to the database on first use.
func (c *cli) dispatcher(ctx context.Context) (*dispatch.Dispatcher, error) {
	if c.app != nil {
		return c.app.Dispatcher, nil
	}
	if err := c.loadConfig(); err != nil {
		return nil, err
	}
	a, err := app.New(ctx, c.cfg, c.logger())
	if err != nil {
		return nil, err
	}
	c.app = a
	return a.Dispatcher, nil
}

// tokens locates the session file. logout works even without a complete config.
func (c *cli) tokens() tokenStore {
	if err := c.loadConfig(); err == nil {
		return tokenStore{dir: c.cfg.StatePath()}
	}
	if v := os.Getenv("PASSVAULT_STATE_DIR"); v != "" {
		return tokenStore{dir: v}
	}
	return tokenStore{dir: config.DefaultStateDir()}
}

func (c *cli) session() (dispatch.Authed, error) {
	tok, err := c.tokens().load(c.now())
	if err != nil {
		return dispatch.Authed{}, err
	}
	return dispatch.Authed{Token: tok}, nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// userError prefixes the operation. Dispatch errors keep their terse message.
func userError(op string, err error) error {
	var de *dispatch.Error
	if errors.As(err, &de) {
		return fmt.Errorf("%s: %s", op, de.Msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/stylequiz/internal/coach"
	"github.com/abhisek/stylequiz/internal/config"
	"github.com/abhisek/stylequiz/internal/gateway"
	"github.com/abhisek/stylequiz/internal/llm"
	"github.com/abhisek/stylequiz/internal/logging"
	"github.com/abhisek/stylequiz/internal/screen"
	"github.com/abhisek/stylequiz/internal/store"
)

// env is everything a command needs, opened from the effective config.
type env struct {
	cfg    config.Config
	log    *logging.Logger
	store  *store.Store
	client *gateway.Client

	closers []io.Closer
}

// loadConfig applies --config and returns the validated settings.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		settings.SetConfigFile(p)
	}
	return config.Load(settings)
}

// newLogger opens the configured log destination. The TUI owns the
// terminal, so logs go to a file unless log.file is "-".
func newLogger(cfg config.Config) (*logging.Logger, io.Closer, error) {
	lc := cfg.Logging()
	path := cfg.Log.File
	if path == "-" {
		lc.Output = os.Stderr
		return logging.NewLogger(lc), nil, nil
	}
	if path == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(dir, "stylequiz.log")
	}
	f, err := logging.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	lc.Output = f
	return logging.NewLogger(lc), f, nil
}

// resolveDBPath returns the database path from --db or STYLEQUIZ_DB (both
// land in cfg.DB), falling back to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openEnv loads config, the logger, the local store and the platform
// client. Callers must Close the result.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	log, lf, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	if lf != nil {
		e.closers = append(e.closers, lf)
	}
	e.log = log

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st)

	client, err := gateway.New(cfg.Gateway(), st.Credentials(),
		gateway.WithLogger(log),
		gateway.WithEventRepo(st.Events()),
	)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("create platform client: %w", err)
	}
	e.client = client

	log.Debug("environment ready", "db", dbPath, "api", cfg.API.BaseURL)
	return e, nil
}

// Close releases everything in reverse opening order.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
	e.closers = nil
}

// coach builds the study coach. Without a usable LLM provider it serves
// catalog tips.
func (e *env) coach(cmd *cobra.Command) *coach.Service {
	provider, err := llm.NewProvider(cmd.Context(), e.cfg.LLMSettings(), e.store.Events(), e.log)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "LLM provider not configured:", err)
		fmt.Fprintln(cmd.ErrOrStderr(), "Study tips will come from the built-in catalog.")
	}
	return coach.NewService(provider, coach.WithLogger(e.log))
}

// deps are the services handed to the TUI screens.
func (e *env) deps(cmd *cobra.Command) screen.Deps {
	return screen.Deps{
		Client: e.client,
		Events: e.store.Events(),
		Vark:   e.store.Vark(),
		Coach:  e.coach(cmd),
		Log:    e.log,
	}
}

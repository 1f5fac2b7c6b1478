package cli

import (
	"context"
	"log/slog"
	"os"
	"runtime/trace"

	"github.com/brandonbloom/proposals/internal/config"
	"github.com/brandonbloom/proposals/internal/store"
	"github.com/spf13/cobra"
)

// loadConfigFromWD discovers configuration for the working directory and
// layers the command line flags over it.
func loadConfigFromWD(opts *rootOptions) (config.Config, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, path, err := config.Discover(wd)
	if err != nil {
		return config.Config{}, "", err
	}
	if opts.Store != "" {
		cfg.Store = opts.Store
		cfg.Dir = wd
	}
	if opts.Strict {
		cfg.OnCorrupt = config.OnCorruptFail
	}
	return cfg, path, nil
}

func openStore(cmd *cobra.Command, opts *rootOptions) (*store.Store, error) {
	cfg, _, err := loadConfigFromWD(opts)
	if err != nil {
		return nil, err
	}
	st, err := store.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	st.Logger = newLogger(cmd, opts.Verbose)
	return st, nil
}

// newLogger writes errors to stderr, or every step when verbose. Commands
// report warnings themselves.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
}

// addTraced runs st.Add inside a runtime/trace task so `go tool trace`
// groups the lock wait, load and write under one add.
func addTraced(ctx context.Context, st *store.Store, description string) (store.Result, error) {
	ctx, task := trace.NewTask(ctx, "proposals.add")
	defer task.End()
	trace.Log(ctx, "store", st.Path)
	return st.Add(ctx, description)
}

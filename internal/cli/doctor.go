package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/trace"
	"strings"

	"github.com/brandonbloom/proposals/internal/config"
	"github.com/brandonbloom/proposals/internal/proposal"
	"github.com/brandonbloom/proposals/internal/store"
	"github.com/spf13/cobra"
)

// doctor reuses the global --verbose flag to show passing checks too.
func newDoctorCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration and backing file before adding to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, opts, opts.Verbose)
		},
	}
}

type doctorContext struct {
	cmd        *cobra.Command
	opts       *rootOptions
	Config     config.Config
	Store      *store.Store
	Collection *proposal.Collection
}

type doctorCheck struct {
	Name string
	Fn   func(*doctorContext) error
}

func runDoctor(cmd *cobra.Command, opts *rootOptions, verbose bool) error {
	ctx := &doctorContext{cmd: cmd, opts: opts}
	checks := []doctorCheck{
		{Name: "config valid", Fn: checkConfig},
		{Name: "store directory exists", Fn: checkStoreDir},
		{Name: "store is a JSON object", Fn: checkStoreParses},
		{Name: "entries are proposals", Fn: checkEntries},
		{Name: "store lock available", Fn: checkLock},
	}

	var failures []string
	for _, check := range checks {
		var err error
		trace.WithRegion(cmd.Context(), "doctor: "+check.Name, func() {
			err = check.Fn(ctx)
		})
		if err != nil {
			failures = append(failures, fmt.Sprintf("✗ %s: %v", check.Name, err))
			continue
		}
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", check.Name)
		}
	}

	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Fprintln(cmd.ErrOrStderr(), failure)
		}
		return fmt.Errorf("%d doctor checks failed", len(failures))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "healthy!")
	return nil
}

func checkConfig(c *doctorContext) error {
	cfg, _, err := loadConfigFromWD(c.opts)
	if err != nil {
		return err
	}
	st, err := store.FromConfig(cfg)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Store = st
	return nil
}

func checkStoreDir(c *doctorContext) error {
	if c.Store == nil {
		return errors.New("config not loaded")
	}
	dir := filepath.Dir(c.Store.Path)
	fi, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func checkStoreParses(c *doctorContext) error {
	if c.Store == nil {
		return errors.New("config not loaded")
	}
	coll, _, err := c.Store.Inspect()
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) && !c.Store.Strict {
			return fmt.Errorf("%w; the next add will discard it", err)
		}
		return err
	}
	c.Collection = coll
	return nil
}

func checkEntries(c *doctorContext) error {
	if c.Collection == nil {
		return errors.New("store not loaded")
	}
	bad := c.Collection.CheckEntries()
	if len(bad) == 0 {
		return nil
	}
	const shown = 3
	names := bad
	if len(names) > shown {
		names = names[:shown]
	}
	msg := fmt.Sprintf("%d entries lack a string description and status: %s", len(bad), strings.Join(names, ", "))
	if len(bad) > shown {
		msg += ", …"
	}
	return errors.New(msg)
}

func checkLock(c *doctorContext) error {
	if c.Store == nil {
		return errors.New("config not loaded")
	}
	return c.Store.CheckLock(c.cmd.Context())
}

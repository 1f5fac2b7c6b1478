package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brandonbloom/proposals/internal/config"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .proposals.toml in the current directory",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	return initializeInDirectory(cmd, wd)
}

func initializeInDirectory(cmd *cobra.Command, dir string) error {
	path := filepath.Join(dir, config.FileName)
	if exists(path) {
		fmt.Fprintf(cmd.OutOrStdout(), "proposals already initialized at %s\n", path)
		return nil
	}
	if err := config.Save(path, config.Default(dir)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

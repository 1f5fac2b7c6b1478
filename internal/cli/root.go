package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/brandonbloom/proposals/internal/version"
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	Store   string
	Strict  bool
	Verbose bool
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "proposals",
		Short:         "Append pending proposals to a JSON file",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.Store, "store", "", "backing file (default from .proposals.toml, else ./proposals.json)")
	flags.BoolVar(&opts.Strict, "strict", false, "fail instead of discarding an unparsable backing file")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log each step to stderr")

	cmd.AddCommand(
		newAddCommand(opts),
		newInitCommand(),
		newDoctorCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

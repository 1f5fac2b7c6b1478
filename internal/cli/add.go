package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/brandonbloom/proposals/internal/store"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	colorID   = color.New(color.FgCyan, color.Bold).SprintFunc()
	colorWarn = color.New(color.FgYellow).SprintFunc()
)

func newAddCommand(opts *rootOptions) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:     "add <description>",
		Aliases: []string{"add-proposal"},
		Short:   "Record a new pending proposal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts, args[0], quiet)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the new proposal id")
	return cmd
}

func runAdd(cmd *cobra.Command, opts *rootOptions, description string, quiet bool) error {
	st, err := openStore(cmd, opts)
	if err != nil {
		return err
	}

	res, err := addTraced(cmd.Context(), st, description)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if quiet {
		_, err := fmt.Fprintln(out, res.ID)
		return err
	}

	width := terminalWidth(out)
	fmt.Fprintf(out, "Adding proposal: %s\n", fitWidth(strconv.Quote(description), width-len("Adding proposal: ")))
	if res.Load == store.LoadDiscarded {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s was not valid JSON; its previous contents were replaced\n", colorWarn("warning:"), res.Path)
	}
	_, err = fmt.Fprintf(out, "Added proposal with ID: %s\n", colorID(res.ID))
	return err
}

// terminalWidth returns the column count of w, or 0 when w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// fitWidth truncates s to width display columns. Non-positive widths leave
// s unchanged.
func fitWidth(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Package themecmd implements the `ledger theme` command.
package themecmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/theme"
)

// Command implements `ledger theme`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the theme command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "theme",
		Short: "Show or change the display theme",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(newSet(ctx))
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.Open()
	if err != nil {
		return err
	}
	defer svc.Close()

	active := svc.Theme()
	out := cmd.OutOrStdout()
	printPalette(out, active)
	fmt.Fprintln(out, "Available:")
	for _, id := range theme.All() {
		marker := " "
		if id == active.ID {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, id)
	}
	return nil
}

func newSet(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id>",
		Short: "Select a theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.Open()
			if err != nil {
				return err
			}
			defer svc.Close()

			cfg, err := svc.SetTheme(args[0])
			if err != nil {
				return err
			}
			printPalette(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printPalette(w io.Writer, cfg theme.Config) {
	fmt.Fprintf(w, "Theme: %s\n", cfg.ID)
	fmt.Fprintf(w, "  sidebar=%s header=%s body=%s primary=%s text=%s accent=%s\n",
		cfg.Sidebar, cfg.Header, cfg.Body, cfg.Primary, cfg.Text, cfg.Accent)
}

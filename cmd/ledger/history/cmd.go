// Package historycmd implements the `ledger history` command.
package historycmd

import (
	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/report"
)

// Command implements `ledger history`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
	raw bool
}

// New creates the history command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "history",
		Short: "Show archived months",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVar(&c.raw, "raw", false, "Print markdown without terminal styling")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.OpenSession()
	if err != nil {
		return err
	}
	defer svc.Close()

	d, err := svc.Ledger()
	if err != nil {
		return err
	}
	return shared.Render(cmd.OutOrStdout(), report.History(d, svc.Config.Display.Currency), c.raw)
}

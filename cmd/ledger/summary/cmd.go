// Package summarycmd implements the `ledger summary` command.
package summarycmd

import (
	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/report"
)

// Command implements `ledger summary`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
	raw bool
}

// New creates the summary command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "summary",
		Short: "Show salary, expenses, balance and obligations",
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
	u, _ := svc.CurrentUser()
	md := report.Summary(u, d, svc.Config.Display.Currency)

	due, err := svc.DueToday()
	if err != nil {
		return err
	}
	if len(due) > 0 {
		md += "\n> **Due today:** " + report.Obligations(due, svc.Config.Display.Currency)
	}
	return shared.Render(cmd.OutOrStdout(), md, c.raw)
}

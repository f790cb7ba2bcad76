// Package rollovercmd implements the `ledger rollover` command.
package rollovercmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/report"
)

// Command implements `ledger rollover`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the rollover command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "rollover",
		Short: "Close the month: archive active expenses into history",
		Long: "Archives every active expense under the current month's name, " +
			"records the salary and total next to them, and clears the active list. " +
			"This cannot be undone.",
		Args: cobra.NoArgs,
		RunE: c.run,
	}
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

	rec, rolled, err := svc.Rollover()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !rolled {
		fmt.Fprintln(out, "No active expenses; nothing to archive.")
		return nil
	}
	fmt.Fprintf(out, "Archived %d expense(s) totalling %s as %q\n",
		len(rec.Expenses), report.Money(rec.TotalExpenses, svc.Config.Display.Currency), rec.MonthName)
	return nil
}

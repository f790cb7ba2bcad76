// Package salarycmd implements the `ledger salary` command.
package salarycmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/report"
)

// Command implements `ledger salary`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the salary command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "salary [amount]",
		Short: "Show or set the monthly salary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	svc, err := c.ctx.OpenSession()
	if err != nil {
		return err
	}
	defer svc.Close()

	cur := svc.Config.Display.Currency
	if len(args) == 0 {
		d, err := svc.Ledger()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Salary: %s\n", report.Money(d.Salary, cur))
		return nil
	}

	amount, err := shared.ParseAmount(args[0])
	if err != nil {
		return err
	}
	d, err := svc.SetSalary(amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Salary set to %s\n", report.Money(d.Salary, cur))
	return nil
}

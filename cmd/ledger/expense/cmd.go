// Package expensecmd implements the `ledger expense` command group.
package expensecmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/ledger"
	"github.com/go-ports/pocketledger/internal/report"
)

// Command implements `ledger expense`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the expense command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "expense",
		Short: "Record, remove and list this month's expenses",
	}
	c.cmd.AddCommand(
		newAdd(ctx),
		newRemove(ctx),
		newList(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// ---------------------------------------------------------------------------
// expense add
// ---------------------------------------------------------------------------

func newAdd(ctx *shared.Context) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Record an expense",
		Long:  "Record an expense. Common names: " + strings.Join(ledger.Presets, ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := shared.ParseAmount(args[1])
			if err != nil {
				return err
			}
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			e, err := svc.AddExpense(args[0], amount, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s on %s (id %s)\n",
				e.Name, report.Money(e.Amount, svc.Config.Display.Currency), e.Date, e.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Expense date, YYYY-MM-DD (default today)")
	return cmd
}

// ---------------------------------------------------------------------------
// expense rm
// ---------------------------------------------------------------------------

func newRemove(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an active expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.RemoveExpense(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed expense %s\n", args[0])
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// expense list
// ---------------------------------------------------------------------------

func newList(ctx *shared.Context) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			d, err := svc.Ledger()
			if err != nil {
				return err
			}
			return shared.Render(cmd.OutOrStdout(), report.Expenses(d.Expenses, svc.Config.Display.Currency), raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling")
	return cmd
}

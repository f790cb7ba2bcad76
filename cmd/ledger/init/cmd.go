// Package initcmd implements the `ledger init` command.
package initcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
)

// Command implements `ledger init`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the init command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize the ledger store",
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.Open()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ledger initialized at %s\n", svc.LedgerHome)
	fmt.Fprintf(out, "%d user(s) registered. The default account is admin/admin.\n", len(svc.Users()))
	return nil
}

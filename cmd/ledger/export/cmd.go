// Package exportcmd implements the `ledger export` command.
package exportcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
)

// Command implements `ledger export`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
	out string
}

// New creates the export command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "export",
		Short: "Print the stored record for backup or transfer",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().StringVar(&c.out, "out", "", "Write to this file instead of stdout")
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

	token, err := svc.Export()
	if err != nil {
		return err
	}
	if c.out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	}
	if err := os.WriteFile(c.out, []byte(token), 0o600); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", c.out)
	return nil
}

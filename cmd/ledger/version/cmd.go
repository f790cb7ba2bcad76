// Package versioncmd implements the `ledger version` command.
package versioncmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/buildinfo"
)

// Command implements `ledger version`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the version command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (*Command) run(cmd *cobra.Command, _ []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
	return nil
}

// Package mcpcmd implements the `ledger mcp` command.
package mcpcmd

import (
	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	internalmcp "github.com/go-ports/pocketledger/internal/mcp"
)

// Command implements `ledger mcp`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the mcp command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "mcp",
		Short: "Start the ledger MCP server (stdio transport) as --user",
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	if c.ctx.User == "" || c.ctx.Password == "" {
		return shared.ErrNoCredentials
	}
	home, _ := c.ctx.Home()
	return internalmcp.Serve(cmd.Context(), home, c.ctx.User, c.ctx.Password)
}

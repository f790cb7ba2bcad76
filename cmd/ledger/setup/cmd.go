// Package setupcmd implements the `ledger setup` command group.
package setupcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/setup"
)

// Command implements `ledger setup`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the setup command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "setup",
		Short: "Register the ledger MCP server with an agent",
		Long: "Register `ledger mcp` with an agent. The current --ledger-home and --user are\n" +
			"written into the entry; the agent must provide LEDGER_PASSWORD.",
		RunE: func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	c.cmd.AddCommand(
		newSetupClaudeCode(ctx),
		newSetupCursor(ctx),
		newSetupCodex(ctx),
		newSetupOpencode(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func entry(ctx *shared.Context) setup.Entry {
	return setup.Entry{LedgerHome: ctx.LedgerHome, User: ctx.User}
}

// ---------------------------------------------------------------------------
// setup claude-code
// ---------------------------------------------------------------------------

func newSetupClaudeCode(ctx *shared.Context) *cobra.Command {
	var configDir string
	var project bool
	cmd := &cobra.Command{
		Use:   "claude-code",
		Short: "Install the ledger MCP server into Claude Code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := shared.ResolveAgentDir(".claude", configDir, project)
			result := setup.SetupClaudeCode(target, project, entry(ctx))
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to .claude directory")
	cmd.Flags().BoolVar(&project, "project", false, "Install in current project instead of globally")
	return cmd
}

// ---------------------------------------------------------------------------
// setup cursor
// ---------------------------------------------------------------------------

func newSetupCursor(ctx *shared.Context) *cobra.Command {
	var configDir string
	var project bool
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Install the ledger MCP server into Cursor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := shared.ResolveAgentDir(".cursor", configDir, project)
			result := setup.SetupCursor(target, entry(ctx))
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to .cursor directory")
	cmd.Flags().BoolVar(&project, "project", false, "Install in current project instead of globally")
	return cmd
}

// ---------------------------------------------------------------------------
// setup codex
// ---------------------------------------------------------------------------

func newSetupCodex(ctx *shared.Context) *cobra.Command {
	var configDir string
	var project bool
	cmd := &cobra.Command{
		Use:   "codex",
		Short: "Install the ledger MCP server into Codex config.toml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := shared.ResolveAgentDir(".codex", configDir, project)
			result := setup.SetupCodex(target, entry(ctx))
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to .codex directory")
	cmd.Flags().BoolVar(&project, "project", false, "Install in current project instead of globally")
	return cmd
}

// ---------------------------------------------------------------------------
// setup opencode
// ---------------------------------------------------------------------------

func newSetupOpencode(ctx *shared.Context) *cobra.Command {
	var project bool
	cmd := &cobra.Command{
		Use:   "opencode",
		Short: "Install the ledger MCP server into OpenCode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := setup.SetupOpencode(project, entry(ctx))
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&project, "project", false, "Install in current project instead of globally")
	return cmd
}

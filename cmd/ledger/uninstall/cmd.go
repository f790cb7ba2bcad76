// Package uninstallcmd implements the `ledger uninstall` command group.
package uninstallcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/setup"
)

// Command implements `ledger uninstall`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the uninstall command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the ledger MCP server from an agent",
		RunE:  func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	c.cmd.AddCommand(
		newUninstallClaudeCode(),
		newUninstallCursor(),
		newUninstallCodex(),
		newUninstallOpencode(),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func newUninstallClaudeCode() *cobra.Command {
	var configDir string
	var project bool
	cmd := &cobra.Command{
		Use:   "claude-code",
		Short: "Remove the ledger from Claude Code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := shared.ResolveAgentDir(".claude", configDir, project)
			result := setup.UninstallClaudeCode(target, project)
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to .claude directory")
	cmd.Flags().BoolVar(&project, "project", false, "Uninstall from current project instead of globally")
	return cmd
}

func newUninstallCursor() *cobra.Command {
	var configDir string
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Remove the ledger from Cursor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := shared.ResolveAgentDir(".cursor", configDir, false)
			result := setup.UninstallCursor(target)
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to .cursor directory")
	return cmd
}

func newUninstallCodex() *cobra.Command {
	var configDir string
	cmd := &cobra.Command{
		Use:   "codex",
		Short: "Remove the ledger from Codex",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := shared.ResolveAgentDir(".codex", configDir, false)
			result := setup.UninstallCodex(target)
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&configDir, "config-dir", "", "Path to .codex directory")
	return cmd
}

func newUninstallOpencode() *cobra.Command {
	var project bool
	cmd := &cobra.Command{
		Use:   "opencode",
		Short: "Remove the ledger from OpenCode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := setup.UninstallOpencode(project)
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&project, "project", false, "Uninstall from current project instead of globally")
	return cmd
}

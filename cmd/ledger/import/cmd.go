// Package importcmd implements the `ledger import` command.
package importcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
)

// Command implements `ledger import`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the import command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace all data with a previously exported record",
		Long: "Validates the record and, when it is well formed, replaces every user, " +
			"ledger, message and the theme with its contents. Use - to read stdin.",
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	svc, err := c.ctx.OpenSession()
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Import(string(data)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d user(s)\n", len(svc.Users()))
	return nil
}

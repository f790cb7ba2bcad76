// Package rootcmd wires the root cobra.Command for the ledger CLI binary.
package rootcmd

import (
	"os"

	"github.com/spf13/cobra"

	chatcmd "github.com/go-ports/pocketledger/cmd/ledger/chat"
	configcmd "github.com/go-ports/pocketledger/cmd/ledger/config"
	expensecmd "github.com/go-ports/pocketledger/cmd/ledger/expense"
	exportcmd "github.com/go-ports/pocketledger/cmd/ledger/export"
	historycmd "github.com/go-ports/pocketledger/cmd/ledger/history"
	importcmd "github.com/go-ports/pocketledger/cmd/ledger/import"
	initcmd "github.com/go-ports/pocketledger/cmd/ledger/init"
	mcpcmd "github.com/go-ports/pocketledger/cmd/ledger/mcp"
	obligationcmd "github.com/go-ports/pocketledger/cmd/ledger/obligation"
	rollovercmd "github.com/go-ports/pocketledger/cmd/ledger/rollover"
	salarycmd "github.com/go-ports/pocketledger/cmd/ledger/salary"
	setupcmd "github.com/go-ports/pocketledger/cmd/ledger/setup"
	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	summarycmd "github.com/go-ports/pocketledger/cmd/ledger/summary"
	themecmd "github.com/go-ports/pocketledger/cmd/ledger/theme"
	uninstallcmd "github.com/go-ports/pocketledger/cmd/ledger/uninstall"
	usercmd "github.com/go-ports/pocketledger/cmd/ledger/user"
	versioncmd "github.com/go-ports/pocketledger/cmd/ledger/version"
)

// New creates and returns the root cobra.Command for the ledger CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "ledger",
		Short:         "PocketLedger: track salary, monthly expenses and installments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.PersistentFlags().StringVar(
		&ctx.LedgerHome, "ledger-home", "",
		"Override ledger home directory (default: $LEDGER_HOME env → persisted config → ~/.ledger)",
	)
	root.PersistentFlags().StringVar(
		&ctx.User, "user", os.Getenv("LEDGER_USER"),
		"Username to log in with (default: $LEDGER_USER)",
	)
	root.PersistentFlags().StringVar(
		&ctx.Password, "password", os.Getenv("LEDGER_PASSWORD"),
		"Password to log in with (default: $LEDGER_PASSWORD)",
	)

	root.AddCommand(
		initcmd.New(ctx).Cmd(),
		summarycmd.New(ctx).Cmd(),
		salarycmd.New(ctx).Cmd(),
		expensecmd.New(ctx).Cmd(),
		obligationcmd.New(ctx).Cmd(),
		rollovercmd.New(ctx).Cmd(),
		historycmd.New(ctx).Cmd(),
		chatcmd.New(ctx).Cmd(),
		usercmd.New(ctx).Cmd(),
		themecmd.New(ctx).Cmd(),
		exportcmd.New(ctx).Cmd(),
		importcmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
		setupcmd.New(ctx).Cmd(),
		uninstallcmd.New(ctx).Cmd(),
		versioncmd.New(ctx).Cmd(),
	)

	return root
}

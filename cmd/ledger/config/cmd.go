// Package configcmd implements the `ledger config` command group.
package configcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/config"
)

const configTemplate = `# PocketLedger configuration

# Where the state record lives inside ledger.db.
storage:
  key: pocketledger.state
  legacy_keys:                  # read once and migrated when key is empty
    - smart_prize_v3_stable_final
  max_bytes: 5242880            # refuse to save larger records; 0 disables

# How amounts and month names are shown.
display:
  currency: EGP                 # ISO 4217 code
  locale: en                    # en | ar
`

// Command implements `ledger config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(
		newConfigInit(ctx),
		newSetHome(ctx),
		newClearHome(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	home, source := c.ctx.Home()
	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	if err != nil {
		return err
	}
	data := map[string]any{
		"storage": map[string]any{
			"key":         cfg.Storage.Key,
			"legacy_keys": cfg.Storage.LegacyKeys,
			"max_bytes":   cfg.Storage.MaxBytes,
		},
		"display": map[string]any{
			"currency": cfg.Display.Currency,
			"locale":   cfg.Display.Locale,
		},
		"ledger_home":        home,
		"ledger_home_source": source,
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

// ---------------------------------------------------------------------------
// config init
// ---------------------------------------------------------------------------

func newConfigInit(ctx *shared.Context) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter config.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, _ := ctx.Home()
			cfgPath := filepath.Join(home, "config.yaml")
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfgPath); err == nil && !force {
				fmt.Fprintf(out, "Config already exists at %s\n", cfgPath)
				fmt.Fprintln(out, "Use --force to overwrite.")
				return nil
			}
			if err := os.MkdirAll(home, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, []byte(configTemplate), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	return cmd
}

// ---------------------------------------------------------------------------
// config set-home
// ---------------------------------------------------------------------------

func newSetHome(_ *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set-home <path>",
		Short: "Persist ledger home location (used when LEDGER_HOME is unset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.SetPersistedLedgerHome(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(resolved, 0o755); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Persisted ledger home: %s\n", resolved)
			fmt.Fprintln(out, "Override anytime with LEDGER_HOME or --ledger-home.")
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config clear-home
// ---------------------------------------------------------------------------

func newClearHome(_ *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-home",
		Short: "Remove persisted ledger home location from global config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed, err := config.ClearPersistedLedgerHome()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if changed {
				fmt.Fprintln(out, "Cleared persisted ledger home setting.")
			} else {
				fmt.Fprintln(out, "No persisted ledger home setting was found.")
			}
			return nil
		},
	}
}

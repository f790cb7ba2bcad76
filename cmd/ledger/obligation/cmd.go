// Package obligationcmd implements the `ledger obligation` command group.
package obligationcmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/models"
	"github.com/go-ports/pocketledger/internal/obligation"
	"github.com/go-ports/pocketledger/internal/report"
)

// Command implements `ledger obligation`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the obligation command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:     "obligation",
		Aliases: []string{"ob"},
		Short:   "Track installment-based obligations",
	}
	c.cmd.AddCommand(
		newAdd(ctx),
		newEdit(ctx),
		newPay(ctx),
		newRemove(ctx),
		newList(ctx),
		newDue(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// draftFlags holds the optional fields shared by add and edit.
type draftFlags struct {
	installments int
	paid         string
	duration     string
	date         string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.installments, "installments", 1, "Number of installments")
	cmd.Flags().StringVar(&f.paid, "paid", "0", "Amount already paid")
	cmd.Flags().StringVar(&f.duration, "duration", obligation.DefaultDuration, "Installment period label")
	cmd.Flags().StringVar(&f.date, "date", "", "Due date, YYYY-MM-DD (default today)")
}

func (f *draftFlags) draft(kind, value string) (obligation.Draft, error) {
	v, err := shared.ParseAmount(value)
	if err != nil {
		return obligation.Draft{}, err
	}
	paid, err := shared.ParseAmount(f.paid)
	if err != nil {
		return obligation.Draft{}, err
	}
	return obligation.Draft{
		Type:              kind,
		Value:             v,
		InstallmentsCount: f.installments,
		PaidAmount:        paid,
		Duration:          f.duration,
		Date:              f.date,
	}, nil
}

// overlay returns base with the type and value replaced and with only the
// flags the user actually set applied on top.
func (f *draftFlags) overlay(cmd *cobra.Command, base obligation.Draft, kind, value string) (obligation.Draft, error) {
	v, err := shared.ParseAmount(value)
	if err != nil {
		return obligation.Draft{}, err
	}
	d := base
	d.Type = kind
	d.Value = v
	flags := cmd.Flags()
	if flags.Changed("installments") {
		d.InstallmentsCount = f.installments
	}
	if flags.Changed("paid") {
		if d.PaidAmount, err = shared.ParseAmount(f.paid); err != nil {
			return obligation.Draft{}, err
		}
	}
	if flags.Changed("duration") {
		d.Duration = f.duration
	}
	if flags.Changed("date") {
		d.Date = f.date
	}
	return d, nil
}

func printObligation(w io.Writer, verb string, o models.Obligation, currency string) {
	fmt.Fprintf(w, "%s %s: paid %s of %s, %s (id %s)\n",
		verb, o.Type,
		report.Money(o.PaidAmount, currency),
		report.Money(o.Value, currency),
		obligation.StateOf(o), o.ID)
}

// ---------------------------------------------------------------------------
// obligation add
// ---------------------------------------------------------------------------

func newAdd(ctx *shared.Context) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "add <type> <value>",
		Short: "Add an obligation",
		Long:  "Add an obligation. Common types: " + strings.Join(obligation.Presets, ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.draft(args[0], args[1])
			if err != nil {
				return err
			}
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			o, err := svc.AddObligation(d)
			if err != nil {
				return err
			}
			printObligation(cmd.OutOrStdout(), "Added", o, svc.Config.Display.Currency)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// ---------------------------------------------------------------------------
// obligation edit
// ---------------------------------------------------------------------------

func newEdit(ctx *shared.Context) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "edit <id> <type> <value>",
		Short: "Change an obligation's type and value, keeping its id",
		Long: "Change an obligation's type and value. Installments, paid amount, duration\n" +
			"and date keep their stored values unless the matching flag is given.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			data, err := svc.Ledger()
			if err != nil {
				return err
			}
			// An unknown id starts from zero values; EditObligation reports it.
			cur, _ := obligation.Find(data.Obligations, args[0])
			d, err := f.overlay(cmd, obligation.DraftOf(cur), args[1], args[2])
			if err != nil {
				return err
			}

			o, err := svc.EditObligation(args[0], d)
			if err != nil {
				return err
			}
			printObligation(cmd.OutOrStdout(), "Updated", o, svc.Config.Display.Currency)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// ---------------------------------------------------------------------------
// obligation pay
// ---------------------------------------------------------------------------

func newPay(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id>",
		Short: "Pay one installment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			o, err := svc.PayInstallment(args[0])
			if err != nil {
				return err
			}
			printObligation(cmd.OutOrStdout(), "Paid", o, svc.Config.Display.Currency)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// obligation rm
// ---------------------------------------------------------------------------

func newRemove(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an obligation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.RemoveObligation(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed obligation %s\n", args[0])
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// obligation list / due
// ---------------------------------------------------------------------------

func newList(ctx *shared.Context) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List obligations with totals",
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
			return shared.Render(cmd.OutOrStdout(), report.Obligations(d.Obligations, svc.Config.Display.Currency), raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling")
	return cmd
}

func newDue(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List unpaid obligations due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			due, err := svc.DueToday()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(due) == 0 {
				fmt.Fprintln(out, "Nothing due today.")
				return nil
			}
			for _, o := range due {
				printObligation(out, "Due", o, svc.Config.Display.Currency)
			}
			return nil
		},
	}
}

// Package usercmd implements the `ledger user` command group.
package usercmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
	"github.com/go-ports/pocketledger/internal/models"
)

// Command implements `ledger user`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the user command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	c.cmd.AddCommand(
		newAdd(ctx),
		newRemove(ctx),
		newUpdate(ctx),
		newList(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func newAdd(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "add <username> <password>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			u, err := svc.AddUser(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %s)\n", u.Username, u.ID)
			return nil
		},
	}
}

func newRemove(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an account (not admin, not yourself); its ledger is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.DeleteUser(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		},
	}
}

func newUpdate(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "update <new-username> <new-password>",
		Short: "Change the logged-in account's username and password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			u, err := svc.UpdateProfile(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated profile: %s\n", u.Username)
			return nil
		},
	}
}

func newList(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			for _, u := range svc.Users() {
				marker := ""
				if u.ID == models.AdminID {
					marker = " (admin)"
				}
				fmt.Fprintf(out, "%s\t%s%s\n", u.ID, u.Username, marker)
			}
			return nil
		},
	}
}

// Package chatcmd implements the `ledger chat` command group.
package chatcmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-ports/pocketledger/cmd/ledger/shared"
)

// Command implements `ledger chat`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the chat command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "chat",
		Short: "Post to and read the shared message log",
	}
	c.cmd.AddCommand(
		newSend(ctx),
		newList(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func newSend(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text...>",
		Short: "Post a message as --user",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.OpenSession()
			if err != nil {
				return err
			}
			defer svc.Close()

			msg, err := svc.SendMessage(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent: %s\n", msg.Text)
			return nil
		},
	}
}

func newList(ctx *shared.Context) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent messages, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.Open()
			if err != nil {
				return err
			}
			defer svc.Close()

			msgs := svc.Messages(limit)
			out := cmd.OutOrStdout()
			if len(msgs) == 0 {
				fmt.Fprintln(out, "No messages.")
				return nil
			}
			for _, m := range msgs {
				ts := time.UnixMilli(m.Timestamp).Local().Format("2006-01-02 15:04")
				fmt.Fprintf(out, "[%s] %s: %s\n", ts, m.SenderName, m.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of messages (0 for all)")
	return cmd
}

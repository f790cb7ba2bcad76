package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	rootcmd "github.com/go-ports/pocketledger/cmd/ledger/root"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Warnings go to stderr so stdout stays clean for export and the MCP transport.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()})))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return rootcmd.New().ExecuteContext(ctx)
}

// logLevel reads LEDGER_LOG_LEVEL (debug, info, warn, error); default warn.
func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(os.Getenv("LEDGER_LOG_LEVEL")))); err != nil {
		return slog.LevelWarn
	}
	return level
}

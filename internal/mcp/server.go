// Package mcp provides the stdio MCP server exposing ledger tools to agents.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/go-ports/pocketledger/internal/buildinfo"
	"github.com/go-ports/pocketledger/internal/models"
	"github.com/go-ports/pocketledger/internal/service"
)

const summaryDescription = `Get the logged-in user's ledger: salary, total active expenses, balance (salary minus expenses), obligation totals and the number of archived months.`

const addExpenseDescription = `Record an expense for the current month. The amount must be positive. The date defaults to today (YYYY-MM-DD).`

const payDescription = `Pay one installment (value / installmentsCount) of an obligation. Paying a completed obligation changes nothing.`

const rolloverDescription = `Close the month: archive all active expenses into history under the current month's name and clear them. Irreversible. Does nothing when there are no active expenses.` //nolint:lll

const historyDescription = `List archived months, newest last.`

// NewServer creates and registers all ledger tools on a new MCP server.
// svc must already have a logged-in user; tools report ErrNoSession otherwise.
func NewServer(svc *service.Service) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("pocketledger", buildinfo.Version)
	registerTools(s, svc)
	return s
}

// Serve opens the ledger at ledgerHome, logs in and starts the stdio MCP
// server, blocking until stdin closes.
func Serve(_ context.Context, ledgerHome, username, password string) error {
	svc, err := service.New(ledgerHome)
	if err != nil {
		return fmt.Errorf("mcp: init service: %w", err)
	}
	defer svc.Close()

	if _, err := svc.Login(username, password); err != nil {
		return fmt.Errorf("mcp: login: %w", err)
	}
	return mcpserver.ServeStdio(NewServer(svc))
}

// registerTools wires all ledger tools into the server.
func registerTools(s *mcpserver.MCPServer, svc *service.Service) {
	s.AddTool(mcp.NewTool("ledger_summary",
		mcp.WithDescription(summaryDescription),
	), func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSummary(svc)
	})

	s.AddTool(mcp.NewTool("ledger_add_expense",
		mcp.WithDescription(addExpenseDescription),
		mcp.WithString("name",
			mcp.Description("What the money was spent on, e.g. water, gas, electricity."),
			mcp.Required(),
		),
		mcp.WithNumber("amount",
			mcp.Description("Positive amount in the display currency."),
			mcp.Required(),
		),
		mcp.WithString("date",
			mcp.Description("YYYY-MM-DD. Defaults to today."),
		),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddExpense(svc, req)
	})

	s.AddTool(mcp.NewTool("ledger_pay_installment",
		mcp.WithDescription(payDescription),
		mcp.WithString("id",
			mcp.Description("Obligation id."),
			mcp.Required(),
		),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePay(svc, req)
	})

	s.AddTool(mcp.NewTool("ledger_rollover",
		mcp.WithDescription(rolloverDescription),
	), func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRollover(svc)
	})

	s.AddTool(mcp.NewTool("ledger_history",
		mcp.WithDescription(historyDescription),
		mcp.WithNumber("limit",
			mcp.Description("Max months, most recent (default all)"),
		),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleHistory(svc, req)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handleSummary(svc *service.Service) (*mcp.CallToolResult, error) {
	u, ok := svc.CurrentUser()
	if !ok {
		return mcp.NewToolResultError(service.ErrNoSession.Error()), nil
	}
	sum, err := svc.Summary()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"user":          u.Username,
		"currency":      svc.Config.Display.Currency,
		"salary":        sum.Salary,
		"totalExpenses": sum.TotalExpenses,
		"balance":       sum.Balance,
		"obligations": map[string]any{
			"value":     sum.Obligations.Value,
			"remaining": sum.Obligations.Remaining,
		},
		"archivedMonths": sum.Archived,
	})
}

func handleAddExpense(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	amount := decimal.NewFromFloat(req.GetFloat("amount", 0))
	e, err := svc.AddExpense(req.GetString("name", ""), amount, req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(e)
}

func handlePay(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	o, err := svc.PayInstallment(req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(o)
}

func handleRollover(svc *service.Service) (*mcp.CallToolResult, error) {
	rec, rolled, err := svc.Rollover()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !rolled {
		return jsonResult(map[string]any{
			"rolled":  false,
			"message": "No active expenses; nothing was archived.",
		})
	}
	return jsonResult(map[string]any{
		"rolled": true,
		"record": rec,
	})
}

func handleHistory(svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := svc.Ledger()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(lastN(d.History, req.GetInt("limit", 0)))
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// lastN returns the trailing n records; n <= 0 returns all of them.
// The result is never nil so it always encodes as a JSON array.
func lastN(history []models.HistoryRecord, n int) []models.HistoryRecord {
	if n > 0 && n < len(history) {
		history = history[len(history)-n:]
	}
	out := make([]models.HistoryRecord, len(history))
	copy(out, history)
	return out
}

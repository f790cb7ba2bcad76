// Package report renders ledgers as markdown documents for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/go-ports/pocketledger/internal/ledger"
	"github.com/go-ports/pocketledger/internal/models"
	"github.com/go-ports/pocketledger/internal/obligation"
)

// Money formats amount in the given ISO 4217 currency.
// Unknown codes fall back to "<amount> <code>" with two decimals.
func Money(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(currency)
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), code).Display()
}

// Summary renders the balance, active expenses and obligations of one ledger.
func Summary(user models.User, d models.FinancialData, currency string) string {
	sum := ledger.Summarize(d)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Ledger: %s\n\n", user.Username)
	sb.WriteString("| | Amount |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| Salary | %s |\n", Money(sum.Salary, currency))
	fmt.Fprintf(&sb, "| Expenses | %s |\n", Money(sum.TotalExpenses, currency))
	fmt.Fprintf(&sb, "| Balance | %s |\n", Money(sum.Balance, currency))
	fmt.Fprintf(&sb, "| Obligations remaining | %s |\n", Money(sum.Obligations.Remaining, currency))

	sb.WriteString("\n## Expenses\n\n")
	sb.WriteString(Expenses(d.Expenses, currency))

	sb.WriteString("\n## Obligations\n\n")
	sb.WriteString(Obligations(d.Obligations, currency))

	if sum.Archived > 0 {
		fmt.Fprintf(&sb, "\n_%d archived month(s). Run `ledger history` to see them._\n", sum.Archived)
	}
	return sb.String()
}

// Expenses renders an expense table.
func Expenses(expenses []models.Expense, currency string) string {
	if len(expenses) == 0 {
		return "_No active expenses._\n"
	}
	var sb strings.Builder
	sb.WriteString("| Date | Name | Amount | ID |\n|---|---|---:|---|\n")
	for _, e := range expenses {
		fmt.Fprintf(&sb, "| %s | %s | %s | `%s` |\n", e.Date, escape(e.Name), Money(e.Amount, currency), e.ID)
	}
	return sb.String()
}

// Obligations renders an obligation table followed by the totals.
func Obligations(list []models.Obligation, currency string) string {
	if len(list) == 0 {
		return "_No obligations._\n"
	}
	var sb strings.Builder
	sb.WriteString("| Type | Value | Paid | Remaining | Installment | Due | State | ID |\n")
	sb.WriteString("|---|---:|---:|---:|---:|---|---|---|\n")
	for _, o := range list {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s | `%s` |\n",
			escape(o.Type),
			Money(o.Value, currency),
			Money(o.PaidAmount, currency),
			Money(o.Remaining(), currency),
			Money(obligation.Installment(o), currency),
			o.Date,
			obligation.StateOf(o),
			o.ID,
		)
	}
	t := obligation.Sum(list)
	fmt.Fprintf(&sb, "\n**Total:** %s, **remaining:** %s\n", Money(t.Value, currency), Money(t.Remaining, currency))
	return sb.String()
}

// History renders the archived months, oldest first.
func History(d models.FinancialData, currency string) string {
	var sb strings.Builder
	sb.WriteString("# History\n\n")
	if len(d.History) == 0 {
		sb.WriteString("_No archived months._\n")
		return sb.String()
	}
	for _, h := range d.History {
		fmt.Fprintf(&sb, "## %s\n\n", h.MonthName)
		fmt.Fprintf(&sb, "- **Salary:** %s\n", Money(h.Salary, currency))
		fmt.Fprintf(&sb, "- **Expenses:** %s\n", Money(h.TotalExpenses, currency))
		fmt.Fprintf(&sb, "- **Saved:** %s\n\n", Money(h.Salary.Sub(h.TotalExpenses), currency))
		sb.WriteString(Expenses(h.Expenses, currency))
		sb.WriteString("\n")
	}
	return sb.String()
}

// escape keeps user text from breaking table cells.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

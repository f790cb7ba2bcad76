// Package ledger owns the per-user ledger map and the pure updaters applied to it.
//
// Ledgers are values: Get hands out copies and Update returns a new map, so an
// updater can never reach into state it was not given.
package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-ports/pocketledger/internal/models"
	"github.com/go-ports/pocketledger/internal/obligation"
	"github.com/go-ports/pocketledger/internal/rollover"
)

var (
	// ErrNonPositiveAmount is returned for expenses with amount <= 0.
	ErrNonPositiveAmount = errors.New("expense amount must be positive")
	// ErrEmptyName is returned for expenses without a name.
	ErrEmptyName = errors.New("expense name is required")
)

// Presets are the expense names offered by default.
var Presets = []string{
	"water", "gas", "electricity", "home internet", "landline",
	"savings circle", "bank installments",
}

// Updater is a pure transformation of one ledger.
type Updater func(models.FinancialData) models.FinancialData

// Get returns a copy of the ledger stored for userID, or a zeroed default.
func Get(ledgers map[string]models.FinancialData, userID string) models.FinancialData {
	if d, ok := ledgers[userID]; ok {
		return d.Clone()
	}
	return models.NewFinancialData()
}

// Update applies fn to userID's ledger and returns a new map in which only
// that entry differs. An empty userID returns ledgers unchanged.
func Update(ledgers map[string]models.FinancialData, userID string, fn Updater) map[string]models.FinancialData {
	if userID == "" || fn == nil {
		return ledgers
	}
	next := make(map[string]models.FinancialData, len(ledgers)+1)
	for id, d := range ledgers {
		next[id] = d
	}
	next[userID] = fn(Get(ledgers, userID))
	return next
}

// ---------------------------------------------------------------------------
// Updaters
// ---------------------------------------------------------------------------

// SetSalary replaces the salary. Negative amounts are stored as zero.
func SetSalary(amount decimal.Decimal) Updater {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return func(d models.FinancialData) models.FinancialData {
		d.Salary = amount
		return d
	}
}

// AddExpense appends e. An expense whose id is already present is ignored.
func AddExpense(e models.Expense) Updater {
	return func(d models.FinancialData) models.FinancialData {
		for _, x := range d.Expenses {
			if x.ID == e.ID {
				return d
			}
		}
		d.Expenses = append(models.CloneExpenses(d.Expenses), e)
		return d
	}
}

// RemoveExpense deletes the active expense with the given id.
func RemoveExpense(id string) Updater {
	return func(d models.FinancialData) models.FinancialData {
		kept := make([]models.Expense, 0, len(d.Expenses))
		for _, e := range d.Expenses {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		d.Expenses = kept
		return d
	}
}

// WithObligations replaces the obligation list with fn's result.
func WithObligations(fn func([]models.Obligation) []models.Obligation) Updater {
	return func(d models.FinancialData) models.FinancialData {
		d.Obligations = fn(d.Obligations)
		return d
	}
}

// Rollover archives the active expenses. See rollover.Rollover.
func Rollover(now time.Time, label rollover.Labeler) Updater {
	return func(d models.FinancialData) models.FinancialData {
		out, _ := rollover.Rollover(d, now, label)
		return out
	}
}

// ---------------------------------------------------------------------------
// Expenses
// ---------------------------------------------------------------------------

// NewExpense validates the inputs and builds an expense filed under now's month.
// An empty date defaults to now's day.
func NewExpense(name string, amount decimal.Decimal, date string, now time.Time) (models.Expense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Expense{}, ErrEmptyName
	}
	if !amount.IsPositive() {
		return models.Expense{}, ErrNonPositiveAmount
	}
	if date == "" {
		date = now.Format(time.DateOnly)
	}
	return models.Expense{
		ID:      models.NewID(),
		Name:    name,
		Amount:  amount,
		Date:    date,
		MonthID: now.Format("2006-01"),
	}, nil
}

// ---------------------------------------------------------------------------
// Aggregates
// ---------------------------------------------------------------------------

// TotalExpenses sums the active expenses.
func TotalExpenses(d models.FinancialData) decimal.Decimal {
	return rollover.Total(d.Expenses)
}

// Balance is salary minus active expenses.
func Balance(d models.FinancialData) decimal.Decimal {
	return d.Salary.Sub(TotalExpenses(d))
}

// Summary is a read-only digest of one ledger.
type Summary struct {
	Salary        decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	Obligations   obligation.Totals
	Archived      int
}

// Summarize computes the digest of d.
func Summarize(d models.FinancialData) Summary {
	return Summary{
		Salary:        d.Salary,
		TotalExpenses: TotalExpenses(d),
		Balance:       Balance(d),
		Obligations:   obligation.Sum(d.Obligations),
		Archived:      len(d.History),
	}
}

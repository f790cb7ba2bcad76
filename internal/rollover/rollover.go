// Package rollover archives a ledger's active expenses into its history.
package rollover

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-ports/pocketledger/internal/models"
)

// Labeler names the calendar month a history record is filed under.
type Labeler func(time.Time) string

// EnglishLabel renders "October 2026".
func EnglishLabel(t time.Time) string {
	return t.Format("January 2006")
}

var arabicMonths = [12]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// ArabicLabel renders the month with Egyptian Arabic month names.
func ArabicLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", arabicMonths[t.Month()-1], t.Year())
}

// LabelerFor returns the labeler for a display locale, defaulting to English.
func LabelerFor(locale string) Labeler {
	if locale == "ar" {
		return ArabicLabel
	}
	return EnglishLabel
}

// Total sums the amounts of expenses.
func Total(expenses []models.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Rollover snapshots data's active expenses into a new history record and
// clears them. With no active expenses data is returned unchanged and
// rolled is false. There is no inverse operation.
func Rollover(data models.FinancialData, now time.Time, label Labeler) (out models.FinancialData, rolled bool) {
	if len(data.Expenses) == 0 {
		return data, false
	}
	if label == nil {
		label = EnglishLabel
	}

	out = data.Clone()
	out.History = append(out.History, models.HistoryRecord{
		MonthName:     label(now),
		Salary:        data.Salary,
		TotalExpenses: Total(data.Expenses),
		Expenses:      models.CloneExpenses(data.Expenses),
	})
	out.Expenses = make([]models.Expense, 0)
	return out, true
}

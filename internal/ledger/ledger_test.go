package ledger_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/shopspring/decimal"

	"github.com/go-ports/pocketledger/internal/ledger"
	"github.com/go-ports/pocketledger/internal/models"
	"github.com/go-ports/pocketledger/internal/obligation"
	"github.com/go-ports/pocketledger/internal/rollover"
)

var now = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ---------------------------------------------------------------------------
// Get / Update
// ---------------------------------------------------------------------------

func TestGet_DefaultsForUnknownUser(t *testing.T) {
	c := qt.New(t)

	ledgers := map[string]models.FinancialData{}
	d := ledger.Get(ledgers, "u1")
	c.Assert(d, qt.DeepEquals, models.NewFinancialData())
	c.Assert(ledgers, qt.HasLen, 0)
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := qt.New(t)

	stored := models.NewFinancialData()
	stored.Expenses = []models.Expense{{ID: "e1", Name: "water", Amount: dec(10)}}
	ledgers := map[string]models.FinancialData{"u1": stored}

	d := ledger.Get(ledgers, "u1")
	d.Expenses[0].Name = "changed"
	c.Assert(ledgers["u1"].Expenses[0].Name, qt.Equals, "water")
}

func TestUpdate_CopyOnWrite(t *testing.T) {
	c := qt.New(t)

	other := models.NewFinancialData()
	other.Salary = dec(42)
	ledgers := map[string]models.FinancialData{"other": other}

	next := ledger.Update(ledgers, "u1", ledger.SetSalary(dec(1000)))

	c.Assert(next["u1"].Salary.Equal(dec(1000)), qt.IsTrue)
	c.Assert(next["other"], qt.DeepEquals, other)
	_, touched := ledgers["u1"]
	c.Assert(touched, qt.IsFalse)
}

func TestUpdate_EmptyUserIsNoop(t *testing.T) {
	c := qt.New(t)

	ledgers := map[string]models.FinancialData{}
	called := false
	next := ledger.Update(ledgers, "", func(d models.FinancialData) models.FinancialData {
		called = true
		return d
	})
	c.Assert(called, qt.IsFalse)
	c.Assert(next, qt.HasLen, 0)
}

// ---------------------------------------------------------------------------
// Updaters
// ---------------------------------------------------------------------------

func TestExpenseUpdaters_HappyPath(t *testing.T) {
	c := qt.New(t)

	e1, err := ledger.NewExpense("water", dec(50), "", now)
	c.Assert(err, qt.IsNil)
	e2, err := ledger.NewExpense("gas", dec(150), "2026-10-02", now)
	c.Assert(err, qt.IsNil)

	c.Assert(e1.Date, qt.Equals, "2026-10-19")
	c.Assert(e1.MonthID, qt.Equals, "2026-10")
	c.Assert(e2.Date, qt.Equals, "2026-10-02")

	ledgers := ledger.Update(nil, "u1", ledger.SetSalary(dec(1000)))
	ledgers = ledger.Update(ledgers, "u1", ledger.AddExpense(e1))
	ledgers = ledger.Update(ledgers, "u1", ledger.AddExpense(e2))

	c.Run("duplicate id is ignored", func(c *qt.C) {
		got := ledger.Update(ledgers, "u1", ledger.AddExpense(e1))
		c.Assert(got["u1"].Expenses, qt.HasLen, 2)
	})

	d := ledgers["u1"]
	c.Assert(ledger.TotalExpenses(d).Equal(dec(200)), qt.IsTrue)
	c.Assert(ledger.Balance(d).Equal(dec(800)), qt.IsTrue)

	ledgers = ledger.Update(ledgers, "u1", ledger.RemoveExpense(e1.ID))
	c.Assert(ledgers["u1"].Expenses, qt.HasLen, 1)
	c.Assert(ledgers["u1"].Expenses[0].ID, qt.Equals, e2.ID)
}

func TestNewExpense_Guards(t *testing.T) {
	c := qt.New(t)

	_, err := ledger.NewExpense("water", dec(0), "", now)
	c.Assert(err, qt.ErrorIs, ledger.ErrNonPositiveAmount)

	_, err = ledger.NewExpense("   ", dec(5), "", now)
	c.Assert(err, qt.ErrorIs, ledger.ErrEmptyName)
}

func TestSetSalary_NegativeClampsToZero(t *testing.T) {
	c := qt.New(t)
	got := ledger.SetSalary(dec(-5))(models.NewFinancialData())
	c.Assert(got.Salary.IsZero(), qt.IsTrue)
}

func TestRolloverUpdater_ComposesThroughUpdate(t *testing.T) {
	c := qt.New(t)

	ledgers := ledger.Update(nil, "u1", ledger.SetSalary(dec(1000)))
	for _, a := range []int64{50, 150} {
		e, err := ledger.NewExpense("bill", dec(a), "", now)
		c.Assert(err, qt.IsNil)
		ledgers = ledger.Update(ledgers, "u1", ledger.AddExpense(e))
	}

	ledgers = ledger.Update(ledgers, "u1", ledger.Rollover(now, rollover.EnglishLabel))
	d := ledgers["u1"]
	c.Assert(d.Expenses, qt.HasLen, 0)
	c.Assert(d.History, qt.HasLen, 1)
	c.Assert(d.History[0].Salary.Equal(dec(1000)), qt.IsTrue)
	c.Assert(d.History[0].TotalExpenses.Equal(dec(200)), qt.IsTrue)
}

func TestWithObligations_AndSummarize(t *testing.T) {
	c := qt.New(t)

	o, err := obligation.Create(obligation.Draft{Type: "car", Value: dec(1200), InstallmentsCount: 12}, now)
	c.Assert(err, qt.IsNil)

	ledgers := ledger.Update(nil, "u1", ledger.WithObligations(func(list []models.Obligation) []models.Obligation {
		out, _ := obligation.Add(list, o)
		return out
	}))
	ledgers = ledger.Update(ledgers, "u1", ledger.WithObligations(func(list []models.Obligation) []models.Obligation {
		out, _ := obligation.Pay(list, o.ID)
		return out
	}))

	s := ledger.Summarize(ledgers["u1"])
	c.Assert(s.Obligations.Value.Equal(dec(1200)), qt.IsTrue)
	c.Assert(s.Obligations.Remaining.Equal(dec(1100)), qt.IsTrue)
	c.Assert(s.Archived, qt.Equals, 0)
}

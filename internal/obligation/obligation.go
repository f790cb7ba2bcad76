// Package obligation implements the installment state machine for obligations.
//
// An obligation moves Pending -> PartiallyPaid -> Completed as installments
// are recorded. Payments never move it out of Completed.
package obligation

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-ports/pocketledger/internal/models"
)

// ErrNonPositiveValue is returned when an obligation is created or edited with value <= 0.
var ErrNonPositiveValue = errors.New("obligation value must be positive")

// DefaultDuration is used when a draft leaves the duration empty.
const DefaultDuration = "monthly"

// Presets are the obligation types offered by default.
var Presets = []string{"savings circle", "bank installments", "other obligations"}

// snapTolerance bounds the rounding left by n non-terminating divisions
// (e.g. 1000/3): each installment is rounded at DivisionPrecision places, so
// after n payments the shortfall is below n units in that last place.
func snapTolerance(n int) decimal.Decimal {
	if n < 1 {
		n = 1
	}
	return decimal.New(int64(n), -int32(decimal.DivisionPrecision))
}

// State is the lifecycle position of an obligation.
type State int

const (
	Pending State = iota
	PartiallyPaid
	Completed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case PartiallyPaid:
		return "partially-paid"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// StateOf derives the lifecycle state from the paid amount.
func StateOf(o models.Obligation) State {
	switch {
	case o.PaidAmount.GreaterThanOrEqual(o.Value):
		return Completed
	case o.PaidAmount.IsPositive():
		return PartiallyPaid
	default:
		return Pending
	}
}

// Draft carries the user-editable fields of an obligation.
type Draft struct {
	Type              string
	Value             decimal.Decimal
	InstallmentsCount int
	PaidAmount        decimal.Decimal
	Duration          string
	Date              string // YYYY-MM-DD; empty means today
}

// DraftOf returns the editable fields of o, so an edit can start from the
// stored values and change only what the caller names.
func DraftOf(o models.Obligation) Draft {
	return Draft{
		Type:              o.Type,
		Value:             o.Value,
		InstallmentsCount: o.InstallmentsCount,
		PaidAmount:        o.PaidAmount,
		Duration:          o.Duration,
		Date:              o.Date,
	}
}

// Create builds a new obligation from d.
// Installment counts below one are clamped to one and the paid amount is
// clamped into [0, value].
func Create(d Draft, now time.Time) (models.Obligation, error) {
	return build(models.NewID(), d, now)
}

func build(id string, d Draft, now time.Time) (models.Obligation, error) {
	if !d.Value.IsPositive() {
		return models.Obligation{}, ErrNonPositiveValue
	}
	o := models.Obligation{
		ID:                id,
		Type:              d.Type,
		Value:             d.Value,
		InstallmentsCount: d.InstallmentsCount,
		PaidAmount:        d.PaidAmount,
		Duration:          d.Duration,
		Date:              d.Date,
	}
	if o.Duration == "" {
		o.Duration = DefaultDuration
	}
	if o.Date == "" {
		o.Date = now.Format(time.DateOnly)
	}
	return Normalize(o), nil
}

// Normalize repairs the invariants of o: installmentsCount >= 1,
// 0 <= paidAmount <= value and isCompleted <=> paidAmount >= value.
func Normalize(o models.Obligation) models.Obligation {
	if o.InstallmentsCount < 1 {
		o.InstallmentsCount = 1
	}
	if o.Value.IsNegative() {
		o.Value = decimal.Zero
	}
	if o.PaidAmount.IsNegative() {
		o.PaidAmount = decimal.Zero
	}
	if o.PaidAmount.GreaterThan(o.Value) {
		o.PaidAmount = o.Value
	}
	o.IsCompleted = o.PaidAmount.GreaterThanOrEqual(o.Value)
	return o
}

// Installment returns the amortized amount credited per payment.
func Installment(o models.Obligation) decimal.Decimal {
	n := o.InstallmentsCount
	if n < 1 {
		n = 1
	}
	return o.Value.Div(decimal.NewFromInt(int64(n)))
}

// RecordInstallmentPayment credits one installment to o, clamped at o.Value.
// Calling it on a completed obligation returns it unchanged.
func RecordInstallmentPayment(o models.Obligation) models.Obligation {
	if StateOf(o) == Completed {
		o.PaidAmount = o.Value
		o.IsCompleted = true
		return o
	}
	paid := o.PaidAmount.Add(Installment(o))
	if paid.GreaterThan(o.Value) || o.Value.Sub(paid).LessThanOrEqual(snapTolerance(o.InstallmentsCount)) {
		paid = o.Value
	}
	o.PaidAmount = paid
	o.IsCompleted = paid.GreaterThanOrEqual(o.Value)
	return o
}

// ---------------------------------------------------------------------------
// List operations
// ---------------------------------------------------------------------------

// Add appends o unless an obligation with the same id already exists.
func Add(list []models.Obligation, o models.Obligation) ([]models.Obligation, bool) {
	if indexOf(list, o.ID) >= 0 {
		return list, false
	}
	out := make([]models.Obligation, len(list), len(list)+1)
	copy(out, list)
	return append(out, o), true
}

// Edit replaces the obligation with the given id by one built from d,
// keeping its id and position. Unknown ids leave the list untouched.
func Edit(list []models.Obligation, id string, d Draft, now time.Time) ([]models.Obligation, bool, error) {
	i := indexOf(list, id)
	if i < 0 {
		return list, false, nil
	}
	o, err := build(id, d, now)
	if err != nil {
		return list, true, err
	}
	out := make([]models.Obligation, len(list))
	copy(out, list)
	out[i] = o
	return out, true, nil
}

// Pay records one installment on the obligation with the given id.
func Pay(list []models.Obligation, id string) ([]models.Obligation, bool) {
	i := indexOf(list, id)
	if i < 0 {
		return list, false
	}
	out := make([]models.Obligation, len(list))
	copy(out, list)
	out[i] = RecordInstallmentPayment(out[i])
	return out, true
}

// Remove deletes the obligation with the given id, if any.
func Remove(list []models.Obligation, id string) []models.Obligation {
	out := make([]models.Obligation, 0, len(list))
	for _, o := range list {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return out
}

// Find returns the obligation with the given id.
func Find(list []models.Obligation, id string) (models.Obligation, bool) {
	if i := indexOf(list, id); i >= 0 {
		return list[i], true
	}
	return models.Obligation{}, false
}

func indexOf(list []models.Obligation, id string) int {
	for i, o := range list {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Aggregates
// ---------------------------------------------------------------------------

// Totals aggregates a list of obligations.
type Totals struct {
	Value     decimal.Decimal // sum of values
	Remaining decimal.Decimal // sum of value - paidAmount, completed ones included
}

// Sum computes Totals over every obligation in list.
func Sum(list []models.Obligation) Totals {
	t := Totals{Value: decimal.Zero, Remaining: decimal.Zero}
	for _, o := range list {
		t.Value = t.Value.Add(o.Value)
		t.Remaining = t.Remaining.Add(o.Remaining())
	}
	return t
}

// DueOn returns the uncompleted obligations dated day.
func DueOn(list []models.Obligation, day time.Time) []models.Obligation {
	key := day.Format(time.DateOnly)
	var due []models.Obligation
	for _, o := range list {
		if o.Date == key && !o.IsCompleted {
			due = append(due, o)
		}
	}
	return due
}

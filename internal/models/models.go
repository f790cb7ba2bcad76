// Package models defines the core data types for the ledger.
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() { //nolint:gochecknoinits // monetary fields must serialize as JSON numbers before any record is written
	// Records written by earlier revisions hold amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// SchemaVersion is the version stamped on every record this build writes.
const SchemaVersion = 2

// AdminID identifies the administrative account that can never be deleted.
const AdminID = "admin"

// DefaultTheme is the theme id used when none (or an unknown one) is stored.
const DefaultTheme = "modern-blue"

// User is an entry in the user directory.
// Passwords are stored and compared in plaintext.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"` // #nosec G117 -- plaintext credentials are part of the record format
}

// Expense is a single active expense of the current month.
type Expense struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Date    string          `json:"date"`    // YYYY-MM-DD
	MonthID string          `json:"monthId"` // YYYY-MM
}

// Obligation is an installment-based commitment tracked toward full payoff.
type Obligation struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	Value             decimal.Decimal `json:"value"`
	InstallmentsCount int             `json:"installmentsCount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	Duration          string          `json:"duration"`
	Date              string          `json:"date"`
	IsCompleted       bool            `json:"isCompleted"`
}

// Remaining returns the unpaid part of the obligation.
func (o Obligation) Remaining() decimal.Decimal {
	return o.Value.Sub(o.PaidAmount)
}

// HistoryRecord is an archived month. Its Expenses slice is a snapshot.
type HistoryRecord struct {
	MonthName     string          `json:"monthName"`
	Salary        decimal.Decimal `json:"salary"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Expenses      []Expense       `json:"expenses"`
}

// FinancialData is one user's ledger.
type FinancialData struct {
	Salary      decimal.Decimal `json:"salary"`
	Expenses    []Expense       `json:"expenses"`
	Obligations []Obligation    `json:"obligations"`
	History     []HistoryRecord `json:"history"`
}

// NewFinancialData returns a zeroed ledger with empty, non-nil collections.
func NewFinancialData() FinancialData {
	return FinancialData{
		Salary:      decimal.Zero,
		Expenses:    make([]Expense, 0),
		Obligations: make([]Obligation, 0),
		History:     make([]HistoryRecord, 0),
	}
}

// Clone returns a deep copy of d. Nil collections become empty ones.
func (d FinancialData) Clone() FinancialData {
	out := FinancialData{
		Salary:      d.Salary,
		Expenses:    CloneExpenses(d.Expenses),
		Obligations: make([]Obligation, len(d.Obligations)),
		History:     make([]HistoryRecord, len(d.History)),
	}
	copy(out.Obligations, d.Obligations)
	for i, h := range d.History {
		h.Expenses = CloneExpenses(h.Expenses)
		out.History[i] = h
	}
	return out
}

// CloneExpenses copies an expense slice, never returning nil.
func CloneExpenses(in []Expense) []Expense {
	out := make([]Expense, len(in))
	copy(out, in)
	return out
}

// ChatMessage is an entry of the global message log.
type ChatMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"` // unix milliseconds
}

// State is the whole application state. Exactly one value is live per process.
type State struct {
	SchemaVersion int                      `json:"schemaVersion"`
	CurrentUser   *User                    `json:"currentUser"`
	Users         []User                   `json:"users"`
	Ledgers       map[string]FinancialData `json:"ledgers"`
	Messages      []ChatMessage            `json:"messages"`
	Theme         string                   `json:"theme"`
}

// DefaultAdmin returns the built-in administrative account.
func DefaultAdmin() User {
	return User{ID: AdminID, Username: "admin", Password: "admin"}
}

// Default returns the state used when nothing (valid) is persisted.
func Default() *State {
	return &State{
		SchemaVersion: SchemaVersion,
		CurrentUser:   nil,
		Users:         []User{DefaultAdmin()},
		Ledgers:       make(map[string]FinancialData),
		Messages:      make([]ChatMessage, 0),
		Theme:         DefaultTheme,
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	out := &State{
		SchemaVersion: s.SchemaVersion,
		Users:         make([]User, len(s.Users)),
		Ledgers:       make(map[string]FinancialData, len(s.Ledgers)),
		Messages:      make([]ChatMessage, len(s.Messages)),
		Theme:         s.Theme,
	}
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	copy(out.Users, s.Users)
	copy(out.Messages, s.Messages)
	for id, d := range s.Ledgers {
		out.Ledgers[id] = d.Clone()
	}
	return out
}

// FindUser returns the user with the given id.
func (s *State) FindUser(id string) (User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// NewID returns a random identifier for users, expenses, obligations and messages.
func NewID() string {
	return uuid.NewString()
}

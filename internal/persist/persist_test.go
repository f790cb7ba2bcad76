package persist_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/shopspring/decimal"

	"github.com/go-ports/pocketledger/internal/db"
	"github.com/go-ports/pocketledger/internal/models"
	"github.com/go-ports/pocketledger/internal/persist"
)

// memStore is an in-memory persist.Store with injectable failures.
type memStore struct {
	slots    map[string]string
	getErr   error
	putErr   error
	putCalls int
}

func newMemStore() *memStore { return &memStore{slots: make(map[string]string)} }

func (m *memStore) Get(key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.slots[key]
	return v, ok, nil
}

func (m *memStore) Put(key, value string) error {
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	m.slots[key] = value
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// sampleState returns a populated state with a logged-in user.
func sampleState() *models.State {
	s := models.Default()
	mona := models.User{ID: "u1", Username: "mona", Password: "pw"}
	s.Users = append(s.Users, mona)
	s.CurrentUser = &mona
	s.Theme = "deep-dark"

	d := models.NewFinancialData()
	d.Salary = dec("1000")
	d.Expenses = append(d.Expenses, models.Expense{
		ID: "e1", Name: "water", Amount: dec("50.25"), Date: "2026-10-01", MonthID: "2026-10",
	})
	d.Obligations = append(d.Obligations, models.Obligation{
		ID: "o1", Type: "car", Value: dec("1200"), InstallmentsCount: 12,
		PaidAmount: dec("100"), Duration: "monthly", Date: "2026-10-05",
	})
	d.History = append(d.History, models.HistoryRecord{
		MonthName: "September 2026", Salary: dec("1000"), TotalExpenses: dec("200"),
		Expenses: []models.Expense{{ID: "e0", Name: "gas", Amount: dec("200"), Date: "2026-09-03", MonthID: "2026-09"}},
	})
	s.Ledgers["u1"] = d
	s.Ledgers["admin"] = models.NewFinancialData()
	s.Messages = append(s.Messages, models.ChatMessage{
		ID: "m1", SenderID: "u1", SenderName: "mona", Text: "hi", Timestamp: 1760000000000,
	})
	return s
}

// withoutSession returns a copy of s with CurrentUser cleared.
func withoutSession(s *models.State) *models.State {
	out := s.Clone()
	out.CurrentUser = nil
	return out
}

// ---------------------------------------------------------------------------
// Save / Load
// ---------------------------------------------------------------------------

func TestSaveLoad_RoundTrip(t *testing.T) {
	c := qt.New(t)

	store := newMemStore()
	a := persist.New(store, persist.Options{})
	s := sampleState()

	c.Assert(a.Save(s), qt.IsNil)
	got, status, err := a.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, persist.Loaded)
	c.Assert(got, qt.DeepEquals, withoutSession(s))
}

func TestSaveLoad_SQLiteStore(t *testing.T) {
	c := qt.New(t)

	d, err := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	c.Assert(err, qt.IsNil)
	defer d.Close()

	a := persist.New(d, persist.Options{Key: "k"})
	s := sampleState()
	c.Assert(a.Save(s), qt.IsNil)

	got, status, err := a.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, persist.Loaded)
	c.Assert(got, qt.DeepEquals, withoutSession(s))
}

func TestLoad_Defaults(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name       string
		record     string
		wantStatus persist.Status
	}{
		{"not json", "{{{ definitely not json", persist.Unreadable},
		{"empty string", "", persist.Unreadable},
		{"json null", "null", persist.Unreadable},
		{"json array", "[1,2,3]", persist.Unreadable},
		{"empty object", "{}", persist.Loaded},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			store := newMemStore()
			store.slots[persist.DefaultKey] = tc.record
			got, status, err := persist.New(store, persist.Options{}).Load()
			c.Assert(err, qt.IsNil)
			c.Assert(status, qt.Equals, tc.wantStatus)
			c.Assert(got, qt.DeepEquals, models.Default())
		})
	}

	c.Run("nothing stored", func(c *qt.C) {
		got, status, err := persist.New(newMemStore(), persist.Options{}).Load()
		c.Assert(err, qt.IsNil)
		c.Assert(status, qt.Equals, persist.Absent)
		c.Assert(got, qt.DeepEquals, models.Default())
	})

	c.Run("read failure is reported, not mistaken for an empty store", func(c *qt.C) {
		store := newMemStore()
		store.getErr = errors.New("disk gone")
		got, status, err := persist.New(store, persist.Options{}).Load()
		c.Assert(err, qt.ErrorMatches, `persist.Load "pocketledger.state": disk gone`)
		c.Assert(status, qt.Not(qt.Equals), persist.Absent)
		c.Assert(got, qt.DeepEquals, models.Default())
		c.Assert(store.putCalls, qt.Equals, 0)
	})
}

func TestLoad_LegacyKeyIsBridged(t *testing.T) {
	c := qt.New(t)

	legacy := `{
		"currentUser": {"id":"admin","username":"admin","password":"admin"},
		"users": [{"id":"admin","username":"admin","password":"admin"}],
		"financialData": {"admin": {"salary": 1000, "expenses": [{"id":"1","name":"water","amount":50,"date":"2026-10-01","monthId":"2026-10"}], "obligations": [], "history": []}},
		"messages": [],
		"theme": "royal-purple"
	}`
	store := newMemStore()
	store.slots["smart_prize_v3_stable_final"] = legacy

	a := persist.New(store, persist.Options{LegacyKeys: persist.DefaultLegacyKeys})
	got, status, err := a.Load()

	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, persist.Loaded)
	c.Assert(got.CurrentUser, qt.IsNil)
	c.Assert(got.Theme, qt.Equals, "royal-purple")
	c.Assert(got.Ledgers["admin"].Salary.Equal(dec("1000")), qt.IsTrue)
	c.Assert(got.Ledgers["admin"].Expenses, qt.HasLen, 1)

	// The record now lives under the current key and the legacy slot is untouched.
	raw, ok := store.slots[persist.DefaultKey]
	c.Assert(ok, qt.IsTrue)
	c.Assert(raw, qt.Contains, `"ledgers"`)
	c.Assert(store.slots["smart_prize_v3_stable_final"], qt.Equals, legacy)

	again, status, err := a.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, persist.Loaded)
	c.Assert(again, qt.DeepEquals, got)
}

func TestLoad_CurrentKeyWinsOverLegacy(t *testing.T) {
	c := qt.New(t)

	store := newMemStore()
	a := persist.New(store, persist.Options{LegacyKeys: []string{"old"}})
	c.Assert(a.Save(sampleState()), qt.IsNil)
	store.slots["old"] = `{"users":[{"id":"admin","username":"root","password":"x"}],"ledgers":{}}`

	got, _, err := a.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(got.Users, qt.HasLen, 2)
}

// ---------------------------------------------------------------------------
// Save failures
// ---------------------------------------------------------------------------

func TestSave_Failures(t *testing.T) {
	c := qt.New(t)

	c.Run("quota exceeded writes nothing", func(c *qt.C) {
		store := newMemStore()
		a := persist.New(store, persist.Options{MaxBytes: 64})
		err := a.Save(sampleState())
		c.Assert(err, qt.ErrorIs, persist.ErrQuotaExceeded)
		c.Assert(store.putCalls, qt.Equals, 0)
	})

	c.Run("store error is returned", func(c *qt.C) {
		store := newMemStore()
		store.putErr = errors.New("read-only filesystem")
		err := persist.New(store, persist.Options{}).Save(sampleState())
		c.Assert(err, qt.ErrorMatches, ".*read-only filesystem")
	})
}

// ---------------------------------------------------------------------------
// Export / Import
// ---------------------------------------------------------------------------

func TestExportImport_RoundTrip(t *testing.T) {
	c := qt.New(t)

	src := persist.New(newMemStore(), persist.Options{})
	s := sampleState()
	c.Assert(src.Save(s), qt.IsNil)

	token, err := src.ExportToken()
	c.Assert(err, qt.IsNil)

	dstStore := newMemStore()
	dst := persist.New(dstStore, persist.Options{})
	got, err := dst.ImportToken(token)
	c.Assert(err, qt.IsNil)
	c.Assert(got.CurrentUser, qt.IsNil)
	c.Assert(got.Users, qt.DeepEquals, s.Users)
	c.Assert(got.Ledgers, qt.DeepEquals, s.Ledgers)

	// The import was persisted under the current key.
	reloaded, status, err := dst.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, persist.Loaded)
	c.Assert(reloaded, qt.DeepEquals, got)
}

func TestExportToken_Verbatim(t *testing.T) {
	c := qt.New(t)

	store := newMemStore()
	store.slots[persist.DefaultKey] = `{"users":[],"ledgers":{}, "extra": true}`
	token, err := persist.New(store, persist.Options{}).ExportToken()
	c.Assert(err, qt.IsNil)
	c.Assert(token, qt.Equals, `{"users":[],"ledgers":{}, "extra": true}`)

	_, err = persist.New(newMemStore(), persist.Options{}).ExportToken()
	c.Assert(err, qt.ErrorIs, persist.ErrNoRecord)
}

func TestImportToken_AcceptsLegacyShape(t *testing.T) {
	c := qt.New(t)

	got, err := persist.New(newMemStore(), persist.Options{}).ImportToken(
		`{"users":[{"id":"admin","username":"admin","password":"admin"},{"id":"17","username":"x","password":"y"}],"financialData":{"17":{"salary":5}}}`,
	)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Users, qt.HasLen, 2)
	c.Assert(got.Ledgers["17"].Salary.Equal(dec("5")), qt.IsTrue)
	c.Assert(got.Ledgers["17"].Expenses, qt.IsNotNil)
}

func TestImportToken_NullLedgersUsesFinancialData(t *testing.T) {
	c := qt.New(t)

	store := newMemStore()
	got, err := persist.New(store, persist.Options{}).ImportToken(
		`{"users":[{"id":"admin","username":"admin","password":"admin"}],"ledgers":null,"financialData":{"admin":{"salary":1000}}}`,
	)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Ledgers, qt.HasLen, 1)
	c.Assert(got.Ledgers["admin"].Salary.Equal(dec("1000")), qt.IsTrue)
	c.Assert(store.putCalls, qt.Equals, 1)
}

func TestImportToken_Rejections(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name   string
		text   string
		reason string
	}{
		{"not json", "hello", "not valid JSON"},
		{"array", "[]", "top level is not an object"},
		{"missing users", `{"ledgers":{}}`, "missing users"},
		{"users not a list", `{"users":{},"ledgers":{}}`, "missing users"},
		{"missing ledgers", `{"users":[]}`, "missing ledgers"},
		{"ledgers not a map", `{"users":[],"ledgers":[]}`, "missing ledgers"},
		{"null ledgers and no financialData", `{"users":[],"ledgers":null}`, "missing ledgers"},
		{"financialData not a map", `{"users":[],"financialData":"x"}`, "missing ledgers"},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			store := newMemStore()
			a := persist.New(store, persist.Options{})
			c.Assert(a.Save(sampleState()), qt.IsNil)
			before := store.slots[persist.DefaultKey]

			_, err := a.ImportToken(tc.text)
			var verr *persist.ValidationError
			c.Assert(errors.As(err, &verr), qt.IsTrue)
			c.Assert(strings.Contains(verr.Error(), tc.reason), qt.IsTrue, qt.Commentf("got %q", verr.Error()))
			c.Assert(store.slots[persist.DefaultKey], qt.Equals, before)
			c.Assert(store.putCalls, qt.Equals, 1)
		})
	}
}

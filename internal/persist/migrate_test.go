package persist_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/pocketledger/internal/models"
	"github.com/go-ports/pocketledger/internal/persist"
)

func TestMigrate_FieldByFieldMerge(t *testing.T) {
	c := qt.New(t)

	c.Run("only theme present keeps other defaults", func(c *qt.C) {
		m, err := persist.Migrate([]byte(`{"theme":"nature-green"}`))
		c.Assert(err, qt.IsNil)
		want := models.Default()
		want.Theme = "nature-green"
		c.Assert(m.State, qt.DeepEquals, want)
		c.Assert(m.FromVersion, qt.Equals, 1)
		c.Assert(m.Fallbacks, qt.HasLen, 0)
	})

	c.Run("unreadable field falls back and is reported", func(c *qt.C) {
		m, err := persist.Migrate([]byte(`{"users":"oops","messages":42,"theme":"deep-dark"}`))
		c.Assert(err, qt.IsNil)
		c.Assert(m.State.Users, qt.DeepEquals, []models.User{models.DefaultAdmin()})
		c.Assert(m.State.Messages, qt.HasLen, 0)
		c.Assert(m.State.Theme, qt.Equals, "deep-dark")
		c.Assert(m.Fallbacks, qt.DeepEquals, []string{"users", "messages"})
	})

	c.Run("one bad ledger does not drop the others", func(c *qt.C) {
		m, err := persist.Migrate([]byte(`{"ledgers":{"a":{"salary":1},"b":"broken"}}`))
		c.Assert(err, qt.IsNil)
		c.Assert(m.State.Ledgers, qt.HasLen, 1)
		c.Assert(m.Fallbacks, qt.DeepEquals, []string{"ledgers.b"})
	})
}

func TestMigrate_SessionNeverRestored(t *testing.T) {
	c := qt.New(t)
	m, err := persist.Migrate([]byte(`{"currentUser":{"id":"admin","username":"admin","password":"admin"}}`))
	c.Assert(err, qt.IsNil)
	c.Assert(m.State.CurrentUser, qt.IsNil)
}

func TestMigrate_UserDirectory(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name    string
		record  string
		wantIDs []string
	}{
		{"empty list resets to admin", `{"users":[]}`, []string{"admin"}},
		{"null resets to admin", `{"users":null}`, []string{"admin"}},
		{"missing admin is restored first", `{"users":[{"id":"u1","username":"a","password":"b"}]}`, []string{"admin", "u1"}},
		{"existing admin kept in place", `{"users":[{"id":"u1","username":"a","password":"b"},{"id":"admin","username":"boss","password":"c"}]}`, []string{"u1", "admin"}},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			m, err := persist.Migrate([]byte(tc.record))
			c.Assert(err, qt.IsNil)
			ids := make([]string, len(m.State.Users))
			for i, u := range m.State.Users {
				ids[i] = u.ID
			}
			c.Assert(ids, qt.DeepEquals, tc.wantIDs)
		})
	}
}

func TestMigrate_RepairsLedgers(t *testing.T) {
	c := qt.New(t)

	m, err := persist.Migrate([]byte(`{
		"financialData": {
			"u1": {
				"salary": 900,
				"expenses": null,
				"obligations": [
					{"id":"o1","type":"bank","value":500,"installmentsCount":0,"paidAmount":700,"isCompleted":false},
					{"id":"o2","type":"loan","value":300,"installmentsCount":3,"paidAmount":-10,"isCompleted":true}
				]
			}
		}
	}`))
	c.Assert(err, qt.IsNil)

	d := m.State.Ledgers["u1"]
	c.Assert(d.Expenses, qt.IsNotNil)
	c.Assert(d.History, qt.IsNotNil)

	o1 := d.Obligations[0]
	c.Assert(o1.InstallmentsCount, qt.Equals, 1)
	c.Assert(o1.PaidAmount.Equal(o1.Value), qt.IsTrue)
	c.Assert(o1.IsCompleted, qt.IsTrue)

	o2 := d.Obligations[1]
	c.Assert(o2.PaidAmount.IsZero(), qt.IsTrue)
	c.Assert(o2.IsCompleted, qt.IsFalse)
}

func TestMigrate_DropsNonPositiveObligations(t *testing.T) {
	c := qt.New(t)

	m, err := persist.Migrate([]byte(`{
		"ledgers": {
			"u1": {
				"obligations": [
					{"id":"neg","type":"bank","value":-5,"installmentsCount":1,"paidAmount":0},
					{"id":"ok","type":"loan","value":1200,"installmentsCount":12,"paidAmount":100},
					{"id":"zero","type":"card","value":0,"installmentsCount":1,"paidAmount":0}
				]
			}
		}
	}`))
	c.Assert(err, qt.IsNil)

	d := m.State.Ledgers["u1"]
	c.Assert(d.Obligations, qt.HasLen, 1)
	c.Assert(d.Obligations[0].ID, qt.Equals, "ok")
	c.Assert(d.Obligations[0].IsCompleted, qt.IsFalse)
	c.Assert(m.Fallbacks, qt.DeepEquals, []string{"ledgers.u1.obligations.neg", "ledgers.u1.obligations.zero"})
}

func TestMigrate_LedgerSource(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name          string
		record        string
		wantSalary    string
		wantFallbacks []string
	}{
		{
			name:       "ledgers wins over financialData",
			record:     `{"ledgers":{"u1":{"salary":10}},"financialData":{"u1":{"salary":20}}}`,
			wantSalary: "10",
		},
		{
			name:       "null ledgers falls back to financialData",
			record:     `{"ledgers":null,"financialData":{"u1":{"salary":1000}}}`,
			wantSalary: "1000",
		},
		{
			name:       "ledgers that is not an object falls back to financialData",
			record:     `{"ledgers":[1,2],"financialData":{"u1":{"salary":30}}}`,
			wantSalary: "30",
		},
		{
			name:          "unusable ledgers with no financialData is reported",
			record:        `{"ledgers":[]}`,
			wantFallbacks: []string{"ledgers"},
		},
	}

	for _, tc := range tests {
		c.Run(tc.name, func(c *qt.C) {
			m, err := persist.Migrate([]byte(tc.record))
			c.Assert(err, qt.IsNil)
			c.Assert(m.Fallbacks, qt.DeepEquals, tc.wantFallbacks)
			if tc.wantSalary == "" {
				c.Assert(m.State.Ledgers, qt.HasLen, 0)
				return
			}
			c.Assert(m.State.Ledgers, qt.HasLen, 1)
			c.Assert(m.State.Ledgers["u1"].Salary.String(), qt.Equals, tc.wantSalary)
		})
	}
}

func TestMigrate_UnknownThemeFallsBack(t *testing.T) {
	c := qt.New(t)
	m, err := persist.Migrate([]byte(`{"theme":"hot-pink"}`))
	c.Assert(err, qt.IsNil)
	c.Assert(m.State.Theme, qt.Equals, models.DefaultTheme)
}

func TestMigrate_Version(t *testing.T) {
	c := qt.New(t)
	m, err := persist.Migrate([]byte(`{"schemaVersion":2}`))
	c.Assert(err, qt.IsNil)
	c.Assert(m.FromVersion, qt.Equals, 2)
	c.Assert(m.State.SchemaVersion, qt.Equals, models.SchemaVersion)
}

func TestMigrate_Errors(t *testing.T) {
	c := qt.New(t)

	_, err := persist.Migrate([]byte(`null`))
	c.Assert(err, qt.ErrorIs, persist.ErrEmptyRecord)

	_, err = persist.Migrate([]byte(`not json`))
	c.Assert(err, qt.IsNotNil)
}

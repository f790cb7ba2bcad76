package mcp

// White-box testing required: lastN is the unexported helper that trims the
// history returned by ledger_history and guarantees a non-nil JSON array.

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/go-ports/pocketledger/internal/models"
)

// ---------------------------------------------------------------------------
// lastN
// ---------------------------------------------------------------------------

func TestLastN_HappyPath(t *testing.T) {
	c := qt.New(t)

	history := []models.HistoryRecord{
		{MonthName: "August 2026"},
		{MonthName: "September 2026"},
		{MonthName: "October 2026"},
	}

	cases := []struct {
		name string
		n    int
		want []string
	}{
		{"zero returns all", 0, []string{"August 2026", "September 2026", "October 2026"}},
		{"negative returns all", -1, []string{"August 2026", "September 2026", "October 2026"}},
		{"trailing records", 2, []string{"September 2026", "October 2026"}},
		{"limit above length", 10, []string{"August 2026", "September 2026", "October 2026"}},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			got := lastN(history, tc.n)
			names := make([]string, len(got))
			for i, h := range got {
				names[i] = h.MonthName
			}
			c.Assert(names, qt.DeepEquals, tc.want)
		})
	}
}

func TestLastN_EmptyIsNotNil(t *testing.T) {
	c := qt.New(t)
	got := lastN(nil, 3)
	c.Assert(got, qt.IsNotNil)
	c.Assert(got, qt.HasLen, 0)
}

func TestJSONResult_EncodesDecimalsAsNumbers(t *testing.T) {
	c := qt.New(t)

	res, err := jsonResult(models.NewFinancialData())
	c.Assert(err, qt.IsNil)
	c.Assert(res.IsError, qt.IsFalse)
	tc, ok := mcp.AsTextContent(res.Content[0])
	c.Assert(ok, qt.IsTrue)
	c.Assert(tc.Text, qt.Contains, `"salary":0`)
}

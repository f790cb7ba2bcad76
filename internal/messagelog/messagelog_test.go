package messagelog_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/pocketledger/internal/messagelog"
	"github.com/go-ports/pocketledger/internal/models"
)

var now = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func TestNew_HappyPath(t *testing.T) {
	c := qt.New(t)

	msg, err := messagelog.New(models.DefaultAdmin(), "  hello  ", now)
	c.Assert(err, qt.IsNil)
	c.Assert(msg.Text, qt.Equals, "hello")
	c.Assert(msg.SenderID, qt.Equals, "admin")
	c.Assert(msg.SenderName, qt.Equals, "admin")
	c.Assert(msg.Timestamp, qt.Equals, now.UnixMilli())
	c.Assert(msg.ID, qt.Not(qt.Equals), "")
}

func TestNew_BlankRejected(t *testing.T) {
	c := qt.New(t)
	_, err := messagelog.New(models.DefaultAdmin(), " \n\t", now)
	c.Assert(err, qt.ErrorIs, messagelog.ErrEmptyMessage)
}

func TestAppend_PreservesInsertionOrder(t *testing.T) {
	c := qt.New(t)

	var log []models.ChatMessage
	for _, text := range []string{"one", "two", "three"} {
		msg, err := messagelog.New(models.DefaultAdmin(), text, now)
		c.Assert(err, qt.IsNil)
		prev := log
		log = messagelog.Append(log, msg)
		c.Assert(log, qt.HasLen, len(prev)+1)
	}
	c.Assert(log[0].Text, qt.Equals, "one")
	c.Assert(log[2].Text, qt.Equals, "three")
}

func TestAppend_SameInstantGetsDistinctIDs(t *testing.T) {
	c := qt.New(t)

	a, err := messagelog.New(models.DefaultAdmin(), "a", now)
	c.Assert(err, qt.IsNil)
	b, err := messagelog.New(models.DefaultAdmin(), "b", now)
	c.Assert(err, qt.IsNil)
	c.Assert(a.ID, qt.Not(qt.Equals), b.ID)
}

func TestRecent(t *testing.T) {
	c := qt.New(t)

	log := []models.ChatMessage{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	cases := []struct {
		name string
		n    int
		want []string
	}{
		{"last two", 2, []string{"2", "3"}},
		{"more than length", 10, []string{"1", "2", "3"}},
		{"zero means all", 0, []string{"1", "2", "3"}},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			got := messagelog.Recent(log, tc.n)
			ids := make([]string, len(got))
			for i, m := range got {
				ids[i] = m.ID
			}
			c.Assert(ids, qt.DeepEquals, tc.want)
		})
	}
}

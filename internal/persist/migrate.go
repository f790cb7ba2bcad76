package persist

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-ports/pocketledger/internal/models"
	"github.com/go-ports/pocketledger/internal/obligation"
	"github.com/go-ports/pocketledger/internal/theme"
)

// ErrEmptyRecord is returned by Migrate for a blank or null record.
var ErrEmptyRecord = errors.New("record is empty")

// Migration is the outcome of mapping a persisted record onto the current schema.
type Migration struct {
	State *models.State
	// FromVersion is the schema version the record was written with
	// (1 for records that predate versioning).
	FromVersion int
	// Fallbacks names the fields that were present but unreadable and were
	// replaced by their defaults.
	Fallbacks []string
}

// Migrate maps any prior or partial record onto the current schema.
//
// Fields are merged one by one over models.Default(): a readable field wins,
// an absent or unreadable one keeps its default. The session is never
// restored, an empty user directory is reset to the admin account, and the
// ledger map is read from "ledgers" or, for older records, "financialData".
// Migrate does no I/O.
func Migrate(raw []byte) (*Migration, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("Migrate: %w", err)
	}
	if fields == nil {
		return nil, ErrEmptyRecord
	}

	m := &Migration{State: models.Default(), FromVersion: 1}
	st := m.State

	if v, ok := fields["schemaVersion"]; ok {
		if err := json.Unmarshal(v, &m.FromVersion); err != nil {
			m.Fallbacks = append(m.Fallbacks, "schemaVersion")
			m.FromVersion = 1
		}
	}

	if v, ok := fields["users"]; ok {
		var users []models.User
		if err := json.Unmarshal(v, &users); err != nil {
			m.Fallbacks = append(m.Fallbacks, "users")
		} else if len(users) > 0 {
			st.Users = ensureAdmin(users)
		}
	}

	if ledgers, ok := ledgerSource(fields); ok {
		for id, lr := range ledgers {
			var d models.FinancialData
			if err := json.Unmarshal(lr, &d); err != nil {
				m.Fallbacks = append(m.Fallbacks, "ledgers."+id)
				continue
			}
			d, dropped := normalizeLedger(d)
			for _, oid := range dropped {
				m.Fallbacks = append(m.Fallbacks, "ledgers."+id+".obligations."+oid)
			}
			st.Ledgers[id] = d
		}
	} else if hasAny(fields, ledgerKeys...) {
		m.Fallbacks = append(m.Fallbacks, "ledgers")
	}

	if v, ok := fields["messages"]; ok {
		var msgs []models.ChatMessage
		if err := json.Unmarshal(v, &msgs); err != nil {
			m.Fallbacks = append(m.Fallbacks, "messages")
		} else if msgs != nil {
			st.Messages = msgs
		}
	}

	if v, ok := fields["theme"]; ok {
		var id string
		if err := json.Unmarshal(v, &id); err != nil {
			m.Fallbacks = append(m.Fallbacks, "theme")
		} else {
			st.Theme = string(theme.Resolve(id).ID)
		}
	}

	st.CurrentUser = nil
	st.SchemaVersion = models.SchemaVersion
	return m, nil
}

func ensureAdmin(users []models.User) []models.User {
	for _, u := range users {
		if u.ID == models.AdminID {
			return users
		}
	}
	return append([]models.User{models.DefaultAdmin()}, users...)
}

// ledgerKeys are the fields a ledger map may be stored under, newest first.
var ledgerKeys = []string{"ledgers", "financialData"}

// ledgerSource returns the first of ledgerKeys that holds a JSON object.
// A "ledgers" field that is null or not an object does not hide an older
// "financialData" map. Both import validation and Migrate use it.
func ledgerSource(fields map[string]json.RawMessage) (map[string]json.RawMessage, bool) {
	for _, key := range ledgerKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var ledgers map[string]json.RawMessage
		if err := json.Unmarshal(raw, &ledgers); err == nil && ledgers != nil {
			return ledgers, true
		}
	}
	return nil, false
}

func hasAny(fields map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

// normalizeLedger fills nil collections and repairs obligation invariants.
// Obligations without a positive value cannot be created and are dropped;
// their ids are returned.
func normalizeLedger(d models.FinancialData) (models.FinancialData, []string) {
	out := d.Clone()
	var dropped []string
	kept := make([]models.Obligation, 0, len(out.Obligations))
	for _, o := range out.Obligations {
		if !o.Value.IsPositive() {
			dropped = append(dropped, o.ID)
			continue
		}
		kept = append(kept, obligation.Normalize(o))
	}
	out.Obligations = kept
	return out, dropped
}

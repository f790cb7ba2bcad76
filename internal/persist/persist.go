// Package persist loads and saves the application state in a durable
// key-value slot, and implements manual export/import of that record.
//
// An unreadable record degrades to the default state with a logged warning; a
// store that cannot be read at all is an error. Saving is best effort; callers log the error and keep
// their in-memory state. Writes are not transactional with the in-memory
// update that precedes them, so a crash in between loses that one change.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yalp/jsonpath"

	"github.com/go-ports/pocketledger/internal/models"
)

// DefaultKey is the slot the current build reads and writes.
const DefaultKey = "pocketledger.state"

// DefaultLegacyKeys are slots written by earlier revisions, newest first.
var DefaultLegacyKeys = []string{"smart_prize_v3_stable_final"}

// ErrQuotaExceeded is returned by Save when the record is larger than the
// configured limit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrNoRecord is returned by ExportToken when nothing has been persisted yet.
var ErrNoRecord = errors.New("no persisted record")

// Store is the durable key-value slot. *db.DB implements it.
type Store interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// ValidationError reports an import that was rejected.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return "invalid import: " + e.Reason + ": " + e.Err.Error()
	}
	return "invalid import: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Options configures an Adapter.
type Options struct {
	Key        string   // current slot; DefaultKey when empty
	LegacyKeys []string // slots consulted when Key holds nothing
	MaxBytes   int      // 0 disables the quota
}

// Adapter reads and writes the serialized state.
type Adapter struct {
	store Store
	opts  Options
}

// New returns an Adapter over store.
func New(store Store, opts Options) *Adapter {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	return &Adapter{store: store, opts: opts}
}

// Key returns the slot the adapter writes to.
func (a *Adapter) Key() string { return a.opts.Key }

// Status reports what Load found in storage.
type Status int

const (
	// Absent means no record exists under the current or legacy keys.
	Absent Status = iota
	// Loaded means a record was read and migrated.
	Loaded
	// Unreadable means a record exists but could not be parsed.
	Unreadable
)

// Load returns the persisted state, or models.Default() when the record is
// missing or unreadable. When the current slot is empty the legacy slots are
// tried in order; a legacy record is migrated and re-saved under the current
// key.
//
// A failing store is reported as an error so callers never mistake it for an
// empty one and seed over a live record.
func (a *Adapter) Load() (*models.State, Status, error) {
	raw, ok, err := a.store.Get(a.opts.Key)
	if err != nil {
		return models.Default(), Unreadable, fmt.Errorf("persist.Load %q: %w", a.opts.Key, err)
	}
	if ok {
		m, err := Migrate([]byte(raw))
		if err != nil {
			slog.Warn("persist: unreadable record, using defaults", "key", a.opts.Key, "err", err)
			return models.Default(), Unreadable, nil
		}
		logFallbacks(a.opts.Key, m)
		return m.State, Loaded, nil
	}

	for _, key := range a.opts.LegacyKeys {
		raw, ok, err := a.store.Get(key)
		if err != nil {
			return models.Default(), Unreadable, fmt.Errorf("persist.Load %q: %w", key, err)
		}
		if !ok {
			continue
		}
		m, err := Migrate([]byte(raw))
		if err != nil {
			slog.Warn("persist: unreadable legacy record", "key", key, "err", err)
			continue
		}
		logFallbacks(key, m)
		slog.Info("persist: migrated legacy record", "from", key, "to", a.opts.Key, "version", m.FromVersion)
		if err := a.Save(m.State); err != nil {
			slog.Warn("persist: saving migrated record failed", "err", err)
		}
		return m.State, Loaded, nil
	}
	return models.Default(), Absent, nil
}

// Save serializes state into the current slot.
func (a *Adapter) Save(state *models.State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("persist.Save: %w", err)
	}
	if a.opts.MaxBytes > 0 && len(b) > a.opts.MaxBytes {
		return fmt.Errorf("persist.Save: %w (%d > %d bytes)", ErrQuotaExceeded, len(b), a.opts.MaxBytes)
	}
	if err := a.store.Put(a.opts.Key, string(b)); err != nil {
		return fmt.Errorf("persist.Save: %w", err)
	}
	return nil
}

// ExportToken returns the record currently persisted under the current key,
// byte for byte.
func (a *Adapter) ExportToken() (string, error) {
	raw, ok, err := a.store.Get(a.opts.Key)
	if err != nil {
		return "", fmt.Errorf("persist.ExportToken: %w", err)
	}
	if !ok {
		return "", ErrNoRecord
	}
	return raw, nil
}

// ImportToken validates text, migrates it and persists it under the current
// key. It requires a "users" array and a "ledgers" (or "financialData")
// object. On failure it returns a *ValidationError and writes nothing.
func (a *Adapter) ImportToken(text string) (*models.State, error) {
	if err := validate([]byte(text)); err != nil {
		return nil, err
	}
	m, err := Migrate([]byte(text))
	if err != nil {
		return nil, &ValidationError{Reason: "unreadable record", Err: err}
	}
	logFallbacks("import", m)
	if err := a.Save(m.State); err != nil {
		slog.Warn("persist: saving imported record failed", "err", err)
	}
	return m.State, nil
}

// validate checks the minimum shape an import must have.
func validate(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Reason: "not valid JSON", Err: err}
	}
	if _, ok := doc.(map[string]any); !ok {
		return &ValidationError{Reason: "top level is not an object"}
	}
	users, err := jsonpath.Read(doc, "$.users")
	if _, isList := users.([]any); err != nil || !isList {
		return &ValidationError{Reason: "missing users collection"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return &ValidationError{Reason: "top level is not an object", Err: err}
	}
	if _, ok := ledgerSource(fields); !ok {
		return &ValidationError{Reason: "missing ledgers mapping"}
	}
	return nil
}

func logFallbacks(key string, m *Migration) {
	if len(m.Fallbacks) > 0 {
		slog.Warn("persist: fields reset to defaults", "key", key, "fields", m.Fallbacks)
	}
}

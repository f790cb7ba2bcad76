// Package service implements the ledger controller that wires together
// configuration, the SQLite slot store, persistence, authentication and the
// pure ledger, obligation, rollover and message log operations.
//
// Every command runs to completion under a mutex and is followed by a best
// effort save. A failed save is logged and the in-memory state stays
// authoritative.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-ports/pocketledger/internal/auth"
	"github.com/go-ports/pocketledger/internal/config"
	"github.com/go-ports/pocketledger/internal/db"
	"github.com/go-ports/pocketledger/internal/ledger"
	"github.com/go-ports/pocketledger/internal/messagelog"
	"github.com/go-ports/pocketledger/internal/models"
	"github.com/go-ports/pocketledger/internal/obligation"
	"github.com/go-ports/pocketledger/internal/persist"
	"github.com/go-ports/pocketledger/internal/redaction"
	"github.com/go-ports/pocketledger/internal/rollover"
	"github.com/go-ports/pocketledger/internal/theme"
)

var (
	// ErrNoSession is returned by commands that need a logged-in user.
	ErrNoSession = errors.New("not logged in")
	// ErrNotFound is returned when an expense or obligation id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrUnknownTheme is returned by SetTheme for ids outside the theme set.
	ErrUnknownTheme = errors.New("unknown theme")
)

// Service is the single owner of the live application state.
type Service struct {
	LedgerHome string
	Config     *config.LedgerConfig

	database     *db.DB
	adapter      *persist.Adapter
	state        *models.State
	label        rollover.Labeler
	chatPatterns []*regexp.Regexp
	now          func() time.Time
	mu           sync.Mutex
}

// New initialises a Service rooted at ledgerHome.
// If ledgerHome is empty it is resolved via config.ResolveLedgerHome.
// When no record is stored the default state is written immediately.
func New(ledgerHome string) (*Service, error) {
	if ledgerHome == "" {
		ledgerHome, _ = config.ResolveLedgerHome("")
	}
	if err := os.MkdirAll(ledgerHome, 0o755); err != nil {
		return nil, fmt.Errorf("service.New: create home: %w", err)
	}

	cfg, err := config.Load(filepath.Join(ledgerHome, "config.yaml"))
	if err != nil {
		return nil, fmt.Errorf("service.New: load config: %w", err)
	}

	database, err := db.Open(filepath.Join(ledgerHome, "ledger.db"))
	if err != nil {
		return nil, fmt.Errorf("service.New: open db: %w", err)
	}

	patterns, err := redaction.LoadPatterns(filepath.Join(ledgerHome, ".chatignore"))
	if err != nil {
		slog.Warn("failed to load .chatignore", "err", err)
	}

	s := &Service{
		LedgerHome: ledgerHome,
		Config:     cfg,
		database:   database,
		adapter: persist.New(database, persist.Options{
			Key:        cfg.Storage.Key,
			LegacyKeys: cfg.Storage.LegacyKeys,
			MaxBytes:   cfg.Storage.MaxBytes,
		}),
		label:        rollover.LabelerFor(cfg.Display.Locale),
		chatPatterns: patterns,
		now:          time.Now,
	}

	if err := s.restore(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("service.New: %w", err)
	}
	if err := database.SetMeta("schema_version", strconv.Itoa(models.SchemaVersion)); err != nil {
		slog.Warn("service.New: record schema version", "err", err)
	}
	return s, nil
}

// Close releases all resources held by the service.
func (s *Service) Close() error {
	return s.database.Close()
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// restore loads the persisted state. The defaults are written back only when
// storage holds no record; an unreadable record is left in place until the
// next command saves over it.
func (s *Service) restore() error {
	state, status, err := s.adapter.Load()
	if err != nil {
		return err
	}
	s.state = state
	if status == persist.Absent {
		s.persist("seed")
	}
	return nil
}

// persist saves the live state. Failures are logged, never returned.
// Callers must hold s.mu.
func (s *Service) persist(op string) {
	if err := s.adapter.Save(s.state); err != nil {
		slog.Warn(op+": save failed, keeping in-memory state", "err", err)
	}
}

// sessionID returns the logged-in user's id. Callers must hold s.mu.
func (s *Service) sessionID() (string, error) {
	if s.state.CurrentUser == nil {
		return "", ErrNoSession
	}
	return s.state.CurrentUser.ID, nil
}

// update applies fn to the logged-in user's ledger, persists and returns the
// new ledger. Callers must hold s.mu.
func (s *Service) update(op string, fn ledger.Updater) (models.FinancialData, error) {
	id, err := s.sessionID()
	if err != nil {
		return models.FinancialData{}, err
	}
	s.state.Ledgers = ledger.Update(s.state.Ledgers, id, fn)
	s.persist(op)
	return ledger.Get(s.state.Ledgers, id), nil
}

// current returns a copy of the logged-in user's ledger. Callers must hold s.mu.
func (s *Service) current() (models.FinancialData, error) {
	id, err := s.sessionID()
	if err != nil {
		return models.FinancialData{}, err
	}
	return ledger.Get(s.state.Ledgers, id), nil
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

// Login authenticates username/password and starts a session.
func (s *Service) Login(username, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := auth.Authenticate(username, password, s.state.Users)
	if err != nil {
		return models.User{}, err
	}
	s.state.CurrentUser = &u
	s.persist("Login")
	return u, nil
}

// Logout ends the session, if any.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentUser == nil {
		return
	}
	s.state.CurrentUser = nil
	s.persist("Logout")
}

// CurrentUser returns the logged-in user.
func (s *Service) CurrentUser() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentUser == nil {
		return models.User{}, false
	}
	return *s.state.CurrentUser, true
}

// ---------------------------------------------------------------------------
// Ledger
// ---------------------------------------------------------------------------

// Ledger returns a copy of the logged-in user's ledger.
func (s *Service) Ledger() (models.FinancialData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// Summary returns the digest of the logged-in user's ledger.
func (s *Service) Summary() (ledger.Summary, error) {
	d, err := s.Ledger()
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(d), nil
}

// SetSalary replaces the monthly salary. Negative amounts are stored as zero.
func (s *Service) SetSalary(amount decimal.Decimal) (models.FinancialData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update("SetSalary", ledger.SetSalary(amount))
}

// AddExpense records an expense for the current month.
func (s *Service) AddExpense(name string, amount decimal.Decimal, date string) (models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessionID(); err != nil {
		return models.Expense{}, err
	}
	e, err := ledger.NewExpense(name, amount, date, s.now())
	if err != nil {
		return models.Expense{}, fmt.Errorf("AddExpense: %w", err)
	}
	if _, err := s.update("AddExpense", ledger.AddExpense(e)); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// RemoveExpense deletes an active expense.
func (s *Service) RemoveExpense(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.current()
	if err != nil {
		return err
	}
	found := false
	for _, e := range d.Expenses {
		if e.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("RemoveExpense %q: %w", id, ErrNotFound)
	}
	_, err = s.update("RemoveExpense", ledger.RemoveExpense(id))
	return err
}

// Rollover archives the active expenses into history under the current
// month's label. rolled is false when there was nothing to archive.
func (s *Service) Rollover() (rec models.HistoryRecord, rolled bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.current()
	if err != nil {
		return models.HistoryRecord{}, false, err
	}
	out, rolled := rollover.Rollover(d, s.now(), s.label)
	if !rolled {
		return models.HistoryRecord{}, false, nil
	}
	if _, err := s.update("Rollover", func(models.FinancialData) models.FinancialData { return out }); err != nil {
		return models.HistoryRecord{}, false, err
	}
	return out.History[len(out.History)-1], true, nil
}

// ---------------------------------------------------------------------------
// Obligations
// ---------------------------------------------------------------------------

// AddObligation creates an obligation from d.
func (s *Service) AddObligation(d obligation.Draft) (models.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessionID(); err != nil {
		return models.Obligation{}, err
	}
	o, err := obligation.Create(d, s.now())
	if err != nil {
		return models.Obligation{}, fmt.Errorf("AddObligation: %w", err)
	}
	_, err = s.update("AddObligation", ledger.WithObligations(func(list []models.Obligation) []models.Obligation {
		out, _ := obligation.Add(list, o)
		return out
	}))
	if err != nil {
		return models.Obligation{}, err
	}
	return o, nil
}

// EditObligation replaces the editable fields of obligation id, keeping its
// id and position.
func (s *Service) EditObligation(id string, d obligation.Draft) (models.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.current()
	if err != nil {
		return models.Obligation{}, err
	}
	list, found, err := obligation.Edit(cur.Obligations, id, d, s.now())
	if !found {
		return models.Obligation{}, fmt.Errorf("EditObligation %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Obligation{}, fmt.Errorf("EditObligation: %w", err)
	}
	if _, err := s.update("EditObligation", ledger.WithObligations(func([]models.Obligation) []models.Obligation {
		return list
	})); err != nil {
		return models.Obligation{}, err
	}
	o, _ := obligation.Find(list, id)
	return o, nil
}

// PayInstallment records one amortized installment on obligation id.
// Paying a completed obligation changes nothing.
func (s *Service) PayInstallment(id string) (models.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.current()
	if err != nil {
		return models.Obligation{}, err
	}
	list, found := obligation.Pay(cur.Obligations, id)
	if !found {
		return models.Obligation{}, fmt.Errorf("PayInstallment %q: %w", id, ErrNotFound)
	}
	if _, err := s.update("PayInstallment", ledger.WithObligations(func([]models.Obligation) []models.Obligation {
		return list
	})); err != nil {
		return models.Obligation{}, err
	}
	o, _ := obligation.Find(list, id)
	return o, nil
}

// RemoveObligation deletes obligation id regardless of its payment state.
func (s *Service) RemoveObligation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.current()
	if err != nil {
		return err
	}
	if _, ok := obligation.Find(cur.Obligations, id); !ok {
		return fmt.Errorf("RemoveObligation %q: %w", id, ErrNotFound)
	}
	_, err = s.update("RemoveObligation", ledger.WithObligations(func(list []models.Obligation) []models.Obligation {
		return obligation.Remove(list, id)
	}))
	return err
}

// DueToday returns the logged-in user's uncompleted obligations dated today.
func (s *Service) DueToday() ([]models.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return obligation.DueOn(cur.Obligations, s.now()), nil
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

// SendMessage appends a message from the logged-in user to the global log.
// Card numbers and credentials are masked before the message is stored.
func (s *Service) SendMessage(text string) (models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentUser == nil {
		return models.ChatMessage{}, ErrNoSession
	}
	msg, err := messagelog.New(*s.state.CurrentUser, redaction.Redact(text, s.chatPatterns), s.now())
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("SendMessage: %w", err)
	}
	s.state.Messages = messagelog.Append(s.state.Messages, msg)
	s.persist("SendMessage")
	return msg, nil
}

// Messages returns up to n of the latest messages, oldest first. n <= 0
// returns the whole log.
func (s *Service) Messages(n int) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := messagelog.Recent(s.state.Messages, n)
	out := make([]models.ChatMessage, len(recent))
	copy(out, recent)
	return out
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// Users returns the user directory.
func (s *Service) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, len(s.state.Users))
	copy(out, s.state.Users)
	return out
}

// AddUser creates an account. A session is required.
func (s *Service) AddUser(username, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sessionID(); err != nil {
		return models.User{}, err
	}
	users, u, err := auth.AddUser(s.state.Users, username, password, models.NewID())
	if err != nil {
		return models.User{}, fmt.Errorf("AddUser: %w", err)
	}
	s.state.Users = users
	s.persist("AddUser")
	return u, nil
}

// UpdateProfile changes the logged-in user's username and password.
func (s *Service) UpdateProfile(username, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.sessionID()
	if err != nil {
		return models.User{}, err
	}
	users, u, err := auth.UpdateProfile(s.state.Users, id, username, password)
	if err != nil {
		return models.User{}, fmt.Errorf("UpdateProfile: %w", err)
	}
	s.state.Users = users
	s.state.CurrentUser = &u
	s.persist("UpdateProfile")
	return u, nil
}

// DeleteUser removes account id. The admin account and the caller's own
// account cannot be deleted. The deleted user's ledger is kept.
func (s *Service) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.sessionID()
	if err != nil {
		return err
	}
	users, err := auth.DeleteUser(s.state.Users, id, current)
	if err != nil {
		return fmt.Errorf("DeleteUser: %w", err)
	}
	s.state.Users = users
	s.persist("DeleteUser")
	return nil
}

// ---------------------------------------------------------------------------
// Theme
// ---------------------------------------------------------------------------

// Theme returns the active theme's palette.
func (s *Service) Theme() theme.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return theme.Resolve(s.state.Theme)
}

// SetTheme selects the theme with the given id.
func (s *Service) SetTheme(id string) (theme.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tid, ok := theme.Parse(id)
	if !ok {
		return theme.Config{}, fmt.Errorf("SetTheme %q: %w", id, ErrUnknownTheme)
	}
	s.state.Theme = string(tid)
	s.persist("SetTheme")
	return theme.Resolve(s.state.Theme), nil
}

// ---------------------------------------------------------------------------
// Export / Import
// ---------------------------------------------------------------------------

// Export returns the persisted record verbatim.
func (s *Service) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adapter.ExportToken()
}

// Import validates text and replaces the whole state with it. The session
// survives only when the logged-in user's id exists in the imported
// directory. On error nothing changes.
func (s *Service) Import(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.adapter.ImportToken(text)
	if err != nil {
		return fmt.Errorf("Import: %w", err)
	}
	if s.state.CurrentUser != nil {
		if u, ok := next.FindUser(s.state.CurrentUser.ID); ok {
			next.CurrentUser = &u
		}
	}
	s.state = next
	if next.CurrentUser != nil {
		s.persist("Import")
	}
	return nil
}

// Snapshot returns a deep copy of the live state.
func (s *Service) Snapshot() *models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

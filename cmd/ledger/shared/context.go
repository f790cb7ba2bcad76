// Package shared holds the context passed to all CLI commands.
package shared

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/go-ports/pocketledger/internal/config"
	"github.com/go-ports/pocketledger/internal/service"
)

// ErrNoCredentials is returned by OpenSession when --user or --password is missing.
var ErrNoCredentials = errors.New("credentials required: pass --user and --password or set LEDGER_USER and LEDGER_PASSWORD")

// Context carries global CLI state (flags set on the root command).
type Context struct {
	// LedgerHome overrides the ledger home directory.
	// When empty, resolution falls through to LEDGER_HOME env var → persisted config → ~/.ledger.
	LedgerHome string
	// User and Password authenticate commands that touch a ledger.
	User     string
	Password string // #nosec G117 -- supplied by the user on the command line or environment
}

// Home returns the resolved ledger home and where it came from.
func (c *Context) Home() (path, source string) {
	return config.ResolveLedgerHome(c.LedgerHome)
}

// Open opens the ledger without logging in.
func (c *Context) Open() (*service.Service, error) {
	home, _ := c.Home()
	return service.New(home)
}

// OpenSession opens the ledger and logs in with the global credentials.
func (c *Context) OpenSession() (*service.Service, error) {
	if c.User == "" || c.Password == "" {
		return nil, ErrNoCredentials
	}
	svc, err := c.Open()
	if err != nil {
		return nil, err
	}
	if _, err := svc.Login(c.User, c.Password); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("login %q: %w", c.User, err)
	}
	return svc, nil
}

// ParseAmount parses a decimal amount given on the command line.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// ResolveAgentDir picks the agent config directory: configDir when given,
// otherwise dotDir under the working directory (project) or the home directory.
//
//revive:disable:flag-parameter
func ResolveAgentDir(dotDir, configDir string, project bool) string {
	if configDir != "" {
		return configDir
	}
	if project {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, dotDir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dotDir)
}

//revive:enable:flag-parameter

// Package setup registers and unregisters the ledger MCP server with
// supported coding agents (Claude Code, Cursor, Codex, OpenCode).
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ServerName is the key the ledger server is registered under in agent configs.
const ServerName = "pocketledger"

// Result is the return value from all Setup/Uninstall functions.
type Result struct {
	Status  string // always "ok"
	Message string
}

func ok(msg string) Result          { return Result{Status: "ok", Message: msg} }
func okf(f string, a ...any) Result { return ok(fmt.Sprintf(f, a...)) }

// Entry describes how an agent launches `ledger mcp`.
type Entry struct {
	// LedgerHome is passed as --ledger-home when set.
	LedgerHome string
	// User is passed as --user when set. The password is never written to
	// agent config; the agent must export LEDGER_PASSWORD.
	User string
}

// Args returns the command line arguments after the binary name.
func (e Entry) Args() []string {
	args := []string{"mcp"}
	if e.LedgerHome != "" {
		args = append(args, "--ledger-home", e.LedgerHome)
	}
	if e.User != "" {
		args = append(args, "--user", e.User)
	}
	return args
}

func (e Entry) mcpServersConfig() map[string]any {
	return map[string]any{
		"command": "ledger",
		"args":    toAny(e.Args()),
		"type":    "stdio",
	}
}

func (e Entry) opencodeConfig() map[string]any {
	return map[string]any{
		"type":    "local",
		"command": toAny(append([]string{"ledger"}, e.Args()...)),
	}
}

func (e Entry) tomlSection() string {
	quoted := make([]string, 0, len(e.Args()))
	for _, a := range e.Args() {
		quoted = append(quoted, fmt.Sprintf("%q", a))
	}
	return fmt.Sprintf("\n[mcp_servers.%s]\ncommand = \"ledger\"\nargs = [%s]\n",
		ServerName, strings.Join(quoted, ", "))
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// ---------------------------------------------------------------------------
// Default path helpers
// ---------------------------------------------------------------------------

// DefaultClaudeHome returns the default ~/.claude directory.
func DefaultClaudeHome() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude")
}

// DefaultCursorHome returns the default ~/.cursor directory.
func DefaultCursorHome() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cursor")
}

// DefaultCodexHome returns the default ~/.codex directory.
func DefaultCodexHome() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codex")
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func readJSON(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(map[string]any)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]any)
	}
	return m
}

func writeJSON(path string, data map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644) // #nosec G306 -- agent config files (MCP server entries) do not contain secrets
}

// installJSONEntry adds value under data[section][ServerName] unless present.
func installJSONEntry(path, section string, value map[string]any) (bool, error) {
	data := readJSON(path)
	servers, _ := data[section].(map[string]any)
	if servers == nil {
		servers = make(map[string]any)
		data[section] = servers
	}
	if _, exists := servers[ServerName]; exists {
		return false, nil
	}
	servers[ServerName] = value
	return true, writeJSON(path, data)
}

// uninstallJSONEntry removes data[section][ServerName], deleting the file
// when nothing else is left in it.
func uninstallJSONEntry(path, section string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	data := readJSON(path)
	servers, _ := data[section].(map[string]any)
	if _, exists := servers[ServerName]; !exists {
		return false, nil
	}
	delete(servers, ServerName)
	if len(servers) == 0 {
		delete(data, section)
	}
	if len(data) == 0 {
		return true, os.Remove(path)
	}
	return true, writeJSON(path, data)
}

// ---------------------------------------------------------------------------
// TOML helpers (Codex config.toml)
// ---------------------------------------------------------------------------

// hasTOMLServer reports whether config.toml already registers the server.
// A file that is not valid TOML is reported as an error so it is never
// appended to.
func hasTOMLServer(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var doc struct {
		MCPServers map[string]any `toml:"mcp_servers"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	_, found := doc.MCPServers[ServerName]
	return found, nil
}

func appendTOMLServer(path string, e Entry) (bool, error) {
	found, err := hasTOMLServer(path)
	if err != nil || found {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()
	_, err = f.WriteString(e.tomlSection())
	return err == nil, err
}

func removeTOMLServer(path string) (bool, error) {
	found, err := hasTOMLServer(path)
	if err != nil || !found {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	// Skip the table header and its key-value pairs up to the next table
	// header or EOF.
	header := "[mcp_servers." + ServerName + "]"
	lines := strings.Split(string(data), "\n")
	result := make([]string, 0, len(lines))
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == header {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(trimmed, "[") {
			inSection = false
		}
		if !inSection {
			result = append(result, line)
		}
	}
	cleaned := strings.TrimRight(strings.Join(result, "\n"), "\n") + "\n"
	return true, os.WriteFile(path, []byte(cleaned), 0o644) // #nosec G306 -- agent TOML config is not a sensitive credential file
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

//revive:disable:flag-parameter
func claudeMCPPath(claudeHome string, project bool) string {
	if project {
		return filepath.Join(filepath.Dir(claudeHome), ".mcp.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude.json")
}

func opencodeMCPPath(project bool) string {
	if project {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, "opencode.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "opencode", "opencode.json")
}

func scopeName(project bool, projectName, globalName string) string {
	if project {
		return projectName
	}
	return globalName
}

//revive:enable:flag-parameter

// ---------------------------------------------------------------------------
// Setup
// ---------------------------------------------------------------------------

// SetupClaudeCode registers the server in Claude Code.
// claudeHome defaults to ~/.claude when empty.
//
//revive:disable:flag-parameter
func SetupClaudeCode(claudeHome string, project bool, e Entry) Result {
	if claudeHome == "" {
		claudeHome = DefaultClaudeHome()
	}
	added, err := installJSONEntry(claudeMCPPath(claudeHome, project), "mcpServers", e.mcpServersConfig())
	if err != nil {
		return okf("Failed: %v", err)
	}
	if !added {
		return ok("Already installed")
	}
	return okf("Installed: mcpServers in %s", scopeName(project, ".mcp.json", "~/.claude.json"))
}

//revive:enable:flag-parameter

// SetupCursor registers the server in Cursor.
// cursorHome defaults to ~/.cursor when empty.
func SetupCursor(cursorHome string, e Entry) Result {
	if cursorHome == "" {
		cursorHome = DefaultCursorHome()
	}
	added, err := installJSONEntry(filepath.Join(cursorHome, "mcp.json"), "mcpServers", e.mcpServersConfig())
	if err != nil {
		return okf("Failed: %v", err)
	}
	if !added {
		return ok("Already installed")
	}
	return ok("Installed: mcpServers")
}

// SetupCodex registers the server in Codex config.toml.
// codexHome defaults to ~/.codex when empty.
func SetupCodex(codexHome string, e Entry) Result {
	if codexHome == "" {
		codexHome = DefaultCodexHome()
	}
	added, err := appendTOMLServer(filepath.Join(codexHome, "config.toml"), e)
	if err != nil {
		return okf("Failed: %v", err)
	}
	if !added {
		return ok("Already installed")
	}
	return ok("Installed: config.toml")
}

// SetupOpencode registers the server in OpenCode.
//
//revive:disable:flag-parameter
func SetupOpencode(project bool, e Entry) Result {
	added, err := installJSONEntry(opencodeMCPPath(project), "mcp", e.opencodeConfig())
	if err != nil {
		return okf("Failed: %v", err)
	}
	if !added {
		return ok("Already installed")
	}
	return okf("Installed: mcp in %s", scopeName(project, "opencode.json", "~/.config/opencode/opencode.json"))
}

//revive:enable:flag-parameter

// ---------------------------------------------------------------------------
// Uninstall
// ---------------------------------------------------------------------------

// UninstallClaudeCode removes the server from Claude Code.
//
//revive:disable:flag-parameter
func UninstallClaudeCode(claudeHome string, project bool) Result {
	if claudeHome == "" {
		claudeHome = DefaultClaudeHome()
	}
	mcpPath := claudeMCPPath(claudeHome, project)
	if done, err := uninstallJSONEntry(mcpPath, "mcpServers"); err == nil && done {
		return okf("Removed: mcpServers from %s", filepath.Base(mcpPath))
	}
	return ok("Nothing to remove")
}

//revive:enable:flag-parameter

// UninstallCursor removes the server from Cursor.
func UninstallCursor(cursorHome string) Result {
	if cursorHome == "" {
		cursorHome = DefaultCursorHome()
	}
	if done, err := uninstallJSONEntry(filepath.Join(cursorHome, "mcp.json"), "mcpServers"); err == nil && done {
		return ok("Removed: mcpServers")
	}
	return ok("Nothing to remove")
}

// UninstallCodex removes the server from Codex config.toml.
func UninstallCodex(codexHome string) Result {
	if codexHome == "" {
		codexHome = DefaultCodexHome()
	}
	if done, err := removeTOMLServer(filepath.Join(codexHome, "config.toml")); err == nil && done {
		return ok("Removed: config.toml")
	}
	return ok("Nothing to remove")
}

// UninstallOpencode removes the server from OpenCode.
//
//revive:disable:flag-parameter
func UninstallOpencode(project bool) Result {
	if done, err := uninstallJSONEntry(opencodeMCPPath(project), "mcp"); err == nil && done {
		return okf("Removed: mcp from %s", scopeName(project, "opencode.json", "~/.config/opencode/opencode.json"))
	}
	return ok("Nothing to remove")
}

//revive:enable:flag-parameter

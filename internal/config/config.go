// Package config handles configuration loading and ledger home resolution.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Config types
// ---------------------------------------------------------------------------

// StorageConfig controls where and how the state record is persisted.
type StorageConfig struct {
	Key        string   `yaml:"key"`         // slot holding the current record
	LegacyKeys []string `yaml:"legacy_keys"` // slots consulted when Key is empty
	MaxBytes   int      `yaml:"max_bytes"`   // 0 disables the quota
}

// DisplayConfig controls how amounts and month labels are rendered.
type DisplayConfig struct {
	Currency string `yaml:"currency"` // ISO 4217 code
	Locale   string `yaml:"locale"`   // "en" | "ar"
}

// LedgerConfig is the root per-home configuration.
type LedgerConfig struct {
	Storage StorageConfig `yaml:"storage"`
	Display DisplayConfig `yaml:"display"`
}

// Default returns a LedgerConfig populated with sensible defaults.
func Default() *LedgerConfig {
	return &LedgerConfig{
		Storage: StorageConfig{
			Key:        "pocketledger.state",
			LegacyKeys: []string{"smart_prize_v3_stable_final"},
			MaxBytes:   5 << 20,
		},
		Display: DisplayConfig{
			Currency: "EGP",
			Locale:   "en",
		},
	}
}

// Load reads a per-home config.yaml from path.
// If the file does not exist it returns Default() with no error.
// Missing keys retain their default values.
func Load(path string) (*LedgerConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	// Unmarshal into a plain map so we can apply only the keys that are present.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if st, ok := raw["storage"].(map[string]any); ok {
		if v, ok := st["key"].(string); ok && v != "" {
			cfg.Storage.Key = v
		}
		if v, ok := st["legacy_keys"].([]any); ok {
			keys := make([]string, 0, len(v))
			for _, k := range v {
				if s, ok := k.(string); ok && s != "" {
					keys = append(keys, s)
				}
			}
			cfg.Storage.LegacyKeys = keys
		}
		if v, ok := st["max_bytes"].(int); ok && v >= 0 {
			cfg.Storage.MaxBytes = v
		}
	}

	if disp, ok := raw["display"].(map[string]any); ok {
		if v, ok := disp["currency"].(string); ok && v != "" {
			cfg.Display.Currency = strings.ToUpper(v)
		}
		if v, ok := disp["locale"].(string); ok && v != "" {
			cfg.Display.Locale = v
		}
	}

	return cfg, nil
}

// Write serializes cfg to path, creating parent directories as needed.
func Write(path string, cfg *LedgerConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// ---------------------------------------------------------------------------
// Ledger home resolution
// ---------------------------------------------------------------------------

// globalConfigPath returns the path to the global pocketledger config file.
// This file stores only ledger_home.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pocketledger", "config.yaml"), nil
}

// normalizePath expands ~ and makes the path absolute.
func normalizePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(os.ExpandEnv(path))
}

// ResolveLedgerHome returns the ledger home path and the source of the resolution.
// Priority: explicit flag → LEDGER_HOME env → persisted global config → ~/.ledger
// source is one of "flag", "env", "config", or "default".
func ResolveLedgerHome(flag string) (path, source string) {
	if flag != "" {
		if p, err := normalizePath(flag); err == nil {
			return p, "flag"
		}
	}

	if env := os.Getenv("LEDGER_HOME"); env != "" {
		p, err := normalizePath(env)
		if err == nil {
			return p, "env"
		}
	}

	if persisted, ok, _ := GetPersistedLedgerHome(); ok {
		return persisted, "config"
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ledger"), "default"
}

// GetPersistedLedgerHome reads ledger_home from the global config.
// Returns ("", false, nil) if not set.
func GetPersistedLedgerHome() (string, bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", false, nil
	}

	val, _ := raw["ledger_home"].(string)
	val = strings.TrimSpace(val)
	if val == "" {
		return "", false, nil
	}

	p, err := normalizePath(val)
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

// SetPersistedLedgerHome normalizes path and persists it in the global config.
// Returns the normalized path.
func SetPersistedLedgerHome(path string) (string, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return "", err
	}

	cfgPath, err := globalConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", err
	}

	// Read existing global config, preserving any other keys.
	var raw map[string]any
	if data, err := os.ReadFile(cfgPath); err == nil {
		_ = yaml.Unmarshal(data, &raw)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	raw["ledger_home"] = normalized

	out, err := yaml.Marshal(raw)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(cfgPath, out, 0o600); err != nil {
		return "", err
	}
	return normalized, nil
}

// ClearPersistedLedgerHome removes ledger_home from the global config.
// Returns true if the key was present and removed.
// If the file becomes empty after removal it is deleted.
func ClearPersistedLedgerHome() (bool, error) {
	cfgPath, err := globalConfigPath()
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(cfgPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false, nil
	}

	if _, ok := raw["ledger_home"]; !ok {
		return false, nil
	}
	delete(raw, "ledger_home")

	if len(raw) == 0 {
		_ = os.Remove(cfgPath)
		return true, nil
	}

	out, err := yaml.Marshal(raw)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(cfgPath, out, 0o600)
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	DefaultAPIURL          = "http://127.0.0.1:8000"
	DefaultAddr            = "127.0.0.1:3340"
	DefaultRefreshSchedule = "@every 1m"
	DefaultSessionTTL      = 7 * 24 * time.Hour
	DefaultDatastarURL     = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
)

type GlobalConfig struct {
	// APIURL is the base URL of the generation/publishing backend.
	APIURL string `json:"apiUrl,omitempty"`

	// Addr is the default bind address for `postpilot web`.
	Addr string `json:"addr,omitempty"`

	// SessionTTL is how long an idle dashboard session keeps its current draft (Go duration).
	SessionTTL string `json:"sessionTtl,omitempty"`

	// RefreshSchedule is the cron spec used to push fresh scheduled/history/analytics
	// regions to open dashboards.
	RefreshSchedule string `json:"refreshSchedule,omitempty"`

	// DatastarURL points at the datastar client bundle loaded by the dashboard page.
	DatastarURL string `json:"datastarUrl,omitempty"`
}

// ConfigKeys lists the keys accepted by Set, in display order.
var ConfigKeys = []string{"apiUrl", "addr", "sessionTtl", "refreshSchedule", "datastarUrl"}

func (c *GlobalConfig) Get(key string) (string, error) {
	switch key {
	case "apiUrl":
		return c.APIURL, nil
	case "addr":
		return c.Addr, nil
	case "sessionTtl":
		return c.SessionTTL, nil
	case "refreshSchedule":
		return c.RefreshSchedule, nil
	case "datastarUrl":
		return c.DatastarURL, nil
	default:
		return "", fmt.Errorf("unknown config key %q (expected one of %s)", key, strings.Join(ConfigKeys, ", "))
	}
}

func (c *GlobalConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "apiUrl":
		c.APIURL = value
	case "addr":
		c.Addr = value
	case "sessionTtl":
		if value != "" {
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("sessionTtl: %w", err)
			}
		}
		c.SessionTTL = value
	case "refreshSchedule":
		c.RefreshSchedule = value
	case "datastarUrl":
		c.DatastarURL = value
	default:
		_, err := c.Get(key)
		return err
	}
	return nil
}

// Values returns the non-empty keys, sorted.
func (c *GlobalConfig) Values() map[string]string {
	out := map[string]string{}
	for _, k := range ConfigKeys {
		if v, _ := c.Get(k); v != "" {
			out[k] = v
		}
	}
	return out
}

// SessionTTLOrDefault parses SessionTTL, falling back to DefaultSessionTTL.
func (c *GlobalConfig) SessionTTLOrDefault() time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(c.SessionTTL)); err == nil && d > 0 {
		return d
	}
	return DefaultSessionTTL
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.postpilot).
	if v := strings.TrimSpace(os.Getenv("POSTPILOT_HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".postpilot"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// SessionsPath is the sqlite file holding dashboard sessions.
func SessionsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions.sqlite"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

func LoadConfigFile(path string) (*GlobalConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return &GlobalConfig{}, nil
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Rename keeps a concurrently running `postpilot web` from reading a half-written file.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// SortedKeys returns the keys of m in order; used by text renderers.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

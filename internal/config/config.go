package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths holds the filesystem locations shelve operates on.
type Paths struct {
	// Root is the sandbox. Every operation source and destination must
	// resolve inside it.
	Root string `toml:"root"`

	// StateDir holds plans, the catalog database, and the watch lock.
	StateDir string `toml:"state_dir"`

	// LogDir holds per-run log files.
	LogDir string `toml:"log_dir"`

	// AuditLog is the append-only journal. Defaults to
	// <state_dir>/audit.jsonl when empty.
	AuditLog string `toml:"audit_log"`
}

// Safety configures the path deny list enforced before execution.
type Safety struct {
	// Platform selects the built-in deny list: "auto", "linux",
	// "darwin", or "windows". "auto" follows the running OS.
	Platform string `toml:"platform"`

	// ForbiddenPrefixes extends the built-in deny list.
	ForbiddenPrefixes []string `toml:"forbidden_prefixes"`

	resolvedForbidden []string
}

// Rules drives plan generation. Size wins over age, age wins over
// extension, and unmatched files fall through to FallbackDestination.
type Rules struct {
	LargeFileThresholdMB int64  `toml:"large_file_threshold_mb"`
	LargeFileDestination string `toml:"large_file_destination"`

	OldFileDays        int    `toml:"old_file_days"`
	OldFileDestination string `toml:"old_file_destination"`

	FallbackDestination string `toml:"fallback_destination"`

	// Extensions maps a lowercase extension (".pdf") to a destination
	// directory relative to the root.
	Extensions map[string]string `toml:"extensions"`
}

// Scan configures snapshot collection.
type Scan struct {
	IncludeHidden bool `toml:"include_hidden"`
}

// Watch configures the unattended filesystem watcher.
type Watch struct {
	DebounceSeconds int `toml:"debounce_seconds"`
}

// Logging configures log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Safety  Safety  `toml:"safety"`
	Rules   Rules   `toml:"rules"`
	Scan    Scan    `toml:"scan"`
	Watch   Watch   `toml:"watch"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the standard location for the config file.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "shelve", "config.toml"), nil
}

// Load reads configuration from path. An empty path falls back to the
// default location, then to shelve.toml in the working directory. A
// missing file is not an error: Load returns the defaults and reports
// exists=false so callers can suggest `shelve config init`.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg = Default()
	data, readErr := os.ReadFile(resolved)
	switch {
	case readErr == nil:
		exists = true
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case os.IsNotExist(readErr):
		if path != "" {
			return nil, resolved, false, fmt.Errorf("config file not found at %s", resolved)
		}
	default:
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, readErr)
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolved, exists, fmt.Errorf("normalize config %s: %w", resolved, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, fmt.Errorf("validate config %s: %w", resolved, err)
	}
	return cfg, resolved, exists, nil
}

// Finalize normalizes and validates a programmatically built
// configuration. Load performs both steps itself; anything that fills a
// Config by hand must call Finalize before using it.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return ExpandPath(path)
	}
	def, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	if _, statErr := os.Stat(def); statErr == nil {
		return def, nil
	}
	if _, statErr := os.Stat("shelve.toml"); statErr == nil {
		return filepath.Abs("shelve.toml")
	}
	return def, nil
}

// ExpandPath resolves a leading ~ against the home directory and makes
// the result absolute. Empty input stays empty.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", path, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return abs, nil
}

// EnsureDirectories creates the state and log directories. The root is
// deliberately left alone: a missing root is a pre-flight failure, not
// something to paper over.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.StateDir,
		c.PlansDir(),
		c.Paths.LogDir,
		filepath.Dir(c.Paths.AuditLog),
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// PlansDir returns the directory generated plans are written to.
func (c *Config) PlansDir() string {
	return filepath.Join(c.Paths.StateDir, "plans")
}

// CatalogPath returns the location of the catalog database.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.StateDir, "catalog.db")
}

// LockPath returns the lock file guarding unattended runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "shelve.lock")
}

// ForbiddenPrefixes returns the effective deny list: the platform
// built-ins plus any configured additions. Only valid after Load or
// normalize.
func (c *Config) ForbiddenPrefixes() []string {
	return c.Safety.resolvedForbidden
}

// CreateSample writes a commented sample config to path. It refuses to
// overwrite an existing file.
func CreateSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

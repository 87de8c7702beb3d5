package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"shelve/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config rooted in unique temp directories per test.
// The returned config is finalized and its state directories exist; the
// root directory is created too so scans and moves work immediately.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Root = filepath.Join(base, "inbox")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.AuditLog = filepath.Join(base, "state", "audit.jsonl")
	cfg.Watch.DebounceSeconds = 1

	builder := &configBuilder{t: t, cfg: cfg}
	for _, opt := range opts {
		opt(builder)
	}

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.Root, 0o755); err != nil {
		t.Fatalf("create test root: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("create state directories: %v", err)
	}
	return cfg
}

// WithForbiddenPrefixes appends deny-list entries to the test config.
func WithForbiddenPrefixes(prefixes ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Safety.ForbiddenPrefixes = append(b.cfg.Safety.ForbiddenPrefixes, prefixes...)
	}
}

// WithExtensionRule maps an extension to a shelf on the test config.
func WithExtensionRule(ext, destination string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Rules.Extensions == nil {
			b.cfg.Rules.Extensions = map[string]string{}
		}
		b.cfg.Rules.Extensions[ext] = destination
	}
}

// WithLargeFileThresholdMB overrides the large-file threshold.
func WithLargeFileThresholdMB(mb int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rules.LargeFileThresholdMB = mb
	}
}

// WithOldFileDays overrides the age cutoff.
func WithOldFileDays(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rules.OldFileDays = days
	}
}

// WithIncludeHidden makes scans pick up dotfiles.
func WithIncludeHidden() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.IncludeHidden = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Root)
}

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"shelve/internal/audit"
	"shelve/internal/catalog"
	"shelve/internal/config"
	"shelve/internal/logging"
	"shelve/internal/workflow"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, jsonFlag: jsonFlag}
}

// JSONMode reports whether --json was requested.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// flagPath returns the raw --config value, empty when unset.
func (c *commandContext) flagPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, resolved, _, err := config.Load(c.flagPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// newLogger builds the CLI logger: configured level and format, written
// to the shelve log file alongside stderr so interactive output on
// stdout stays clean.
func (c *commandContext) newLogger(toStderr bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	outputs := []string{filepath.Join(cfg.Paths.LogDir, "shelve.log")}
	if toStderr {
		outputs = append(outputs, "stderr")
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// withManager wires the catalog, journal, and workflow manager, runs fn,
// and tears everything down afterwards.
func (c *commandContext) withManager(verbose bool, fn func(*config.Config, *catalog.Store, *workflow.Manager) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.newLogger(verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	journal, err := audit.Open(cfg.Paths.AuditLog)
	if err != nil {
		return fmt.Errorf("open audit journal: %w", err)
	}
	defer func() { _ = journal.Close() }()

	mgr, err := workflow.NewManager(cfg, store, journal, logger)
	if err != nil {
		return fmt.Errorf("build workflow: %w", err)
	}
	return fn(cfg, store, mgr)
}

// withCatalog opens only the catalog for read-side commands.
func (c *commandContext) withCatalog(fn func(*config.Config, *catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()
	return fn(cfg, store)
}

package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

var validPlatforms = map[string]bool{
	"auto":    true,
	"linux":   true,
	"darwin":  true,
	"windows": true,
}

var validLogFormats = map[string]bool{
	"console": true,
	"json":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration after normalization. It returns
// the first problem found.
func (c *Config) Validate() error {
	if c.Paths.Root == "" {
		return fmt.Errorf("paths.root is not set")
	}
	if !filepath.IsAbs(c.Paths.Root) {
		return fmt.Errorf("paths.root must be absolute, got %s", c.Paths.Root)
	}
	if c.Paths.StateDir == "" {
		return fmt.Errorf("paths.state_dir is not set")
	}
	if c.Paths.LogDir == "" {
		return fmt.Errorf("paths.log_dir is not set")
	}

	if !validPlatforms[c.Safety.Platform] {
		return fmt.Errorf("safety.platform must be auto, linux, darwin, or windows, got %s", c.Safety.Platform)
	}

	if c.Rules.LargeFileThresholdMB <= 0 {
		return fmt.Errorf("rules.large_file_threshold_mb must be positive, got %d", c.Rules.LargeFileThresholdMB)
	}
	if c.Rules.OldFileDays <= 0 {
		return fmt.Errorf("rules.old_file_days must be positive, got %d", c.Rules.OldFileDays)
	}
	if err := validDestination("rules.large_file_destination", c.Rules.LargeFileDestination); err != nil {
		return err
	}
	if err := validDestination("rules.old_file_destination", c.Rules.OldFileDestination); err != nil {
		return err
	}
	if err := validDestination("rules.fallback_destination", c.Rules.FallbackDestination); err != nil {
		return err
	}
	for ext, dest := range c.Rules.Extensions {
		if err := validDestination(fmt.Sprintf("rules.extensions[%s]", ext), dest); err != nil {
			return err
		}
	}

	if c.Watch.DebounceSeconds < 1 {
		return fmt.Errorf("watch.debounce_seconds must be at least 1, got %d", c.Watch.DebounceSeconds)
	}

	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be console or json, got %s", c.Logging.Format)
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %s", c.Logging.Level)
	}
	return nil
}

// validDestination checks a rule destination, which must stay a
// relative path inside the root. Absolute paths and parent traversal
// would let configuration route files outside the sandbox.
func validDestination(field, dest string) error {
	if dest == "" {
		return fmt.Errorf("%s is not set", field)
	}
	if filepath.IsAbs(dest) {
		return fmt.Errorf("%s must be relative to the root, got %s", field, dest)
	}
	cleaned := filepath.Clean(dest)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s must not escape the root, got %s", field, dest)
	}
	return nil
}

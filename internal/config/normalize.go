package config

import (
	"path/filepath"
	"strings"
)

// normalize expands paths, fills derived values, and canonicalizes
// user-supplied strings so Validate and the rest of the program see a
// consistent shape.
func (c *Config) normalize() error {
	var err error
	if c.Paths.Root, err = ExpandPath(strings.TrimSpace(c.Paths.Root)); err != nil {
		return err
	}
	if c.Paths.StateDir, err = ExpandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = ExpandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}

	c.Paths.AuditLog = strings.TrimSpace(c.Paths.AuditLog)
	if c.Paths.AuditLog == "" && c.Paths.StateDir != "" {
		c.Paths.AuditLog = filepath.Join(c.Paths.StateDir, "audit.jsonl")
	}
	if c.Paths.AuditLog, err = ExpandPath(c.Paths.AuditLog); err != nil {
		return err
	}

	c.Safety.Platform = strings.ToLower(strings.TrimSpace(c.Safety.Platform))
	if c.Safety.Platform == "" {
		c.Safety.Platform = "auto"
	}
	c.Safety.resolvedForbidden = builtinDenyList(c.Safety.Platform)
	for _, prefix := range c.Safety.ForbiddenPrefixes {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		c.Safety.resolvedForbidden = append(c.Safety.resolvedForbidden, prefix)
	}

	if len(c.Rules.Extensions) == 0 {
		c.Rules.Extensions = defaultExtensions()
	}
	normalized := make(map[string]string, len(c.Rules.Extensions))
	for ext, dest := range c.Rules.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized[ext] = strings.TrimSpace(dest)
	}
	c.Rules.Extensions = normalized

	c.Rules.LargeFileDestination = strings.TrimSpace(c.Rules.LargeFileDestination)
	c.Rules.OldFileDestination = strings.TrimSpace(c.Rules.OldFileDestination)
	c.Rules.FallbackDestination = strings.TrimSpace(c.Rules.FallbackDestination)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return nil
}

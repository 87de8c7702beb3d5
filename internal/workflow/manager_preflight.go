package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shelve/internal/config"
	"shelve/internal/logging"
	"shelve/internal/preflight"
)

// gateOnPreflight validates filesystem readiness before any move runs.
// Returns nil when all checks pass, or an error describing all failures.
func gateOnPreflight(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger = logging.WithContext(ctx, logger)
	results := preflight.RunAll(cfg)

	var failures []string
	for _, r := range results {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
			)
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
		)
		failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}

	if len(failures) > 0 {
		return fmt.Errorf("preflight checks failed: %s", strings.Join(failures, "; "))
	}
	return nil
}

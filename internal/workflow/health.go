package workflow

import (
	"context"

	"shelve/internal/stage"
)

// Health reports the readiness of every pipeline stage in order.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	stages := []pipelineStage{m.scan, m.plan, m.apply}
	health := make([]stage.Health, 0, len(stages))
	for _, st := range stages {
		health = append(health, st.handler.HealthCheck(ctx))
	}
	return health
}

package stage

import (
	"context"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *Pass) error
	Execute(context.Context, *Pass) error
	HealthCheck(context.Context) Health
}

package workflow

import (
	"log/slog"
	"sync"

	"shelve/internal/audit"
	"shelve/internal/catalog"
	"shelve/internal/classify"
	"shelve/internal/config"
	"shelve/internal/logging"
	"shelve/internal/planner"
	"shelve/internal/safety"
	"shelve/internal/stage"
	"shelve/internal/transaction"
)

// Manager coordinates organizing passes using registered stage handlers.
type Manager struct {
	cfg     *config.Config
	store   *catalog.Store
	journal *audit.Logger
	logger  *slog.Logger

	scan  pipelineStage
	plan  pipelineStage
	apply pipelineStage

	mu sync.Mutex
}

type pipelineStage struct {
	name    string
	handler stage.Handler
}

// NewManager constructs a workflow manager over the given stores. The
// safety gate is built here so every pass shares one canonicalized view
// of the root.
func NewManager(cfg *config.Config, store *catalog.Store, journal *audit.Logger, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	gate, err := safety.NewGatekeeper(cfg.Paths.Root, cfg.ForbiddenPrefixes())
	if err != nil {
		return nil, err
	}
	controller := transaction.NewController(gate, journal, logger)
	ruleset := classify.NewRuleset(cfg.Rules)

	m := &Manager{
		cfg:     cfg,
		store:   store,
		journal: journal,
		logger:  logger.With(logging.String(logging.FieldComponent, "workflow")),
	}
	m.scan = pipelineStage{name: "scan", handler: &scanStage{cfg: cfg, store: store}}
	m.plan = pipelineStage{name: "plan", handler: &planStage{
		planner:  planner.New(ruleset, logger),
		plansDir: cfg.PlansDir(),
	}}
	m.apply = pipelineStage{name: "apply", handler: &applyStage{
		cfg:        cfg,
		store:      store,
		controller: controller,
		logger:     logger,
	}}
	return m, nil
}

package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/rrsim/internal/config"
	"github.com/me/rrsim/internal/logging"
	"github.com/me/rrsim/pkg/model"
)

// Engine owns every piece of mutable simulation state: registry, ready
// queue, core pool, timeline and clock. It is not safe for concurrent use;
// callers serialize access.
type Engine struct {
	cfg      config.SimConfig
	logger   *slog.Logger
	registry *Registry
	queue    *ReadyQueue
	cores    *CorePool
	timeline *Timeline
	clock    int
	phase    model.RunPhase
	metrics  *model.Metrics
	fault    error // set when a tick failed part way; cleared by Reset
}

// NewEngine creates an engine in the SETUP phase.
func NewEngine(cfg config.SimConfig, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:      cfg,
		logger:   logging.Component(logger, "scheduler"),
		registry: NewRegistry(),
		queue:    &ReadyQueue{},
		cores:    NewCorePool(cfg.Cores),
		timeline: NewTimeline(cfg.Cores),
		phase:    model.RunPhaseSetup,
	}
	return e, nil
}

// Register adds a process. Rejected while a run is active.
// Registering after a finished run discards that run's results.
func (e *Engine) Register(arrival, burst int) (int, error) {
	if e.phase.IsActive() {
		return 0, model.NewInvalidStateError("cannot register a process while a run is active")
	}
	id, err := e.registry.Register(arrival, burst)
	if err != nil {
		return 0, err
	}
	e.clearRun()
	e.logger.Debug("process registered", "process_id", id, "arrival", arrival, "burst", burst)
	return id, nil
}

// Configure sets quantum and core count. Rejected while a run is active.
func (e *Engine) Configure(quantum, cores int) error {
	if e.phase.IsActive() {
		return model.NewInvalidStateError("cannot reconfigure while a run is active")
	}
	cfg := config.SimConfig{Quantum: quantum, Cores: cores}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.clearRun()
	e.logger.Debug("configured", "quantum", quantum, "cores", cores)
	return nil
}

// Start resets per-run state and begins a run over the registered processes.
func (e *Engine) Start() error {
	if e.phase.IsActive() {
		return model.NewInvalidStateError("a run is already active; reset first")
	}
	if e.registry.Len() == 0 {
		return model.NewValidationError("at least one process must be registered",
			model.FieldError{Field: "processes", Message: "empty"})
	}
	e.clearRun()
	e.phase = model.RunPhaseRunning
	e.logger.Info("run started", "processes", e.registry.Len(), "quantum", e.cfg.Quantum, "cores", e.cfg.Cores)
	return nil
}

// RunToCompletion steps until every process has terminated and returns the
// final metrics. A run in SETUP is started first; a finished run returns its
// metrics unchanged. ctx is checked between ticks.
func (e *Engine) RunToCompletion(ctx context.Context) (model.Metrics, error) {
	switch e.phase {
	case model.RunPhaseFinished:
		return *e.metrics, nil
	case model.RunPhaseSetup:
		if err := e.Start(); err != nil {
			return model.Metrics{}, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return model.Metrics{}, fmt.Errorf("run aborted at tick %d: %w", e.clock, err)
		}
		res, err := e.Step()
		if err != nil {
			return model.Metrics{}, err
		}
		if res.Finished {
			return *e.metrics, nil
		}
	}
}

// Reset drops every process and all run state. Configuration is kept.
func (e *Engine) Reset() {
	e.registry.Clear()
	e.clearRun()
	e.logger.Debug("engine reset")
}

// Metrics returns the final metrics of a finished run.
func (e *Engine) Metrics() (model.Metrics, error) {
	if e.phase != model.RunPhaseFinished {
		return model.Metrics{}, model.NewInvalidStateError("metrics are available once the run has finished (phase %s)", e.phase)
	}
	return *e.metrics, nil
}

// Snapshot returns a deep copy of the engine state.
func (e *Engine) Snapshot() model.Snapshot {
	procs := make([]model.Process, 0, e.registry.Len())
	for _, p := range e.registry.All() {
		procs = append(procs, *p)
	}
	return model.Snapshot{
		Clock:      e.clock,
		Phase:      e.phase,
		Quantum:    e.cfg.Quantum,
		CoreCount:  e.cfg.Cores,
		Processes:  procs,
		Cores:      e.cores.Snapshot(),
		ReadyQueue: e.queue.IDs(),
		Timeline:   e.timeline.Entries(),
	}
}

// Timeline returns every recorded interval ordered by start tick, then core.
func (e *Engine) Timeline() []model.Interval {
	return e.timeline.Entries()
}

// Phase returns the run phase.
func (e *Engine) Phase() model.RunPhase { return e.phase }

// Clock returns the next tick to execute; after a finished run it is the total tick count.
func (e *Engine) Clock() int { return e.clock }

// Config returns the current configuration.
func (e *Engine) Config() config.SimConfig { return e.cfg }

// clearRun returns to SETUP with fresh per-run state. Registered processes are kept.
func (e *Engine) clearRun() {
	e.registry.ResetAll()
	e.queue.Clear()
	e.cores.Reset(e.cfg.Cores)
	e.timeline.Reset(e.cfg.Cores)
	e.clock = 0
	e.metrics = nil
	e.fault = nil
	e.phase = model.RunPhaseSetup
}

package scheduler

import (
	"fmt"

	"github.com/me/rrsim/pkg/model"
)

// tick carries the transient state of one Step.
type tick struct {
	t       int
	expired []int // processes preempted this tick, held back from the ready queue
	events  []model.Event
}

func (tk *tick) emit(typ model.EventType, pid, core int) {
	tk.events = append(tk.events, model.Event{Type: typ, Tick: tk.t, ProcessID: pid, CoreID: core})
}

// Step executes one tick at the current clock value and advances the clock.
func (e *Engine) Step() (model.TickResult, error) {
	switch e.phase {
	case model.RunPhaseSetup:
		return model.TickResult{}, model.NewInvalidStateError("run has not been started")
	case model.RunPhaseFinished:
		return model.TickResult{}, model.NewInvalidStateError("run has already finished at tick %d", e.clock)
	}
	if e.fault != nil {
		return model.TickResult{}, model.NewInternalError("run is inconsistent after a failed tick, reset it: " + e.fault.Error())
	}

	tk := &tick{t: e.clock}

	// Phase 1: NEW processes whose arrival time has come join the ready queue.
	if err := e.admitArrivals(tk); err != nil {
		return model.TickResult{}, e.fail(fmt.Errorf("phase 1 (arrivals): %w", err))
	}

	// Phase 2: busy cores execute one unit; complete or preempt.
	if err := e.executeCores(tk); err != nil {
		return model.TickResult{}, e.fail(fmt.Errorf("phase 2 (execute): %w", err))
	}

	// Phase 3: fill available cores from the front of the queue.
	if err := e.dispatch(tk); err != nil {
		return model.TickResult{}, e.fail(fmt.Errorf("phase 3 (dispatch): %w", err))
	}

	// Phase 4: processes preempted in phase 2 go to the back of the queue.
	for _, pid := range tk.expired {
		e.queue.Enqueue(pid)
	}

	// Phase 5: everyone still queued waited this tick.
	for _, pid := range e.queue.IDs() {
		e.registry.Get(pid).WaitingTime++
	}

	e.clock++
	finished := e.registry.AllTerminated()
	if finished {
		e.finish()
	}

	return model.TickResult{Tick: tk.t, Events: tk.events, Finished: finished}, nil
}

func (e *Engine) admitArrivals(tk *tick) error {
	for _, p := range e.registry.All() {
		if p.State != model.ProcessStateNew || p.ArrivalTime > tk.t {
			continue
		}
		if err := p.Transition(model.ProcessStateReady); err != nil {
			return err
		}
		e.queue.Enqueue(p.ID)
		tk.emit(model.EventArrival, p.ID, model.NoCore)
		e.logger.Debug("arrival", "tick", tk.t, "process_id", p.ID)
	}
	return nil
}

// executeCores runs every core that was busy before this tick began.
// Cores dispatched in phase 3 of this tick are not busy yet when this runs.
func (e *Engine) executeCores(tk *tick) error {
	for _, coreID := range e.cores.Busy() {
		pid := e.cores.ProcessOn(coreID)
		p := e.registry.Get(pid)
		if p == nil {
			return fmt.Errorf("core %d holds unknown process %d", coreID, pid)
		}

		p.RemainingBurstTime--
		p.QuantumElapsed++
		e.timeline.Record(pid, coreID, tk.t)

		switch {
		case p.RemainingBurstTime <= 0:
			if err := p.Transition(model.ProcessStateTerminated); err != nil {
				return err
			}
			p.RemainingBurstTime = 0
			p.CompletionTime = tk.t + 1
			p.TurnaroundTime = p.CompletionTime - p.ArrivalTime
			p.WaitingTime = p.TurnaroundTime - p.BurstTime
			p.CurrentCore = model.NoCore
			e.cores.Release(coreID)
			tk.emit(model.EventComplete, pid, coreID)
			e.logger.Debug("complete", "tick", tk.t, "process_id", pid, "core_id", coreID)

		case p.QuantumElapsed >= e.cfg.Quantum:
			if err := p.Transition(model.ProcessStateReady); err != nil {
				return err
			}
			p.QuantumElapsed = 0
			p.CurrentCore = model.NoCore
			e.cores.Release(coreID)
			tk.expired = append(tk.expired, pid)
			tk.emit(model.EventPreempt, pid, coreID)
			e.logger.Debug("preempt", "tick", tk.t, "process_id", pid, "core_id", coreID, "remaining", p.RemainingBurstTime)
		}
	}
	return nil
}

// dispatch pairs the lowest-indexed available core with the queue front
// until either runs out.
func (e *Engine) dispatch(tk *tick) error {
	for _, coreID := range e.cores.Available() {
		pid, ok := e.queue.Dequeue()
		if !ok {
			return nil
		}
		p := e.registry.Get(pid)
		if err := p.Transition(model.ProcessStateRunning); err != nil {
			return err
		}
		if err := e.cores.Assign(coreID, pid); err != nil {
			return err
		}
		p.CurrentCore = coreID
		p.QuantumElapsed = 0
		if p.StartTime < 0 {
			p.StartTime = tk.t
		}
		tk.emit(model.EventDispatch, pid, coreID)
		e.logger.Debug("dispatch", "tick", tk.t, "process_id", pid, "core_id", coreID)
	}
	return nil
}

// fail records a phase error. The tick may be partly applied, so the run
// refuses further steps until Reset.
func (e *Engine) fail(err error) error {
	e.fault = fmt.Errorf("tick %d: %w", e.clock, err)
	e.logger.Error("tick failed", "tick", e.clock, "error", err)
	return e.fault
}

func (e *Engine) finish() {
	m := ComputeMetrics(e.registry.All(), e.timeline, e.clock, e.cfg)
	e.metrics = &m
	e.phase = model.RunPhaseFinished
	e.logger.Info("run finished",
		"ticks", m.TotalTicks,
		"avg_waiting", m.AverageWaiting,
		"avg_turnaround", m.AverageTurnaround,
		"utilization", m.Utilization,
	)
}

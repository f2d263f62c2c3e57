package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/me/rrsim/internal/config"
	"github.com/me/rrsim/pkg/model"
)

func TestNewEngine_InvalidConfig(t *testing.T) {
	if _, err := NewEngine(config.SimConfig{Quantum: 0, Cores: 2}, nil); !model.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestEngine_ValidationLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine(t, 2, 2, proc{0, 3})

	if _, err := e.Register(-1, 5); !model.IsValidation(err) {
		t.Errorf("Register(-1, 5) err = %v, want validation error", err)
	}
	if _, err := e.Register(0, 0); !model.IsValidation(err) {
		t.Errorf("Register(0, 0) err = %v, want validation error", err)
	}
	if err := e.Configure(0, 2); !model.IsValidation(err) {
		t.Errorf("Configure(0, 2) err = %v, want validation error", err)
	}
	if err := e.Configure(2, 9); !model.IsValidation(err) {
		t.Errorf("Configure(2, 9) err = %v, want validation error", err)
	}

	snap := e.Snapshot()
	if len(snap.Processes) != 1 || snap.Quantum != 2 || snap.CoreCount != 2 {
		t.Errorf("state changed by rejected calls: %+v", snap)
	}
}

func TestEngine_StartRequiresProcesses(t *testing.T) {
	e := newTestEngine(t, 2, 1)
	if err := e.Start(); !model.IsValidation(err) {
		t.Errorf("Start with no processes: err = %v, want validation error", err)
	}
	if e.Phase() != model.RunPhaseSetup {
		t.Errorf("phase = %s, want SETUP", e.Phase())
	}
}

func TestEngine_RejectsSetupWhileRunning(t *testing.T) {
	e := newTestEngine(t, 2, 1, proc{0, 3})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Register(0, 1); !model.IsInvalidState(err) {
		t.Errorf("Register while running: err = %v, want invalid state", err)
	}
	if err := e.Configure(3, 1); !model.IsInvalidState(err) {
		t.Errorf("Configure while running: err = %v, want invalid state", err)
	}
	if err := e.Start(); !model.IsInvalidState(err) {
		t.Errorf("Start while running: err = %v, want invalid state", err)
	}
	if _, err := e.Metrics(); !model.IsInvalidState(err) {
		t.Errorf("Metrics while running: err = %v, want invalid state", err)
	}
}

func TestEngine_StepOutsideRun(t *testing.T) {
	e := newTestEngine(t, 2, 1, proc{0, 1})
	if _, err := e.Step(); !model.IsInvalidState(err) {
		t.Errorf("Step before Start: err = %v, want invalid state", err)
	}
	stepAll(t, e)
	if _, err := e.Step(); !model.IsInvalidState(err) {
		t.Errorf("Step after finish: err = %v, want invalid state", err)
	}
}

func TestEngine_RestartAfterFinishIsIdentical(t *testing.T) {
	e := newTestEngine(t, 2, 2, proc{0, 5}, proc{1, 3}, proc{2, 4})
	stepAll(t, e)
	first := e.Timeline()
	m1, _ := e.Metrics()

	stepAll(t, e)
	if !intervalsEqual(first, e.Timeline()) {
		t.Errorf("rerun timeline differs:\n%v\n%v", first, e.Timeline())
	}
	m2, _ := e.Metrics()
	if m1.AverageWaiting != m2.AverageWaiting || m1.Utilization != m2.Utilization {
		t.Errorf("rerun metrics differ: %+v vs %+v", m1, m2)
	}
}

func TestEngine_RegisterAfterFinishReturnsToSetup(t *testing.T) {
	e := newTestEngine(t, 2, 1, proc{0, 1})
	stepAll(t, e)
	if _, err := e.Register(0, 2); err != nil {
		t.Fatalf("Register after finish: %v", err)
	}
	if e.Phase() != model.RunPhaseSetup {
		t.Errorf("phase = %s, want SETUP", e.Phase())
	}
	snap := e.Snapshot()
	if len(snap.Timeline) != 0 || snap.Clock != 0 {
		t.Errorf("run state not cleared: clock=%d timeline=%v", snap.Clock, snap.Timeline)
	}
	for _, p := range snap.Processes {
		if p.State != model.ProcessStateNew {
			t.Errorf("P%d state = %s, want NEW", p.ID, p.State)
		}
	}
}

func TestEngine_ConfigureResizesCores(t *testing.T) {
	e := newTestEngine(t, 2, 2)
	if err := e.Configure(4, 5); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	snap := e.Snapshot()
	if len(snap.Cores) != 5 || snap.Quantum != 4 {
		t.Errorf("cores=%d quantum=%d, want 5 and 4", len(snap.Cores), snap.Quantum)
	}
	if e.Config() != (config.SimConfig{Quantum: 4, Cores: 5}) {
		t.Errorf("Config() = %+v", e.Config())
	}
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t, 3, 2, proc{0, 4}, proc{0, 4})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	e.Step()
	e.Step()

	e.Reset()

	snap := e.Snapshot()
	if snap.Phase != model.RunPhaseSetup || snap.Clock != 0 {
		t.Errorf("phase=%s clock=%d after Reset", snap.Phase, snap.Clock)
	}
	if len(snap.Processes) != 0 || len(snap.ReadyQueue) != 0 || len(snap.Timeline) != 0 {
		t.Errorf("run state survived Reset: %+v", snap)
	}
	for _, c := range snap.Cores {
		if c.State != model.CoreStateIdle {
			t.Errorf("core %d state = %s after Reset", c.ID, c.State)
		}
	}
	if snap.Quantum != 3 || snap.CoreCount != 2 {
		t.Errorf("configuration lost on Reset: quantum=%d cores=%d", snap.Quantum, snap.CoreCount)
	}
	id, _ := e.Register(1, 1)
	if id != 1 {
		t.Errorf("first id after Reset = %d, want 1", id)
	}
}

func TestEngine_RunToCompletion(t *testing.T) {
	e := newTestEngine(t, 2, 1, proc{0, 5}, proc{1, 3})
	m, err := e.RunToCompletion(context.Background())
	if err != nil {
		t.Fatalf("RunToCompletion: %v", err)
	}
	if m.TotalTicks != 9 || len(m.Processes) != 2 {
		t.Errorf("metrics = %+v", m)
	}
	again, err := e.RunToCompletion(context.Background())
	if err != nil || again.TotalTicks != m.TotalTicks {
		t.Errorf("RunToCompletion on finished run = %+v, %v", again, err)
	}
}

func TestEngine_RunToCompletionCancelled(t *testing.T) {
	e := newTestEngine(t, 1, 1, proc{0, 50})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.RunToCompletion(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if e.Phase() != model.RunPhaseRunning {
		t.Errorf("phase = %s, want RUNNING (caller may resume)", e.Phase())
	}
}

func TestEngine_SnapshotIsCopy(t *testing.T) {
	e := newTestEngine(t, 2, 1, proc{0, 3})
	e.Start()
	e.Step()
	snap := e.Snapshot()
	snap.Processes[0].RemainingBurstTime = 99
	snap.Cores[0].ProcessID = 42
	again := e.Snapshot()
	if again.Processes[0].RemainingBurstTime == 99 || again.Cores[0].ProcessID == 42 {
		t.Error("Snapshot shares memory with engine state")
	}
}

package scheduler

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/me/rrsim/pkg/model"
)

func TestStep_SingleProcessNoContention(t *testing.T) {
	e := newTestEngine(t, 3, 1, proc{0, 3})
	results := stepAll(t, e)

	if len(results) != 4 {
		t.Fatalf("ticks = %d, want 4", len(results))
	}
	first := results[0]
	if len(first.Events) != 2 ||
		first.Events[0] != (model.Event{Type: model.EventArrival, Tick: 0, ProcessID: 1, CoreID: model.NoCore}) ||
		first.Events[1] != (model.Event{Type: model.EventDispatch, Tick: 0, ProcessID: 1, CoreID: 0}) {
		t.Errorf("tick 0 events = %+v", first.Events)
	}
	last := results[3]
	if len(last.Events) != 1 || last.Events[0].Type != model.EventComplete || last.Events[0].Tick != 3 {
		t.Errorf("tick 3 events = %+v", last.Events)
	}

	want := []model.Interval{{ProcessID: 1, CoreID: 0, Start: 1, End: 4}}
	if got := e.Timeline(); !intervalsEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}

	m, err := e.Metrics()
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	p := m.Processes[0]
	if p.StartTime != 0 || p.CompletionTime != 4 || p.TurnaroundTime != 4 || p.WaitingTime != 1 {
		t.Errorf("P1 = %+v, want start 0, completion 4, turnaround 4, waiting 1", p)
	}
	if m.TotalTicks != 4 || m.BusyTicks != 3 {
		t.Errorf("TotalTicks/BusyTicks = %d/%d, want 4/3", m.TotalTicks, m.BusyTicks)
	}
	if m.Utilization != 75 {
		t.Errorf("Utilization = %v, want 75", m.Utilization)
	}
}

func TestStep_PreemptionInterleaves(t *testing.T) {
	e := newTestEngine(t, 2, 1, proc{0, 5}, proc{1, 3})
	results := stepAll(t, e)

	want := []model.Interval{
		{ProcessID: 1, CoreID: 0, Start: 1, End: 3},
		{ProcessID: 2, CoreID: 0, Start: 3, End: 5},
		{ProcessID: 1, CoreID: 0, Start: 5, End: 7},
		{ProcessID: 2, CoreID: 0, Start: 7, End: 8},
		{ProcessID: 1, CoreID: 0, Start: 8, End: 9},
	}
	if got := e.Timeline(); !intervalsEqual(got, want) {
		t.Errorf("timeline = %v\nwant       %v", got, want)
	}

	// Tick 2: P1 preempted, P2 dispatched onto the freed core, P1 not redispatched.
	tick2 := results[2].Events
	if len(tick2) != 2 ||
		tick2[0] != (model.Event{Type: model.EventPreempt, Tick: 2, ProcessID: 1, CoreID: 0}) ||
		tick2[1] != (model.Event{Type: model.EventDispatch, Tick: 2, ProcessID: 2, CoreID: 0}) {
		t.Errorf("tick 2 events = %+v", tick2)
	}

	snap := e.Snapshot()
	for _, p := range snap.Processes {
		if p.RemainingBurstTime != 0 || p.State != model.ProcessStateTerminated {
			t.Errorf("P%d remaining=%d state=%s", p.ID, p.RemainingBurstTime, p.State)
		}
	}

	m, _ := e.Metrics()
	if m.Processes[0].CompletionTime != 9 || m.Processes[0].WaitingTime != 4 {
		t.Errorf("P1 = %+v, want completion 9, waiting 4", m.Processes[0])
	}
	if m.Processes[1].CompletionTime != 8 || m.Processes[1].WaitingTime != 4 {
		t.Errorf("P2 = %+v, want completion 8, waiting 4", m.Processes[1])
	}
	if m.AverageWaiting != 4 || m.AverageTurnaround != 8 {
		t.Errorf("averages = %v/%v, want 4/8", m.AverageWaiting, m.AverageTurnaround)
	}
	if math.Abs(m.Utilization-800.0/9.0) > 1e-9 {
		t.Errorf("Utilization = %v, want %v", m.Utilization, 800.0/9.0)
	}
}

func TestStep_ExpiredProcessNotRedispatchedSameTick(t *testing.T) {
	// Both cores free up at tick 1 with two expired processes; only the
	// already-queued P3 may be dispatched, core 1 stays idle for a tick.
	e := newTestEngine(t, 1, 2, proc{0, 2}, proc{0, 2}, proc{0, 1})
	results := stepAll(t, e)

	tick1 := results[1].Events
	var dispatches []model.Event
	for _, ev := range tick1 {
		if ev.Type == model.EventDispatch {
			dispatches = append(dispatches, ev)
		}
	}
	if len(dispatches) != 1 || dispatches[0].ProcessID != 3 || dispatches[0].CoreID != 0 {
		t.Errorf("tick 1 dispatches = %+v, want only P3 on core 0", dispatches)
	}

	want := []model.Interval{
		{ProcessID: 1, CoreID: 0, Start: 1, End: 2},
		{ProcessID: 2, CoreID: 1, Start: 1, End: 2},
		{ProcessID: 3, CoreID: 0, Start: 2, End: 3},
		{ProcessID: 1, CoreID: 0, Start: 3, End: 4},
		{ProcessID: 2, CoreID: 1, Start: 3, End: 4},
	}
	if got := e.Timeline(); !intervalsEqual(got, want) {
		t.Errorf("timeline = %v\nwant       %v", got, want)
	}
	m, _ := e.Metrics()
	if m.TotalTicks != 4 || m.Utilization != 62.5 {
		t.Errorf("TotalTicks=%d Utilization=%v, want 4 and 62.5", m.TotalTicks, m.Utilization)
	}
}

func TestStep_ReenqueueBehindArrivals(t *testing.T) {
	// P2 arrives at tick 2, the same tick P1's quantum expires; P2 must be
	// ahead of P1 in the ready queue.
	e := newTestEngine(t, 2, 1, proc{0, 4}, proc{2, 1}, proc{2, 1})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := e.Step(); err != nil {
			t.Fatal(err)
		}
	}
	snap := e.Snapshot()
	// Tick 2: P2, P3 arrive; P1 preempted; P2 dispatched; queue = [P3, P1].
	if len(snap.ReadyQueue) != 2 || snap.ReadyQueue[0] != 3 || snap.ReadyQueue[1] != 1 {
		t.Errorf("ready queue = %v, want [3 1]", snap.ReadyQueue)
	}
	if snap.Cores[0].ProcessID != 2 || findProcess(snap, 2).CurrentCore != 0 {
		t.Errorf("core 0 = %+v, want P2", snap.Cores[0])
	}
}

func TestStep_ArrivalTiesInRegistryOrder(t *testing.T) {
	e := newTestEngine(t, 1, 1, proc{1, 1}, proc{0, 1}, proc{1, 1})
	results := stepAll(t, e)

	var arrivals []int
	for _, ev := range results[1].Events {
		if ev.Type == model.EventArrival {
			arrivals = append(arrivals, ev.ProcessID)
		}
	}
	if len(arrivals) != 2 || arrivals[0] != 1 || arrivals[1] != 3 {
		t.Errorf("tick 1 arrivals = %v, want [1 3]", arrivals)
	}
}

func TestStep_IdleTicksBeforeFirstArrival(t *testing.T) {
	e := newTestEngine(t, 2, 2, proc{3, 1})
	results := stepAll(t, e)
	for _, res := range results[:3] {
		if len(res.Events) != 0 {
			t.Errorf("tick %d events = %+v, want none", res.Tick, res.Events)
		}
	}
	m, _ := e.Metrics()
	// Dispatch at 3, execute at 4, completion 5.
	if m.TotalTicks != 5 || m.Processes[0].CompletionTime != 5 || m.Processes[0].WaitingTime != 1 {
		t.Errorf("metrics = %+v", m)
	}
	if m.Utilization != 10 {
		t.Errorf("Utilization = %v, want 10 (1 busy of 5x2)", m.Utilization)
	}
}

func TestStep_WaitingCounterAdvisory(t *testing.T) {
	e := newTestEngine(t, 1, 1, proc{0, 2}, proc{0, 2})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	e.Step() // P1 dispatched, P2 queued
	if w := findProcess(e.Snapshot(), 2).WaitingTime; w != 1 {
		t.Errorf("P2 waiting counter after tick 0 = %d, want 1", w)
	}
	if w := findProcess(e.Snapshot(), 1).WaitingTime; w != 0 {
		t.Errorf("dispatched P1 waiting counter = %d, want 0", w)
	}
}

func TestStep_QuantumElapsedResetOnDispatch(t *testing.T) {
	e := newTestEngine(t, 3, 1, proc{0, 5})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		e.Step()
	}
	// Ticks 1..3 executed; quantum expired at tick 3.
	p := findProcess(e.Snapshot(), 1)
	if p.QuantumElapsed != 0 || p.State != model.ProcessStateReady || p.RemainingBurstTime != 2 {
		t.Errorf("after expiry: %+v", p)
	}
	e.Step() // redispatched at tick 4 (alone, still one tick of latency)
	p = findProcess(e.Snapshot(), 1)
	if p.State != model.ProcessStateRunning || p.StartTime != 0 || p.QuantumElapsed != 0 {
		t.Errorf("after redispatch: %+v", p)
	}
}

func TestStep_FailedTickBlocksRunUntilReset(t *testing.T) {
	e := newTestEngine(t, 1, 1, proc{0, 3})
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	// a terminated process still holding a core cannot be preempted
	e.registry.Get(1).State = model.ProcessStateTerminated
	if _, err := e.Step(); err == nil || !strings.Contains(err.Error(), "phase 2 (execute)") {
		t.Fatalf("Step err = %v, want phase 2 failure", err)
	}

	_, err := e.Step()
	if model.CodeOf(err) != model.ErrInternal || !strings.Contains(err.Error(), "reset it") {
		t.Fatalf("Step after failure err = %v, want internal error", err)
	}
	if _, err := e.RunToCompletion(context.Background()); err == nil {
		t.Fatal("RunToCompletion succeeded on a failed run")
	}

	e.Reset()
	if _, err := e.Register(0, 2); err != nil {
		t.Fatalf("Register after reset: %v", err)
	}
	if _, err := e.RunToCompletion(context.Background()); err != nil {
		t.Fatalf("RunToCompletion after reset: %v", err)
	}
}

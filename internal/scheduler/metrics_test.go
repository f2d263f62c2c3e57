package scheduler

import (
	"testing"

	"github.com/me/rrsim/internal/config"
	"github.com/me/rrsim/pkg/model"
)

func TestUtilization(t *testing.T) {
	tests := []struct {
		name               string
		busy, ticks, cores int
		want               float64
	}{
		{"zero ticks", 0, 0, 2, 0},
		{"zero cores", 3, 4, 0, 0},
		{"three quarters", 3, 4, 1, 75},
		{"full", 8, 4, 2, 100},
		{"clamped high", 9, 4, 2, 100},
		{"clamped low", -1, 4, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Utilization(tt.busy, tt.ticks, tt.cores); got != tt.want {
				t.Errorf("Utilization(%d, %d, %d) = %v, want %v", tt.busy, tt.ticks, tt.cores, got, tt.want)
			}
		})
	}
}

func TestComputeMetrics_OverwritesWaitingCounter(t *testing.T) {
	p1 := model.NewProcess(1, 0, 3)
	p1.State = model.ProcessStateTerminated
	p1.StartTime = 0
	p1.CompletionTime = 4
	p1.WaitingTime = 0 // counter never saw it queued at end of a tick

	p2 := model.NewProcess(2, 1, 2)
	p2.State = model.ProcessStateTerminated
	p2.StartTime = 4
	p2.CompletionTime = 7
	p2.WaitingTime = 3

	tl := NewTimeline(1)
	for tick := 1; tick < 4; tick++ {
		tl.Record(1, 0, tick)
	}
	tl.Record(2, 0, 5)
	tl.Record(2, 0, 6)

	m := ComputeMetrics([]*model.Process{p1, p2}, tl, 7, config.SimConfig{Quantum: 3, Cores: 1})

	if m.Processes[0].WaitingTime != 1 || p1.WaitingTime != 1 {
		t.Errorf("P1 waiting = %d (process %d), want 1", m.Processes[0].WaitingTime, p1.WaitingTime)
	}
	if m.Processes[1].TurnaroundTime != 6 || m.Processes[1].WaitingTime != 4 {
		t.Errorf("P2 = %+v, want turnaround 6, waiting 4", m.Processes[1])
	}
	if m.AverageWaiting != 2.5 || m.AverageTurnaround != 5 {
		t.Errorf("averages = %v/%v, want 2.5/5", m.AverageWaiting, m.AverageTurnaround)
	}
	if m.BusyTicks != 5 || m.TotalTicks != 7 || m.Cores != 1 || m.Quantum != 3 {
		t.Errorf("totals = %+v", m)
	}
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil, NewTimeline(2), 0, config.SimConfig{Quantum: 1, Cores: 2})
	if m.AverageWaiting != 0 || m.Utilization != 0 || len(m.Processes) != 0 {
		t.Errorf("empty metrics = %+v", m)
	}
}

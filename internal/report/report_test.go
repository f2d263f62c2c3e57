package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/me/rrsim/pkg/model"
)

func TestGantt_SingleCore(t *testing.T) {
	var buf bytes.Buffer
	tl := []model.Interval{{ProcessID: 1, CoreID: 0, Start: 1, End: 4}}
	if err := Gantt(&buf, tl, 1, 4); err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	want := "Core 0 | .  P1 P1 P1\n" +
		"         0           4\n"
	if buf.String() != want {
		t.Errorf("Gantt =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestGantt_AxisEveryFiveTicks(t *testing.T) {
	var buf bytes.Buffer
	tl := []model.Interval{
		{ProcessID: 1, CoreID: 0, Start: 1, End: 12},
		{ProcessID: 2, CoreID: 1, Start: 1, End: 3},
	}
	if err := Gantt(&buf, tl, 2, 12); err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "Core 1 | .  P2 P2 .  ") {
		t.Errorf("core 1 row = %q", lines[1])
	}
	axis := strings.Fields(lines[2])
	want := []string{"0", "5", "10", "12"}
	if strings.Join(axis, ",") != strings.Join(want, ",") {
		t.Errorf("axis labels = %v, want %v", axis, want)
	}
	// label 5 sits at the start of the sixth cell
	if idx := strings.Index(lines[2], "5"); idx != len("Core 0 | ")+5*3 {
		t.Errorf("label 5 at column %d", idx)
	}
}

func TestGantt_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Gantt(&buf, nil, 2, 0); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "empty") {
		t.Errorf("Gantt = %q", buf.String())
	}
}

func TestGantt_LongRunListsIntervals(t *testing.T) {
	var buf bytes.Buffer
	tl := []model.Interval{
		{ProcessID: 1, CoreID: 0, Start: 1, End: 400},
		{ProcessID: 2, CoreID: 0, Start: 400, End: 1_000_000_000},
	}
	if err := Gantt(&buf, tl, 2, 1_000_000_000); err != nil {
		t.Fatalf("Gantt: %v", err)
	}
	want := "(1000000000 ticks, too long to draw)\n" +
		"Core 0 | P1[1,400) P2[400,1000000000)\n" +
		"Core 1 | idle\n"
	if buf.String() != want {
		t.Errorf("Gantt =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestSummary(t *testing.T) {
	got := Summary(model.Metrics{AverageWaiting: 4, AverageTurnaround: 8.5, Utilization: 800.0 / 9})
	want := "Average Waiting Time: 4.00\nAverage Turnaround Time: 8.50\nCPU Utilization: 88.89%\n"
	if got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}

func testRun() *model.Run {
	return &model.Run{
		ID:   "run_1",
		Name: "single",
		Metrics: model.Metrics{
			Processes: []model.ProcessResult{
				{ID: 1, ArrivalTime: 0, BurstTime: 3, StartTime: 1, CompletionTime: 4, WaitingTime: 1, TurnaroundTime: 4},
			},
			AverageWaiting:    1,
			AverageTurnaround: 4,
			Utilization:       75,
			TotalTicks:        4,
			BusyTicks:         3,
			Cores:             1,
			Quantum:           2,
		},
		Timeline:  []model.Interval{{ProcessID: 1, CoreID: 0, Start: 1, End: 4}},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, testRun()); err != nil {
		t.Fatalf("Text: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"single (run_1)",
		"quantum=2 cores=1 ticks=4",
		"Core 0 | .  P1 P1 P1",
		"PID     ARRIVAL",
		"P1      0         3       1       4            4            1",
		"CPU Utilization: 75.00%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(testRun())
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var back model.Run
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ID != "run_1" || back.Metrics.TotalTicks != 4 || len(back.Timeline) != 1 {
		t.Errorf("round trip = %+v", back)
	}
}

func TestEvents(t *testing.T) {
	var buf bytes.Buffer
	res := model.TickResult{Tick: 3, Events: []model.Event{
		{Type: model.EventArrival, Tick: 3, ProcessID: 2, CoreID: model.NoCore},
		{Type: model.EventPreempt, Tick: 3, ProcessID: 1, CoreID: 0},
		{Type: model.EventDispatch, Tick: 3, ProcessID: 2, CoreID: 0},
		{Type: model.EventComplete, Tick: 3, ProcessID: 3, CoreID: 1},
	}}
	if err := Events(&buf, res); err != nil {
		t.Fatal(err)
	}
	want := "t=3    P2 arrives\n" +
		"t=3    P1 preempted on core 0\n" +
		"t=3    P2 dispatched to core 0\n" +
		"t=3    P3 completes on core 1\n"
	if buf.String() != want {
		t.Errorf("Events =\n%s\nwant\n%s", buf.String(), want)
	}
}

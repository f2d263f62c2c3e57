package scheduler

import (
	"io"
	"log/slog"
	"testing"

	"github.com/me/rrsim/internal/config"
	"github.com/me/rrsim/pkg/model"
)

type proc struct{ arrival, burst int }

// newTestEngine creates an engine with the given processes registered.
func newTestEngine(t *testing.T, quantum, cores int, procs ...proc) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := NewEngine(config.SimConfig{Quantum: quantum, Cores: cores}, logger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for _, p := range procs {
		if _, err := e.Register(p.arrival, p.burst); err != nil {
			t.Fatalf("Register(%d, %d): %v", p.arrival, p.burst, err)
		}
	}
	return e
}

// stepAll starts the engine and steps it to completion, returning every tick result.
func stepAll(t *testing.T, e *Engine) []model.TickResult {
	t.Helper()
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	var results []model.TickResult
	for i := 0; i < 10000; i++ {
		res, err := e.Step()
		if err != nil {
			t.Fatalf("Step at tick %d: %v", e.Clock(), err)
		}
		results = append(results, res)
		if res.Finished {
			return results
		}
	}
	t.Fatal("run did not finish within 10000 ticks")
	return nil
}

func intervalsEqual(a, b []model.Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func findProcess(s model.Snapshot, id int) model.Process {
	for _, p := range s.Processes {
		if p.ID == id {
			return p
		}
	}
	return model.Process{}
}

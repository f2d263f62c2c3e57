package scheduler

import (
	"github.com/me/rrsim/internal/config"
	"github.com/me/rrsim/pkg/model"
)

// ComputeMetrics derives the final metrics of a finished run. Waiting and
// turnaround are recomputed from completion, arrival and burst, replacing
// the per-tick waiting counter. totalTicks is the number of ticks executed.
func ComputeMetrics(procs []*model.Process, tl *Timeline, totalTicks int, cfg config.SimConfig) model.Metrics {
	m := model.Metrics{
		Processes:  make([]model.ProcessResult, 0, len(procs)),
		TotalTicks: totalTicks,
		BusyTicks:  tl.BusyTicks(),
		Cores:      cfg.Cores,
		Quantum:    cfg.Quantum,
	}

	var sumWaiting, sumTurnaround int
	for _, p := range procs {
		p.TurnaroundTime = p.CompletionTime - p.ArrivalTime
		p.WaitingTime = p.TurnaroundTime - p.BurstTime
		sumWaiting += p.WaitingTime
		sumTurnaround += p.TurnaroundTime
		m.Processes = append(m.Processes, model.ProcessResult{
			ID:             p.ID,
			ArrivalTime:    p.ArrivalTime,
			BurstTime:      p.BurstTime,
			StartTime:      p.StartTime,
			CompletionTime: p.CompletionTime,
			WaitingTime:    p.WaitingTime,
			TurnaroundTime: p.TurnaroundTime,
		})
	}
	if n := len(procs); n > 0 {
		m.AverageWaiting = float64(sumWaiting) / float64(n)
		m.AverageTurnaround = float64(sumTurnaround) / float64(n)
	}
	m.Utilization = Utilization(m.BusyTicks, totalTicks, cfg.Cores)
	return m
}

// Utilization returns busy core-ticks as a percentage of available
// core-ticks, clamped to [0, 100]. Zero ticks or zero cores yield 0.
func Utilization(busy, ticks, cores int) float64 {
	if ticks <= 0 || cores <= 0 {
		return 0
	}
	u := float64(busy) / float64(ticks*cores) * 100
	switch {
	case u < 0:
		return 0
	case u > 100:
		return 100
	}
	return u
}

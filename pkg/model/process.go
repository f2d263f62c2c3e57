package model

const (
	// NoCore marks a process that is not assigned to any core, or an event
	// that does not involve one.
	NoCore = -1
	// NoProcess marks an idle core.
	NoProcess = -1
)

// Process is a unit of CPU work registered with the simulation.
type Process struct {
	ID                 int          `json:"id"`
	ArrivalTime        int          `json:"arrival_time"`
	BurstTime          int          `json:"burst_time"`
	RemainingBurstTime int          `json:"remaining_burst_time"`
	State              ProcessState `json:"state"`
	StartTime          int          `json:"start_time"`      // -1 until first dispatch
	CompletionTime     int          `json:"completion_time"` // -1 until terminated
	WaitingTime        int          `json:"waiting_time"`
	TurnaroundTime     int          `json:"turnaround_time"`
	CurrentCore        int          `json:"current_core"`
	QuantumElapsed     int          `json:"quantum_elapsed"`
}

// NewProcess returns a process in its initial NEW state.
func NewProcess(id, arrival, burst int) *Process {
	p := &Process{ID: id, ArrivalTime: arrival, BurstTime: burst}
	p.Reset()
	return p
}

// Reset restores the process to its pre-run values.
func (p *Process) Reset() {
	p.RemainingBurstTime = p.BurstTime
	p.State = ProcessStateNew
	p.StartTime = -1
	p.CompletionTime = -1
	p.WaitingTime = 0
	p.TurnaroundTime = 0
	p.CurrentCore = NoCore
	p.QuantumElapsed = 0
}

// Transition moves the process to next, rejecting moves not in ValidProcessTransitions.
func (p *Process) Transition(next ProcessState) error {
	if !p.State.CanTransitionTo(next) {
		return &InvalidTransitionError{Entity: "process", ID: p.ID, From: p.State.String(), To: next.String()}
	}
	p.State = next
	return nil
}

package model

// Core is one processor of the simulated machine.
type Core struct {
	ID        int       `json:"id"`
	State     CoreState `json:"state"`
	ProcessID int       `json:"process_id"` // NoProcess when idle
}

// Interval is one Timeline (Gantt) entry: ProcessID executed on CoreID
// during the half-open tick range [Start, End).
type Interval struct {
	ProcessID int `json:"process_id"`
	CoreID    int `json:"core_id"`
	Start     int `json:"start"`
	End       int `json:"end"`
}

// Duration returns the number of ticks covered by the interval.
func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

// EventType identifies a state change reported by a tick.
type EventType string

const (
	EventArrival  EventType = "ARRIVAL"
	EventDispatch EventType = "DISPATCH"
	EventPreempt  EventType = "PREEMPT"
	EventComplete EventType = "COMPLETE"
)

// Event is a single state change produced while executing a tick.
type Event struct {
	Type      EventType `json:"type"`
	Tick      int       `json:"tick"`
	ProcessID int       `json:"process_id"`
	CoreID    int       `json:"core_id"`
}

// TickResult is returned by every engine step.
type TickResult struct {
	Tick     int     `json:"tick"`
	Events   []Event `json:"events"`
	Finished bool    `json:"finished"`
}

// Snapshot is a read-only copy of the engine state for rendering.
type Snapshot struct {
	Clock      int        `json:"clock"`
	Phase      RunPhase   `json:"phase"`
	Quantum    int        `json:"quantum"`
	CoreCount  int        `json:"core_count"`
	Processes  []Process  `json:"processes"`
	Cores      []Core     `json:"cores"`
	ReadyQueue []int      `json:"ready_queue"`
	Timeline   []Interval `json:"timeline"`
}

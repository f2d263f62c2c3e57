package model

// ProcessState represents the lifecycle state of a Process.
type ProcessState string

const (
	ProcessStateNew        ProcessState = "NEW"
	ProcessStateReady      ProcessState = "READY"
	ProcessStateRunning    ProcessState = "RUNNING"
	ProcessStateTerminated ProcessState = "TERMINATED"
)

// String returns the string representation of the process state.
func (s ProcessState) String() string {
	return string(s)
}

// IsTerminal returns true if the process has finished executing.
func (s ProcessState) IsTerminal() bool {
	return s == ProcessStateTerminated
}

// ValidProcessTransitions defines the allowed state transitions for Processes.
var ValidProcessTransitions = map[ProcessState][]ProcessState{
	ProcessStateNew:     {ProcessStateReady},
	ProcessStateReady:   {ProcessStateRunning},
	ProcessStateRunning: {ProcessStateReady, ProcessStateTerminated},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s ProcessState) CanTransitionTo(next ProcessState) bool {
	for _, allowed := range ValidProcessTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CoreState represents whether a Core is executing a process.
type CoreState string

const (
	CoreStateIdle CoreState = "IDLE"
	CoreStateBusy CoreState = "BUSY"
)

// String returns the string representation of the core state.
func (s CoreState) String() string {
	return string(s)
}

// RunPhase is the lifecycle of a simulation run as seen by callers.
type RunPhase string

const (
	RunPhaseSetup    RunPhase = "SETUP"
	RunPhaseRunning  RunPhase = "RUNNING"
	RunPhaseFinished RunPhase = "FINISHED"
)

// String returns the string representation of the run phase.
func (p RunPhase) String() string {
	return string(p)
}

// IsActive reports whether registration and reconfiguration are locked.
func (p RunPhase) IsActive() bool {
	return p == RunPhaseRunning
}

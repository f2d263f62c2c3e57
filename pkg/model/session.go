package model

import "time"

// SessionInfo describes a live simulation session on the server.
type SessionInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Phase     RunPhase  `json:"phase"`
	Clock     int       `json:"clock"`
	Quantum   int       `json:"quantum"`
	Cores     int       `json:"cores"`
	Processes int       `json:"processes"`
	RunID     string    `json:"run_id,omitempty"`
	Playing   bool      `json:"playing"`
	CreatedAt time.Time `json:"created_at"`
}

// RunResult is the outcome of running a session to completion. RunID is
// set when the server archived the run.
type RunResult struct {
	Metrics  Metrics    `json:"metrics"`
	Timeline []Interval `json:"timeline"`
	RunID    string     `json:"run_id,omitempty"`
}

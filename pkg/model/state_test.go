package model

import "testing"

func TestProcessState_IsTerminal(t *testing.T) {
	tests := []struct {
		state ProcessState
		want  bool
	}{
		{ProcessStateNew, false},
		{ProcessStateReady, false},
		{ProcessStateRunning, false},
		{ProcessStateTerminated, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestProcessState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to ProcessState
		want     bool
	}{
		{ProcessStateNew, ProcessStateReady, true},
		{ProcessStateNew, ProcessStateRunning, false},
		{ProcessStateReady, ProcessStateRunning, true},
		{ProcessStateReady, ProcessStateTerminated, false},
		{ProcessStateRunning, ProcessStateReady, true},
		{ProcessStateRunning, ProcessStateTerminated, true},
		{ProcessStateTerminated, ProcessStateReady, false},
		{ProcessStateTerminated, ProcessStateNew, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s → %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRunPhase_IsActive(t *testing.T) {
	if RunPhaseSetup.IsActive() {
		t.Error("SETUP should not be active")
	}
	if !RunPhaseRunning.IsActive() {
		t.Error("RUNNING should be active")
	}
	if RunPhaseFinished.IsActive() {
		t.Error("FINISHED should not be active")
	}
}

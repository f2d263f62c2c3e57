// Package scheduler implements the multi-core round-robin tick engine and
// the Player that drives it on a timer.
package scheduler

import "github.com/me/rrsim/pkg/model"

// Stepper advances a simulation by exactly one tick.
// Each call is atomic: every phase of the tick has run when it returns.
type Stepper interface {
	Step() (model.TickResult, error)
}

package scheduler

import (
	"fmt"

	"github.com/me/rrsim/pkg/model"
)

// Registry owns the registered processes in registration order.
type Registry struct {
	procs  []*model.Process
	byID   map[int]*model.Process
	nextID int
}

// NewRegistry returns an empty registry whose first process gets id 1.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int]*model.Process), nextID: 1}
}

// Register adds a process in state NEW and returns its id.
func (r *Registry) Register(arrival, burst int) (int, error) {
	var details []model.FieldError
	if arrival < 0 {
		details = append(details, model.FieldError{Field: "arrival", Message: fmt.Sprintf("must be >= 0, got %d", arrival)})
	}
	if burst <= 0 {
		details = append(details, model.FieldError{Field: "burst", Message: fmt.Sprintf("must be > 0, got %d", burst)})
	}
	if len(details) > 0 {
		return 0, model.NewValidationError("invalid process", details...)
	}

	p := model.NewProcess(r.nextID, arrival, burst)
	r.nextID++
	r.procs = append(r.procs, p)
	r.byID[p.ID] = p
	return p.ID, nil
}

// Get returns the process with the given id, or nil.
func (r *Registry) Get(id int) *model.Process {
	return r.byID[id]
}

// All returns the live processes in registration order.
func (r *Registry) All() []*model.Process {
	return r.procs
}

// Len returns the number of registered processes.
func (r *Registry) Len() int {
	return len(r.procs)
}

// ResetAll restores every process to its pre-run values.
func (r *Registry) ResetAll() {
	for _, p := range r.procs {
		p.Reset()
	}
}

// Clear drops every process and restarts id assignment at 1.
func (r *Registry) Clear() {
	r.procs = nil
	r.byID = make(map[int]*model.Process)
	r.nextID = 1
}

// AllTerminated reports whether every registered process has terminated.
// An empty registry is never finished.
func (r *Registry) AllTerminated() bool {
	if len(r.procs) == 0 {
		return false
	}
	for _, p := range r.procs {
		if !p.State.IsTerminal() {
			return false
		}
	}
	return true
}

package scheduler

import (
	"fmt"

	"github.com/me/rrsim/pkg/model"
)

// CorePool is the fixed set of cores and the authoritative
// process-to-core mapping.
type CorePool struct {
	cores []model.Core
}

// NewCorePool creates n idle cores with ids 0..n-1.
func NewCorePool(n int) *CorePool {
	cp := &CorePool{}
	cp.Reset(n)
	return cp
}

// Reset rebuilds the pool with n idle cores.
func (cp *CorePool) Reset(n int) {
	cp.cores = make([]model.Core, n)
	for i := range cp.cores {
		cp.cores[i] = model.Core{ID: i, State: model.CoreStateIdle, ProcessID: model.NoProcess}
	}
}

// Len returns the number of cores.
func (cp *CorePool) Len() int {
	return len(cp.cores)
}

// Busy returns the ids of busy cores in index order.
func (cp *CorePool) Busy() []int {
	var ids []int
	for _, c := range cp.cores {
		if c.State == model.CoreStateBusy {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Available returns the ids of idle cores in index order. Cores released
// earlier in the current tick are idle again and included.
func (cp *CorePool) Available() []int {
	var ids []int
	for _, c := range cp.cores {
		if c.State == model.CoreStateIdle {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ProcessOn returns the process assigned to core id, or model.NoProcess.
func (cp *CorePool) ProcessOn(id int) int {
	if id < 0 || id >= len(cp.cores) {
		return model.NoProcess
	}
	return cp.cores[id].ProcessID
}

// Assign marks core id busy with process pid.
func (cp *CorePool) Assign(id, pid int) error {
	if id < 0 || id >= len(cp.cores) {
		return fmt.Errorf("core %d out of range [0, %d)", id, len(cp.cores))
	}
	c := &cp.cores[id]
	if c.State == model.CoreStateBusy {
		return fmt.Errorf("core %d already running process %d", id, c.ProcessID)
	}
	c.State = model.CoreStateBusy
	c.ProcessID = pid
	return nil
}

// Release marks core id idle and returns the process it was running.
func (cp *CorePool) Release(id int) int {
	if id < 0 || id >= len(cp.cores) {
		return model.NoProcess
	}
	c := &cp.cores[id]
	pid := c.ProcessID
	c.State = model.CoreStateIdle
	c.ProcessID = model.NoProcess
	return pid
}

// Snapshot returns a copy of every core.
func (cp *CorePool) Snapshot() []model.Core {
	out := make([]model.Core, len(cp.cores))
	copy(out, cp.cores)
	return out
}

package execx

import (
	"os/exec"
	"sync"
)

// ProcManager tracks started processes and can kill them all on cleanup.
type ProcManager struct {
	mu    sync.Mutex
	procs []*exec.Cmd
}

func NewProcManager() *ProcManager { return &ProcManager{} }

func (pm *ProcManager) Add(cmd *exec.Cmd) {
	pm.mu.Lock()
	pm.procs = append(pm.procs, cmd)
	pm.mu.Unlock()
}

// Remove forgets cmd once it has been waited on.
func (pm *ProcManager) Remove(cmd *exec.Cmd) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for i, c := range pm.procs {
		if c == cmd {
			pm.procs = append(pm.procs[:i], pm.procs[i+1:]...)
			return
		}
	}
}

// Len reports how many processes are currently tracked.
func (pm *ProcManager) Len() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.procs)
}

// KillAll attempts to kill all tracked processes. It proceeds best-effort.
func (pm *ProcManager) KillAll() {
	pm.mu.Lock()
	procs := append([]*exec.Cmd(nil), pm.procs...)
	pm.procs = nil
	pm.mu.Unlock()
	for _, c := range procs {
		if c != nil && c.Process != nil {
			_ = c.Process.Kill()
		}
	}
}

// package-level default manager used by NewExecRunner
var defaultProcManager = NewProcManager()

// KillAll kills every child started through a default runner.
func KillAll() { defaultProcManager.KillAll() }

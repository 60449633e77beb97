package execution

import (
	"errors"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// killTree kills pid, its process group and all of its descendants.
// A process that already exited is not an error.
func killTree(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		_ = killGroup(pid)
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return os.ErrProcessDone
		}
		return err
	}
	// Descendants that left the group are only reachable through the tree.
	killDescendants(p)
	_ = killGroup(pid)
	if err := p.Kill(); err != nil {
		if running, _ := p.IsRunning(); !running {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}

func killDescendants(p *process.Process) {
	children, err := p.Children()
	if err != nil {
		return
	}
	for _, child := range children {
		killDescendants(child)
		_ = child.Kill()
	}
}

//go:build unix

package execution

import (
	"errors"
	"os"
	"syscall"
)

// procAttr puts a worker in its own process group, so leftovers can be killed with it
func procAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killGroup kills every process in the group led by pid
func killGroup(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

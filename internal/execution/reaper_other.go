//go:build !unix

package execution

import (
	"os"
	"syscall"
)

func procAttr() *syscall.SysProcAttr {
	return nil
}

// killGroup is a no-op without process groups; killTree walks the tree instead
func killGroup(int) error {
	return os.ErrProcessDone
}

//go:build !windows

package daemon

import (
	"os/exec"
	"syscall"
)

// Detach makes cmd start in its own session so it outlives the parent's terminal
func Detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

//go:build windows

package daemon

import (
	"os/exec"
	"syscall"
)

// not exported by syscall
const detachedProcess = 0x00000008

// Detach starts cmd without a console in a new process group
func Detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
}

// Package daemon starts the server binary in the background
package daemon

import (
	"fmt"
	"os"
	"os/exec"
)

// Spawn starts path with args detached from the caller, stdio on the null
// device. The child is reaped in the background; its pid is returned.
func Spawn(path string, args ...string) (int, error) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command(path, args...)
	if cwd, err := os.Getwd(); err == nil {
		cmd.Dir = cwd
	}
	cmd.Env = os.Environ()
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	Detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", path, err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return cmd.Process.Pid, nil
}

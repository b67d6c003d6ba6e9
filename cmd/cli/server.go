package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/yourusername/flix-offline-go/pkg/daemon"
)

const (
	serverBinary       = "flix-offline-server"
	serverStartTimeout = 10 * time.Second
	serverPollInterval = 200 * time.Millisecond
)

// isServerRunning checks if the server is ready to take requests
func isServerRunning() bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(serverURL + "/ready")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// findServerBinary locates the server binary next to the CLI, on PATH, or in common install dirs
func findServerBinary() (string, error) {
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), serverBinary)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(serverBinary); err == nil {
		return path, nil
	}

	home, _ := os.UserHomeDir()
	for _, dir := range []string{"/usr/local/bin", "/usr/bin", filepath.Join(home, "go/bin"), filepath.Join(home, ".local/bin")} {
		candidate := filepath.Join(dir, serverBinary)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s binary not found", serverBinary)
}

// startServerBackground starts the server as a detached background process
func startServerBackground() error {
	serverPath, err := findServerBinary()
	if err != nil {
		return err
	}

	if _, err := daemon.Spawn(serverPath, "-foreground"); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// waitForServerReady polls the server until it's ready or timeout
func waitForServerReady() error {
	deadline := time.Now().Add(serverStartTimeout)
	for time.Now().Before(deadline) {
		if isServerRunning() {
			return nil
		}
		time.Sleep(serverPollInterval)
	}
	return fmt.Errorf("server did not start within %v", serverStartTimeout)
}

// ensureServerRunning checks if server is running, starts it if not
func ensureServerRunning() error {
	if isServerRunning() {
		return nil
	}

	fmt.Fprintln(os.Stderr, "Server not running, starting...")
	if err := startServerBackground(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	if err := waitForServerReady(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Server started successfully")
	return nil
}

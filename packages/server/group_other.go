//go:build !unix

package server

import (
	"errors"
	"os"
	"os/exec"
)

// detach is a no-op: without process groups only the leader is stopped.
func detach(cmd *exec.Cmd) {}

func (h *Handle) terminate() error {
	return h.kill()
}

func (h *Handle) kill() error {
	err := h.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// groupAlive only tracks the leader here. Once it has been reaped there is
// nothing else Stop can observe.
func (h *Handle) groupAlive() bool {
	return false
}

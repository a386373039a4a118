//go:build unix

package server

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// detach starts the command in a new session, making it the leader of a
// fresh process group that the orchestrator's own signals do not reach.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

func (h *Handle) terminate() error {
	return signalGroup(h.pgid, unix.SIGTERM)
}

func (h *Handle) kill() error {
	return signalGroup(h.pgid, unix.SIGKILL)
}

// signalGroup sends sig to every process in group pgid. A group with no
// processes left is treated as already stopped.
func signalGroup(pgid int, sig syscall.Signal) error {
	err := unix.Kill(-pgid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

func (h *Handle) groupAlive() bool {
	return GroupAlive(h.pgid)
}

// GroupAlive reports whether any process remains in group pgid.
func GroupAlive(pgid int) bool {
	return !errors.Is(unix.Kill(-pgid, 0), unix.ESRCH)
}

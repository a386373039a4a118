package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// DefaultStopTimeout is how long Stop waits after SIGTERM before it kills
// the process group.
const DefaultStopTimeout = 5 * time.Second

const groupPollInterval = 10 * time.Millisecond

// Launcher starts server artifacts.
type Launcher struct {
	dir         string
	env         []string
	logDir      string
	stopTimeout time.Duration
}

// Option is a functional option for Launcher.
type Option func(*Launcher)

// WithEnv adds KEY=VALUE pairs to the server environment.
func WithEnv(env []string) Option {
	return func(l *Launcher) {
		l.env = append(l.env, env...)
	}
}

// WithLogDir writes each server's output to <dir>/<artifact>.log instead of
// discarding it.
func WithLogDir(dir string) Option {
	return func(l *Launcher) {
		l.logDir = dir
	}
}

// WithStopTimeout overrides DefaultStopTimeout.
func WithStopTimeout(d time.Duration) Option {
	return func(l *Launcher) {
		if d > 0 {
			l.stopTimeout = d
		}
	}
}

// NewLauncher creates a Launcher running servers from dir.
func NewLauncher(dir string, opts ...Option) *Launcher {
	l := &Launcher{
		dir:         dir,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches artifact with no arguments and returns without waiting
// for it to become ready.
func (l *Launcher) Start(ctx context.Context, artifact string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StartError{Artifact: artifact, Err: err}
	}

	cmd := exec.Command(artifact)
	cmd.Dir = l.dir
	cmd.Env = append(os.Environ(), l.env...)
	detach(cmd)

	var logFile *os.File
	if l.logDir != "" {
		f, err := os.Create(logPath(l.logDir, artifact))
		if err != nil {
			return nil, &StartError{Artifact: artifact, Err: fmt.Errorf("cannot create log file: %w", err)}
		}
		logFile = f
		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		closeQuietly(logFile)
		return nil, &StartError{Artifact: artifact, Err: err}
	}

	h := &Handle{
		artifact:    artifact,
		cmd:         cmd,
		pgid:        cmd.Process.Pid,
		done:        make(chan struct{}),
		stopTimeout: l.stopTimeout,
		logFile:     logFile,
	}
	go func() {
		h.waitErr = cmd.Wait()
		close(h.done)
	}()

	return h, nil
}

// Handle is a running server and its process group.
type Handle struct {
	artifact    string
	cmd         *exec.Cmd
	pgid        int
	done        chan struct{}
	waitErr     error
	stopTimeout time.Duration
	logFile     *os.File

	stopOnce sync.Once
	stopErr  error
}

// PID returns the process id of the server.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// PGID returns the process group id shared by the server and its children.
func (h *Handle) PGID() int {
	return h.pgid
}

// Exited reports whether the server has exited on its own, and with what.
func (h *Handle) Exited() (bool, error) {
	select {
	case <-h.done:
		if h.waitErr == nil {
			return true, errors.New("exited with status 0")
		}
		return true, h.waitErr
	default:
		return false, nil
	}
}

// Stop sends SIGTERM to the whole process group and waits for the server
// to be reaped and every process in the group to exit. Whatever is left
// after the stop timeout gets SIGKILL. A group that is already gone is not
// an error. Calls after the first return the first result.
func (h *Handle) Stop() error {
	h.stopOnce.Do(func() {
		h.stopErr = h.stop()
		closeQuietly(h.logFile)
	})
	return h.stopErr
}

func (h *Handle) stop() error {
	if err := h.terminate(); err != nil {
		return fmt.Errorf("failed to terminate process group %d: %w", h.pgid, err)
	}
	if h.waitGone(h.stopTimeout) {
		return nil
	}

	if err := h.kill(); err != nil {
		return fmt.Errorf("failed to kill process group %d: %w", h.pgid, err)
	}
	if !h.waitGone(h.stopTimeout) {
		return fmt.Errorf("process group %d still alive after SIGKILL", h.pgid)
	}
	return nil
}

// waitGone waits up to d for the leader to be reaped and every other member
// of its group to exit.
func (h *Handle) waitGone(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.done:
	case <-timer.C:
		return false
	}

	ticker := time.NewTicker(groupPollInterval)
	defer ticker.Stop()
	for h.groupAlive() {
		select {
		case <-ticker.C:
		case <-timer.C:
			return !h.groupAlive()
		}
	}
	return true
}

func logPath(dir, artifact string) string {
	return filepath.Join(dir, filepath.Base(artifact)+".log")
}

func closeQuietly(f *os.File) {
	if f != nil {
		_ = f.Close()
	}
}

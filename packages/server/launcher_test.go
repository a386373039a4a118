//go:build unix

package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArtifact creates an executable shell script standing in for a built
// test program.
func writeArtifact(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "test1.out")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestLauncher_StartStop(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "exec sleep 30")

	h, err := NewLauncher(dir).Start(context.Background(), artifact)
	require.NoError(t, err)
	assert.Equal(t, h.PID(), h.PGID())
	assert.True(t, GroupAlive(h.PGID()))

	exited, _ := h.Exited()
	assert.False(t, exited)

	require.NoError(t, h.Stop())
	assert.False(t, GroupAlive(h.PGID()))

	exited, _ = h.Exited()
	assert.True(t, exited)
}

func TestLauncher_StopTwice(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "exec sleep 30")

	h, err := NewLauncher(dir).Start(context.Background(), artifact)
	require.NoError(t, err)

	require.NoError(t, h.Stop())
	assert.NoError(t, h.Stop())
}

func TestLauncher_StopAfterExit(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "exit 3")

	h, err := NewLauncher(dir).Start(context.Background(), artifact)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		exited, _ := h.Exited()
		return exited
	}, 5*time.Second, 10*time.Millisecond)

	_, exitErr := h.Exited()
	assert.Error(t, exitErr)
	assert.NoError(t, h.Stop())
}

func TestLauncher_KillsAfterStopTimeout(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "trap '' TERM\nwhile true; do sleep 0.05; done")

	h, err := NewLauncher(dir, WithStopTimeout(200*time.Millisecond)).Start(context.Background(), artifact)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, h.Stop())
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)

	exited, _ := h.Exited()
	assert.True(t, exited)
}

func TestLauncher_LogDir(t *testing.T) {
	dir := t.TempDir()
	logDir := t.TempDir()
	artifact := writeArtifact(t, dir, "echo listening\nexec sleep 30")

	h, err := NewLauncher(dir, WithLogDir(logDir)).Start(context.Background(), artifact)
	require.NoError(t, err)

	logFile := filepath.Join(logDir, "test1.out.log")
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(logFile)
		return err == nil && string(data) == "listening\n"
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, h.Stop())
}

func TestLauncher_StartMissingArtifact(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLauncher(dir).Start(context.Background(), filepath.Join(dir, "missing.out"))
	require.Error(t, err)

	var startErr *StartError
	assert.ErrorAs(t, err, &startErr)
}

func TestLauncher_StartCancelled(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "exec sleep 30")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLauncher(dir).Start(ctx, artifact)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLauncher_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "pwd > cwd.txt\nexec sleep 30")

	h, err := NewLauncher(dir).Start(context.Background(), artifact)
	require.NoError(t, err)
	defer h.Stop()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "cwd.txt"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
}

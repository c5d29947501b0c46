package rendering

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript writes an executable shell script standing in for rendercv.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	path := filepath.Join(t.TempDir(), "fake-rendercv")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecLauncher_TerminateRunningProcess(t *testing.T) {
	bin := writeScript(t, "exec sleep 30")
	dir := t.TempDir()

	proc, err := ExecLauncher{Binary: bin}.Launch(LaunchSpec{Dir: dir, Input: InputFileName})
	require.NoError(t, err)
	assert.Greater(t, proc.PID(), 0)
	assert.False(t, proc.Exited())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := proc.Terminate(ctx)
	assert.Equal(t, Terminated, res.Outcome)
	assert.True(t, proc.Exited())
	assert.FileExists(t, filepath.Join(dir, WatchLogName))
}

func TestExecLauncher_IgnoredSignalTimesOut(t *testing.T) {
	bin := writeScript(t, "trap '' TERM\nwhile true; do sleep 0.1; done")

	proc, err := ExecLauncher{Binary: bin}.Launch(LaunchSpec{Dir: t.TempDir(), Input: InputFileName})
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	res := proc.Terminate(ctx)
	assert.Equal(t, TimedOut, res.Outcome)

	assert.Eventually(t, proc.Exited, 5*time.Second, 20*time.Millisecond)
}

func TestExecLauncher_MissingBinary(t *testing.T) {
	_, err := ExecLauncher{Binary: filepath.Join(t.TempDir(), "missing")}.Launch(LaunchSpec{Dir: t.TempDir(), Input: InputFileName})
	assert.Error(t, err)
}

func TestExecLauncher_PassesArguments(t *testing.T) {
	bin := writeScript(t, `echo "$@" > args.txt`)
	dir := t.TempDir()

	proc, err := ExecLauncher{Binary: bin}.Launch(LaunchSpec{Dir: dir, Input: InputFileName, Design: "designs/classic.yaml"})
	require.NoError(t, err)
	assert.Eventually(t, proc.Exited, 5*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, "render resume.yaml --design designs/classic.yaml --watch\n", string(data))
}

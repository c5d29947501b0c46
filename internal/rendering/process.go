package rendering

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// WatchLogName is the file that captures a watch process's output.
const WatchLogName = "rendercv_watch.log"

// TerminateOutcome describes how a termination attempt ended.
type TerminateOutcome int

const (
	// Terminated means the process exited within the bounded wait.
	Terminated TerminateOutcome = iota
	// TimedOut means the process did not exit in time and was killed.
	TimedOut
	// TerminateFailed means the termination signal could not be delivered.
	TerminateFailed
)

func (o TerminateOutcome) String() string {
	switch o {
	case Terminated:
		return "terminated"
	case TimedOut:
		return "timed_out"
	default:
		return "failed"
	}
}

// TerminateResult is the outcome of stopping a process. Callers may ignore it;
// the process is treated as stopped either way.
type TerminateResult struct {
	Outcome TerminateOutcome
	Err     error
}

// Process is a running watch process.
type Process interface {
	PID() int
	// Exited reports whether the process has exited. It never blocks.
	Exited() bool
	// Terminate asks the process to exit and waits until ctx is done.
	Terminate(ctx context.Context) TerminateResult
}

// LaunchSpec describes a watch process to start.
type LaunchSpec struct {
	Dir    string
	Input  string
	Design string
}

// Launcher starts watch processes.
type Launcher interface {
	Launch(spec LaunchSpec) (Process, error)
}

// ExecLauncher starts `rendercv render <input> --watch` as a child process.
type ExecLauncher struct {
	Binary string
}

// Launch starts the process detached from any request context; it lives until
// terminated.
func (l ExecLauncher) Launch(spec LaunchSpec) (Process, error) {
	bin := l.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	args := []string{"render", spec.Input}
	if spec.Design != "" {
		args = append(args, "--design", spec.Design)
	}
	args = append(args, "--watch")

	logFile, err := os.OpenFile(filepath.Join(spec.Dir, WatchLogName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(bin, args...)
	cmd.Dir = spec.Dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return nil, err
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.waitErr = cmd.Wait()
		_ = logFile.Close()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *execProcess) Terminate(ctx context.Context) TerminateResult {
	if p.Exited() {
		return TerminateResult{Outcome: Terminated}
	}
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return TerminateResult{Outcome: Terminated}
		}
		return TerminateResult{Outcome: TerminateFailed, Err: err}
	}

	select {
	case <-p.done:
		return TerminateResult{Outcome: Terminated}
	case <-ctx.Done():
		_ = p.cmd.Process.Kill()
		return TerminateResult{Outcome: TimedOut, Err: ctx.Err()}
	}
}

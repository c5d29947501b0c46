package rendering

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultTerminateTimeout bounds the wait for a watch process to exit.
const DefaultTerminateTimeout = 5 * time.Second

// SupervisorConfig configures a Supervisor.
type SupervisorConfig struct {
	// BaseDir holds one working directory per session key.
	BaseDir string
	// DesignsDir is copied into each working directory when set.
	DesignsDir string
	// Design is the design name passed as designs/<Design>.yaml.
	Design           string
	TerminateTimeout time.Duration
}

// StartResult describes a started watch process.
type StartResult struct {
	PID       int    `json:"processId"`
	OutputDir string `json:"outputDir"`
}

// StopOutcome describes what Stop did.
type StopOutcome int

const (
	NothingToStop StopOutcome = iota
	Stopped
)

// StopResult is the outcome of Stop.
type StopResult struct {
	Outcome   StopOutcome
	Terminate TerminateResult
}

// Status is a point-in-time view of a session.
type Status struct {
	Active    bool   `json:"active"`
	PID       *int   `json:"processId"`
	OutputDir string `json:"outputDir"`
}

// Supervisor owns the watch processes of every session in its registry.
type Supervisor struct {
	registry *Registry
	launcher Launcher
	cfg      SupervisorConfig
	logger   *slog.Logger
}

// NewSupervisor creates a supervisor over reg.
func NewSupervisor(reg *Registry, launcher Launcher, cfg SupervisorConfig) *Supervisor {
	if cfg.BaseDir == "" {
		cfg.BaseDir = os.TempDir()
	}
	if cfg.TerminateTimeout <= 0 {
		cfg.TerminateTimeout = DefaultTerminateTimeout
	}
	return &Supervisor{
		registry: reg,
		launcher: launcher,
		cfg:      cfg,
		logger:   slog.With("component", "watch_supervisor"),
	}
}

// Dir returns the working directory of a session.
func (s *Supervisor) Dir(key SessionKey) string {
	return filepath.Join(s.cfg.BaseDir, string(key))
}

// OutputDir returns where the session's PDFs are written.
func (s *Supervisor) OutputDir(key SessionKey) string {
	return filepath.Join(s.Dir(key), OutputDirName)
}

// InputPath returns the session's RenderCV input file.
func (s *Supervisor) InputPath(key SessionKey) string {
	return filepath.Join(s.Dir(key), InputFileName)
}

// Start writes content and starts a watch process for key, replacing any
// process already running for it.
func (s *Supervisor) Start(ctx context.Context, key SessionKey, content string) (StartResult, error) {
	sess := s.registry.Session(key)
	sess.op.Lock()
	defer sess.op.Unlock()

	if proc, _ := sess.snapshot(); proc != nil {
		sess.setState(StateStopping)
		res := s.terminate(ctx, proc)
		s.logger.Info("replaced watch process", "key", key, "pid", proc.PID(), "outcome", res.Outcome.String())
		sess.clear()
	}

	sess.setState(StateStarting)
	dir := s.Dir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		sess.clear()
		return StartResult{}, &WorkspaceError{Path: dir, Cause: err}
	}

	design := ""
	if s.cfg.DesignsDir != "" {
		if err := copyDir(s.cfg.DesignsDir, filepath.Join(dir, DesignsDirName)); err != nil {
			s.logger.Warn("failed to copy designs", "key", key, "error", err)
		} else {
			design = DesignArg(dir, s.cfg.Design)
		}
	}

	if err := os.WriteFile(s.InputPath(key), []byte(content), 0o644); err != nil {
		sess.clear()
		return StartResult{}, &WorkspaceError{Path: s.InputPath(key), Cause: err}
	}

	proc, err := s.launcher.Launch(LaunchSpec{Dir: dir, Input: InputFileName, Design: design})
	if err != nil {
		sess.clear()
		return StartResult{}, &SpawnError{Key: key, Message: "failed to start watch process", Cause: err}
	}
	sess.register(proc, content)

	s.logger.Info("watch process started", "key", key, "pid", proc.PID(), "dir", dir)
	return StartResult{PID: proc.PID(), OutputDir: s.OutputDir(key)}, nil
}

// Stop terminates the process for key, if any.
func (s *Supervisor) Stop(ctx context.Context, key SessionKey) StopResult {
	sess, ok := s.registry.Lookup(key)
	if !ok {
		return StopResult{Outcome: NothingToStop}
	}
	sess.op.Lock()
	defer sess.op.Unlock()

	proc, _ := sess.snapshot()
	if proc == nil {
		return StopResult{Outcome: NothingToStop}
	}

	sess.setState(StateStopping)
	res := s.terminate(ctx, proc)
	sess.clear()

	if res.Outcome != Terminated {
		s.logger.Warn("watch process did not stop cleanly", "key", key, "pid", proc.PID(), "outcome", res.Outcome.String(), "error", res.Err)
	} else {
		s.logger.Info("watch process stopped", "key", key, "pid", proc.PID())
	}
	return StopResult{Outcome: Stopped, Terminate: res}
}

// Update rewrites the session's input file. A running process picks the
// change up on its own; the process itself is never touched.
func (s *Supervisor) Update(key SessionKey, content string) error {
	dir := s.Dir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WorkspaceError{Path: dir, Cause: err}
	}
	path := s.InputPath(key)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &WorkspaceError{Path: path, Cause: err}
	}
	if sess, ok := s.registry.Lookup(key); ok {
		sess.setContent(content)
	}
	return nil
}

// Status reports whether a live process is registered for key. It never
// blocks on process operations; an exited process is deregistered here.
func (s *Supervisor) Status(key SessionKey) Status {
	st := Status{OutputDir: s.OutputDir(key)}
	sess, ok := s.registry.Lookup(key)
	if !ok {
		return st
	}
	proc, _ := sess.snapshot()
	if proc == nil {
		return st
	}
	if proc.Exited() {
		sess.clearIf(proc)
		return st
	}
	pid := proc.PID()
	st.Active = true
	st.PID = &pid
	return st
}

// StopAll stops every registered session concurrently.
func (s *Supervisor) StopAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, key := range s.registry.Keys() {
		wg.Add(1)
		go func(key SessionKey) {
			defer wg.Done()
			s.Stop(ctx, key)
		}(key)
	}
	wg.Wait()
}

// terminate stops proc within the configured timeout. The request context
// only contributes its values; a cancelled client must not leave a process
// half-stopped.
func (s *Supervisor) terminate(ctx context.Context, proc Process) TerminateResult {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.TerminateTimeout)
	defer cancel()
	return proc.Terminate(ctx)
}

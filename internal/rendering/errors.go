// Package rendering runs the RenderCV command line tool, both as a one-shot
// renderer and as a supervised long-running watch process.
package rendering

import "fmt"

// RenderError represents a failed one-shot render.
type RenderError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// SpawnError is returned when a watch process could not be started.
// Nothing is registered for the session when it occurs.
type SpawnError struct {
	Key     SessionKey
	Message string
	Cause   error
}

func (e *SpawnError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("spawn error (%s): %s: %v", e.Key, e.Message, e.Cause)
	}
	return fmt.Sprintf("spawn error (%s): %s", e.Key, e.Message)
}

func (e *SpawnError) Unwrap() error {
	return e.Cause
}

// WorkspaceError represents a failure preparing the session directory or input file.
type WorkspaceError struct {
	Path  string
	Cause error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace error: %s: %v", e.Path, e.Cause)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Cause
}

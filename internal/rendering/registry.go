package rendering

import (
	"sort"
	"sync"
)

// SessionKey identifies a watch session.
type SessionKey string

// DefaultSessionKey is the single session used by the HTTP API. All clients
// share it, so one client's start replaces another's process.
const DefaultSessionKey SessionKey = "resumecv_temp"

// State is the lifecycle state of a session.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Session holds the watch process of one key.
//
// op serializes start, stop and teardown for the key and is held across
// spawn and terminate. mu guards the handle fields and is only held briefly,
// so status reads never wait on a slow termination.
type Session struct {
	key SessionKey
	op  sync.Mutex

	mu          sync.Mutex
	state       State
	proc        Process
	lastContent string
}

func (s *Session) snapshot() (Process, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc, s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) register(proc Process, content string) {
	s.mu.Lock()
	s.proc = proc
	s.state = StateRunning
	s.lastContent = content
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.mu.Lock()
	s.proc = nil
	s.state = StateStopped
	s.mu.Unlock()
}

func (s *Session) setContent(content string) {
	s.mu.Lock()
	s.lastContent = content
	s.mu.Unlock()
}

// State returns the session state. A registered process that has exited is
// reported as stopped.
func (s *Session) State() State {
	proc, state := s.snapshot()
	if state == StateRunning && proc != nil && proc.Exited() {
		return StateStopped
	}
	return state
}

// LastContent returns the last YAML written for the session.
func (s *Session) LastContent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastContent
}

// Registry maps session keys to sessions. The server owns one and tears it
// down with Supervisor.StopAll on shutdown.
type Registry struct {
	mu       sync.Mutex
	sessions map[SessionKey]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[SessionKey]*Session)}
}

// Session returns the session for key, creating it if needed.
func (r *Registry) Session(key SessionKey) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		s = &Session{key: key}
		r.sessions[key] = s
	}
	return s
}

// Lookup returns the session for key without creating it.
func (r *Registry) Lookup(key SessionKey) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []SessionKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]SessionKey, 0, len(r.sessions))
	for k := range r.sessions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// clearIf deregisters proc if it is still the session's process.
func (s *Session) clearIf(proc Process) {
	s.mu.Lock()
	if s.proc == proc {
		s.proc = nil
		s.state = StateStopped
	}
	s.mu.Unlock()
}

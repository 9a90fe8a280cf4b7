package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/fmash16/riscv-emulator/debugger"
	"github.com/fmash16/riscv-emulator/dram"
	"github.com/fmash16/riscv-emulator/machine"
)

var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists is returned when trying to create a session with an existing ID.
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// SessionState is the lifecycle state of a session's machine.
type SessionState string

const (
	StateReady   SessionState = "ready"
	StateRunning SessionState = "running"
	StateHalted  SessionState = "halted"
	StateError   SessionState = "error"
)

// Session pairs one machine with the debugger that drives it and the
// lifecycle state the API reports over REST and WebSocket.
type Session struct {
	ID        string
	Machine   *machine.Machine
	Debugger  *debugger.Debugger
	CreatedAt time.Time

	mu        sync.Mutex
	state     SessionState
	lastError string
}

func newSession(id string, dramSize uint64) *Session {
	m := machine.New(dramSize)
	return &Session{
		ID:        id,
		Machine:   m,
		Debugger:  debugger.NewDebugger(m),
		CreatedAt: time.Now(),
		state:     StateReady,
	}
}

// SetState atomically updates the session's reported lifecycle state.
func (s *Session) SetState(state SessionState, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.lastError = errMsg
}

// State returns the session's current lifecycle state and last error, if any.
func (s *Session) State() (SessionState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastError
}

// SessionManager manages the set of active emulator sessions.
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	mu          sync.RWMutex
}

// NewSessionManager creates a new session manager backed by broadcaster for
// event fan-out (may be nil in tests that don't exercise WebSocket events).
func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
	}
}

// CreateSession allocates a Machine sized per dramSize, loads image into it,
// and registers the session under a freshly generated ID.
func (sm *SessionManager) CreateSession(image []byte, dramSize uint64) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	if dramSize == 0 {
		dramSize = dram.Size
	}

	session := newSession(id, dramSize)
	if err := session.Machine.LoadImage(image); err != nil {
		return nil, err
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[id]; exists {
		return nil, ErrSessionAlreadyExists
	}
	sm.sessions[id] = session
	debugLog("session %s: created, %d byte image loaded", id, len(image))
	return session, nil
}

// GetSession retrieves a session by ID.
func (sm *SessionManager) GetSession(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// DestroySession removes a session by ID.
func (sm *SessionManager) DestroySession(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(sm.sessions, id)
	debugLog("session %s: destroyed", id)
	return nil
}

// ListSessions returns every active session ID.
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

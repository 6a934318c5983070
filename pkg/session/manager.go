// Package session implements the Session Registry: it maps session id to
// a live SessionHandle, enforces a concurrent-session cap, and supports
// cancellation and listing. Adapted directly from a
// pkg/session/manager.go map+RWMutex shape.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/orchestratord/pkg/apperr"
)

// Manager is the Session Registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Handle
	maxLive  int
}

// NewManager creates an empty Session Registry capped at maxLiveSessions
// concurrently non-terminal sessions (default 32).
func NewManager(maxLiveSessions int) *Manager {
	if maxLiveSessions < 1 {
		maxLiveSessions = 32
	}
	return &Manager{
		sessions: make(map[string]*Handle),
		maxLive:  maxLiveSessions,
	}
}

// Create allocates a fresh session id and Handle, or returns a busy
// ClassifiedError if the live-session cap has been reached.
func (m *Manager) Create(campaignID, userMessage string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.liveCountLocked() >= m.maxLive {
		return nil, apperr.New(apperr.ClassBusy, "", fmt.Sprintf("max concurrent sessions (%d) reached", m.maxLive))
	}

	id := uuid.New().String()
	h := NewHandle(id, campaignID, userMessage)
	m.sessions[id] = h
	return h, nil
}

// Get returns the live Handle for id, or false if unknown.
func (m *Manager) Get(id string) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.sessions[id]
	return h, ok
}

// Cancel cancels the named session's in-flight work, if any.
func (m *Manager) Cancel(id string) bool {
	h, ok := m.Get(id)
	if !ok {
		return false
	}
	return h.Cancel()
}

// Delete removes a session from the registry, freeing its slot in the
// live-session cap. It removes the session whatever its phase and does not
// check for Event Bus subscribers; the Engine calls it when RunSession
// returns.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// CancelAll cancels every currently live session, part of the teardown
// ordering: cancel all sessions, drain the Bus, then close the Store.
func (m *Manager) CancelAll() {
	m.mu.RLock()
	handles := make([]*Handle, 0, len(m.sessions))
	for _, h := range m.sessions {
		handles = append(handles, h)
	}
	m.mu.RUnlock()

	for _, h := range handles {
		h.Cancel()
	}
}

// List returns a snapshot of every session, optionally filtered to
// non-terminal ones only.
func (m *Manager) List(activeOnly bool) []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.sessions))
	for _, h := range m.sessions {
		if activeOnly && h.IsTerminal() {
			continue
		}
		out = append(out, h.Snapshot())
	}
	return out
}

// liveCountLocked counts non-terminal sessions. Caller must hold m.mu.
func (m *Manager) liveCountLocked() int {
	n := 0
	for _, h := range m.sessions {
		if !h.IsTerminal() {
			n++
		}
	}
	return n
}

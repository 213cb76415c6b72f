package models

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore maps a page session to the most recent run started from it.
// Pressing the button again replaces the pointer, which clears the shown log.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]string
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]string)}
}

// New registers a fresh session and returns its ID.
func (s *SessionStore) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.sessions[id] = ""
	return id
}

// Exists reports whether the session ID was issued by this store.
func (s *SessionStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// SetLatestRun points the session at a run.
func (s *SessionStore) SetLatestRun(sessionID, runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = runID
}

// LatestRun returns the run ID last recorded for the session, or "".
func (s *SessionStore) LatestRun(sessionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}

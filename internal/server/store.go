package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/oplab/lab400/internal/screen"
)

// SessionStore owns every live session. It is shared across connection
// goroutines and guarded here; the sessions themselves are each owned
// by a single connection and need no locking.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*screen.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*screen.Session{}}
}

// Create registers a fresh session under a new ID.
func (s *SessionStore) Create() *screen.Session {
	sess := screen.NewSession(uuid.NewString())
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

func (s *SessionStore) Get(id string) *screen.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

package document

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrAlreadyOpen = errors.New("document already open")
	ErrNotOpen     = errors.New("document not open")
)

// Manager tracks the open sessions of a host, keyed by URI.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Open registers a new session.
func (m *Manager) Open(uri string, version int32, text string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[uri]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOpen, uri)
	}
	s := NewSession(uri, version, text)
	m.sessions[uri] = s
	return s, nil
}

// OpenOrReplace opens uri at version 1, or replaces the text of the open
// session under its next version. created reports which one happened.
func (m *Manager) OpenOrReplace(uri, text string) (s *Session, created bool) {
	m.mu.Lock()
	s, exists := m.sessions[uri]
	if !exists {
		s = NewSession(uri, 1, text)
		m.sessions[uri] = s
	}
	m.mu.Unlock()

	if exists {
		s.ReplaceNext(text)
	}
	return s, !exists
}

func (m *Manager) Get(uri string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[uri]
	return s, ok
}

// Close removes a session and drops its subscriptions.
func (m *Manager) Close(uri string) error {
	m.mu.Lock()
	s, exists := m.sessions[uri]
	delete(m.sessions, uri)
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNotOpen, uri)
	}
	s.close()
	return nil
}

// Sessions returns the open sessions ordered by URI.
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].uri < out[j].uri })
	return out
}

// Len is the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// InvalidateAll asks every open session to recompute, not just the one in
// focus.
func (m *Manager) InvalidateAll() {
	for _, s := range m.Sessions() {
		s.Invalidate()
	}
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

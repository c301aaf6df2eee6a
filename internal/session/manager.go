package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Manager keeps the live sessions and expires idle ones.
type Manager struct {
	backend Backend
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a registry whose sessions expire after ttl without use.
func NewManager(b Backend, ttl time.Duration) *Manager {
	return &Manager{backend: b, ttl: ttl, sessions: make(map[string]*Session)}
}

// Create starts a session and loads its project list. The session is
// returned even when the project list fails to load.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := New(uuid.NewString(), m.backend)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Debug().Str("session", s.ID).Msg("session created")
	return s, s.LoadProjects(ctx)
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.expired(s, time.Now()) {
		delete(m.sessions, id)
		return nil, false
	}
	return s, true
}

// Len is the number of sessions held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle longer than the ttl and returns how many were dropped.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				log.Info().Int("expired", n).Msg("expired idle sessions")
			}
		}
	}
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.LastUsed()) > m.ttl
}

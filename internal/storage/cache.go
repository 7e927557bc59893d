// cache.go - In-memory session store with TTL, used when MongoDB is not configured

package storage

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/internal/order"
	"github.com/go-co-op/gocron"
)

// MemoryStore keeps sessions in a map. Expired sessions are invisible to Get
// and removed by Sweep.
type MemoryStore struct {
	sessions map[string]*Session
	ttl      time.Duration
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryStore creates a store whose sessions live for ttl (zero keeps them forever)
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) expired(s *Session) bool {
	return m.ttl > 0 && m.now().Sub(s.CreatedAt) >= m.ttl
}

// Save stores a copy of s, stamping CreatedAt when unset
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}

	cp := *s
	m.mu.Lock()
	m.sessions[s.ID] = &cp
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the session
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, exists := m.sessions[id]
	m.mu.RUnlock()

	if !exists || m.expired(s) {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

// SaveOrder attaches the edited order to a session
func (m *MemoryStore) SaveOrder(_ context.Context, id string, lines []order.Line, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[id]
	if !exists || m.expired(s) {
		return ErrSessionNotFound
	}
	s.OrderLines = append([]order.Line(nil), lines...)
	s.OrderMessage = message
	return nil
}

// Sweep deletes expired sessions and returns how many were removed
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close is a no-op for the in-memory store
func (m *MemoryStore) Close(context.Context) error {
	return nil
}

// StartSweeper schedules Sweep every interval. Stop the returned scheduler on shutdown.
func StartSweeper(m *MemoryStore, interval time.Duration) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.Local)
	_, err := s.Every(interval).Do(func() {
		if n := m.Sweep(); n > 0 {
			log.Printf("🧹 Removed %d expired session(s)", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	s.StartAsync()
	return s, nil
}

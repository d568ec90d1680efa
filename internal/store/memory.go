package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"cardlens/internal/models"
)

// Memory is the default store: per-session buffers that expire after the
// session TTL so an abandoned browser tab does not pin uploads forever.
type Memory struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*sessionData

	stopSweep    chan struct{}
	shutdownOnce sync.Once
}

type sessionData struct {
	statements []models.Statement
	lastAccess time.Time
}

// NewMemory creates a memory store whose sessions expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	m := &Memory{
		ttl:       ttl,
		sessions:  make(map[string]*sessionData),
		stopSweep: make(chan struct{}),
	}
	go m.startSweep()
	return m
}

func (m *Memory) startSweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweepExpired()
		case <-m.stopSweep:
			return
		}
	}
}

func (m *Memory) sweepExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.ttl)
	for id, s := range m.sessions {
		if s.lastAccess.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

func (m *Memory) session(sessionID string) *sessionData {
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &sessionData{}
		m.sessions[sessionID] = s
	}
	s.lastAccess = time.Now()
	return s
}

func (m *Memory) AddStatement(ctx context.Context, sessionID string, st models.Statement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(sessionID)
	s.statements = append(s.statements, st)
	return nil
}

func (m *Memory) Statements(ctx context.Context, sessionID string) ([]models.Statement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(sessionID)
	out := make([]models.Statement, len(s.statements))
	copy(out, s.statements)
	return out, nil
}

func (m *Memory) Transactions(ctx context.Context, sessionID string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(sessionID)
	var txns []models.Transaction
	for _, st := range s.statements {
		txns = append(txns, st.Transactions...)
	}
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	return txns, nil
}

func (m *Memory) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}

func (m *Memory) Close() error {
	m.shutdownOnce.Do(func() {
		close(m.stopSweep)
	})
	return nil
}

package repository

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"smartcampus/portal/internal/models"
)

// MemorySessionStore keeps sessions in process memory. It backs the gateway
// when no postgres DSN is configured; sessions do not survive a restart.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	// seq orders sessions by write so equal LastSeenAt values sort newest first.
	seq  map[string]uint64
	next uint64
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.Session),
		seq:      make(map[string]uint64),
	}
}

func (m *MemorySessionStore) Create(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == session.UserID && s.DeviceID == session.DeviceID {
			if session.CreatedAt.IsZero() {
				session.CreatedAt = s.CreatedAt
			}
			m.dropLocked(id)
		}
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastSeenAt.IsZero() {
		session.LastSeenAt = now
	}
	m.next++
	m.sessions[session.ID] = session
	m.seq[session.ID] = m.next
	return nil
}

func (m *MemorySessionStore) dropLocked(id string) {
	delete(m.sessions, id)
	delete(m.seq, id)
}

func (m *MemorySessionStore) GetByID(_ context.Context, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemorySessionStore) FindByRefreshHash(_ context.Context, userID int, refreshHash []byte) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && bytes.Equal(s.RefreshTokenHash, refreshHash) {
			return s, nil
		}
	}
	return models.Session{}, ErrSessionNotFound
}

func (m *MemorySessionStore) ListByUser(_ context.Context, userID int) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(userID), nil
}

func (m *MemorySessionStore) listLocked(userID int) []models.Session {
	var out []models.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeenAt.Equal(out[j].LastSeenAt) {
			return out[i].LastSeenAt.After(out[j].LastSeenAt)
		}
		return m.seq[out[i].ID] > m.seq[out[j].ID]
	})
	return out
}

func (m *MemorySessionStore) CountByUser(_ context.Context, userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listLocked(userID)), nil
}

func (m *MemorySessionStore) DeleteOldestSessions(_ context.Context, userID int, keepLatest int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.listLocked(userID) {
		if i >= keepLatest {
			m.dropLocked(s.ID)
		}
	}
	return nil
}

func (m *MemorySessionStore) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	m.dropLocked(id)
	return nil
}

func (m *MemorySessionStore) DeleteByDevice(_ context.Context, userID int, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID && s.DeviceID == deviceID {
			m.dropLocked(id)
		}
	}
	return nil
}

func (m *MemorySessionStore) Touch(_ context.Context, sessionID string, ip string, userAgent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	s.LastSeenAt = time.Now()
	if ip != "" {
		s.IPAddress = ip
	}
	if userAgent != "" {
		s.UserAgent = userAgent
	}
	m.sessions[sessionID] = s
	return nil
}

func (m *MemorySessionStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(before) {
			m.dropLocked(id)
			n++
		}
	}
	return n, nil
}

package session

import (
	"context"
	"sort"
	"sync"
)

// Memory is a mutex-guarded in-memory store. It backs tests and the
// STORE_BACKEND=memory mode; unlike a global slice it has an explicit
// lifecycle and survives nothing.
type Memory struct {
	mu        sync.RWMutex
	sessions  map[string]Session
	attendees map[string]Attendee
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions:  make(map[string]Session),
		attendees: make(map[string]Attendee),
	}
}

func (m *Memory) ListSessions(ctx context.Context) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) InsertSession(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *Memory) UpdateSession(ctx context.Context, id string, upd SessionUpdate) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	if upd.Title != nil {
		s.Title = *upd.Title
	}
	if upd.ExpiresAt != nil {
		s.ExpiresAt = *upd.ExpiresAt
	}
	m.sessions[id] = s
	return &s, nil
}

func (m *Memory) DeleteSession(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false, nil
	}
	// Attendees and the session go in the same critical section, so no
	// reader ever observes attendees for a deleted session.
	for aid, a := range m.attendees {
		if a.SessionID == id {
			delete(m.attendees, aid)
		}
	}
	delete(m.sessions, id)
	return true, nil
}

func (m *Memory) InsertAttendee(ctx context.Context, a Attendee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[a.SessionID]; !ok {
		return ErrSessionNotFound
	}
	m.attendees[a.ID] = a
	return nil
}

func (m *Memory) ListAttendees(ctx context.Context, sessionID string) ([]Attendee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Attendee
	for _, a := range m.attendees {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ArrivalTime.Equal(out[j].ArrivalTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].ArrivalTime.Before(out[j].ArrivalTime)
	})
	return out, nil
}

func (m *Memory) DeleteAttendee(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attendees[id]; !ok {
		return false, nil
	}
	delete(m.attendees, id)
	return true, nil
}

func (m *Memory) DeleteOrphans(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, a := range m.attendees {
		if _, ok := m.sessions[a.SessionID]; !ok {
			delete(m.attendees, id)
			n++
		}
	}
	return n, nil
}

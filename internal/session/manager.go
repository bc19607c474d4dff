package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Manager owns the session lifecycle: create, edit, list, delete with
// attendee cascade. It is the only writer of session records.
type Manager struct {
	store Store
	cache Cache // optional, may be nil
}

// NewManager creates a manager over the given store. cache may be nil.
func NewManager(store Store, cache Cache) *Manager {
	return &Manager{store: store, cache: cache}
}

// List returns all sessions, most recently created first.
func (m *Manager) List(ctx context.Context) ([]Session, error) {
	out, err := m.store.ListSessions(ctx)
	if err != nil {
		return nil, storageErr("list sessions", err)
	}
	return out, nil
}

// Get resolves a session by id. Absence is not an error: it returns
// (nil, nil) so callers can distinguish "no such session" from a store
// failure.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if m.cache != nil {
		if s, ok := m.cache.GetSession(ctx, id); ok {
			return s, nil
		}
	}
	s, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, storageErr("get session", err)
	}
	if s != nil && m.cache != nil {
		m.cache.SetSession(ctx, *s)
	}
	return s, nil
}

// Create validates and persists a new session. The expiry may already be in
// the past; that simply creates a session that is closed from the start.
func (m *Manager) Create(ctx context.Context, title string, expiresAt time.Time) (Session, error) {
	ve := &ValidationError{}
	title, ok := validateTitle(title)
	if !ok {
		ve.Add("title", "title must be at least 3 characters")
	}
	if expiresAt.IsZero() {
		ve.Add("expires_at", "expiry date is required")
	}
	if err := ve.Err(); err != nil {
		return Session{}, err
	}

	s := Session{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	if err := m.store.InsertSession(ctx, s); err != nil {
		return Session{}, storageErr("insert session", err)
	}
	return s, nil
}

// Update applies a partial edit. Supplied fields are validated with the same
// rules as Create; id and creation time are never touched. Moving the expiry
// into the past closes the session for submissions immediately.
func (m *Manager) Update(ctx context.Context, id string, upd SessionUpdate) (Session, error) {
	ve := &ValidationError{}
	if upd.Title != nil {
		title, ok := validateTitle(*upd.Title)
		if !ok {
			ve.Add("title", "title must be at least 3 characters")
		}
		upd.Title = &title
	}
	if upd.ExpiresAt != nil {
		if upd.ExpiresAt.IsZero() {
			ve.Add("expires_at", "expiry date is required")
		} else {
			t := upd.ExpiresAt.UTC()
			upd.ExpiresAt = &t
		}
	}
	if err := ve.Err(); err != nil {
		return Session{}, err
	}

	s, err := m.store.UpdateSession(ctx, id, upd)
	if err != nil {
		return Session{}, storageErr("update session", err)
	}
	if s == nil {
		return Session{}, ErrNotFound
	}
	if m.cache != nil {
		m.cache.Invalidate(ctx, id)
	}
	return *s, nil
}

// Delete removes a session together with every attendee that references it.
// The store performs both as one logical unit, so observers never see
// attendees pointing at a deleted session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	found, err := m.store.DeleteSession(ctx, id)
	if err != nil {
		return storageErr("delete session", err)
	}
	if !found {
		return ErrNotFound
	}
	if m.cache != nil {
		m.cache.Invalidate(ctx, id)
	}
	return nil
}

// Attendees returns the recorded submissions for one session, earliest
// arrival first. Consumed by the review table and the exporters.
func (m *Manager) Attendees(ctx context.Context, sessionID string) ([]Attendee, error) {
	out, err := m.store.ListAttendees(ctx, sessionID)
	if err != nil {
		return nil, storageErr("list attendees", err)
	}
	return out, nil
}

package session

import "context"

// Store is the persistence contract shared by the Postgres repository and the
// in-memory backend. Implementations return raw errors; the manager and gate
// wrap them into the public taxonomy.
type Store interface {
	// ListSessions returns all sessions, most recently created first.
	ListSessions(ctx context.Context) ([]Session, error)
	// GetSession returns nil (and no error) when the id does not resolve.
	GetSession(ctx context.Context, id string) (*Session, error)
	InsertSession(ctx context.Context, s Session) error
	// UpdateSession applies the non-nil fields and returns the merged record,
	// or nil when the id does not resolve.
	UpdateSession(ctx context.Context, id string, upd SessionUpdate) (*Session, error)
	// DeleteSession removes the session and every attendee referencing it as
	// one logical unit. It reports whether the session existed.
	DeleteSession(ctx context.Context, id string) (bool, error)

	// InsertAttendee persists a record, re-checking that the referenced
	// session still exists; it returns ErrSessionNotFound when it does not.
	InsertAttendee(ctx context.Context, a Attendee) error
	ListAttendees(ctx context.Context, sessionID string) ([]Attendee, error)
	// DeleteAttendee reports whether the attendee existed.
	DeleteAttendee(ctx context.Context, id string) (bool, error)
	// DeleteOrphans removes attendees whose session no longer exists and
	// returns how many were swept. Used by the cleanup worker.
	DeleteOrphans(ctx context.Context) (int64, error)
}

// Cache is an optional read-through cache for session records on the hot
// submission path. Implementations must tolerate being nil-checked by
// callers; a miss is (nil, false).
type Cache interface {
	GetSession(ctx context.Context, id string) (*Session, bool)
	SetSession(ctx context.Context, s Session)
	Invalidate(ctx context.Context, id string)
}

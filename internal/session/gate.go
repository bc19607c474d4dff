package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Gate admits attendance submissions. A submission is accepted only for an
// existing, unexpired session; everything else is rejected before any write
// happens.
type Gate struct {
	mgr   *Manager
	store Store
}

// NewGate creates a gate sharing the manager's store.
func NewGate(mgr *Manager, store Store) *Gate {
	return &Gate{mgr: mgr, store: store}
}

// Submit validates and records one attendance submission.
//
// The checks run in a fixed order: session resolution, then the expiry gate,
// then field validation. A closed session never leaks field errors. Steps
// before the insert perform no writes, so a rejected submission leaves no
// partial record. Arrival time comes from the server clock; whatever the
// client claims about it is ignored.
func (g *Gate) Submit(ctx context.Context, sessionID string, sub Submission) (Attendee, error) {
	s, err := g.mgr.Get(ctx, sessionID)
	if err != nil {
		return Attendee{}, err
	}
	if s == nil {
		return Attendee{}, ErrSessionNotFound
	}
	if s.Expired(time.Now()) {
		return Attendee{}, ErrSessionExpired
	}
	if err := sub.validate().Err(); err != nil {
		return Attendee{}, err
	}

	a := Attendee{
		ID:          uuid.NewString(),
		SessionID:   s.ID,
		Name:        sub.Name,
		Department:  sub.Department,
		StudentID:   sub.StudentID,
		Signature:   sub.Signature,
		ArrivalTime: time.Now().UTC(),
	}
	// The session may have been deleted between the expiry check and here;
	// the store re-checks existence as part of the insert.
	if err := g.store.InsertAttendee(ctx, a); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Attendee{}, ErrSessionNotFound
		}
		return Attendee{}, storageErr("insert attendee", err)
	}
	return a, nil
}

// RemoveAttendee deletes one submission by id. Attendees have no dependents,
// so there is nothing to cascade.
func (g *Gate) RemoveAttendee(ctx context.Context, id string) error {
	found, err := g.store.DeleteAttendee(ctx, id)
	if err != nil {
		return storageErr("delete attendee", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newGateFixture(t *testing.T) (*Manager, *Gate, *Memory) {
	t.Helper()
	mem := NewMemory()
	mgr := NewManager(mem, nil)
	return mgr, NewGate(mgr, mem), mem
}

func validSubmission() Submission {
	return Submission{
		Name:       "Ana Putri",
		Department: "IT",
		StudentID:  "12345",
		Signature:  "data:image/png;base64,iVBORw0KGgo=",
	}
}

func TestSubmitSuccess(t *testing.T) {
	ctx := context.Background()
	mgr, gate, _ := newGateFixture(t)

	s, err := mgr.Create(ctx, "Weekly Sync", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	a, err := gate.Submit(ctx, s.ID, validSubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected assigned attendee id")
	}
	if a.SessionID != s.ID {
		t.Fatalf("attendee bound to %q, want %q", a.SessionID, s.ID)
	}
	if d := time.Since(a.ArrivalTime); d < 0 || d > 5*time.Second {
		t.Fatalf("arrival time not near now: %s", a.ArrivalTime)
	}

	got, err := mgr.Attendees(ctx, s.ID)
	if err != nil {
		t.Fatalf("attendees: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 attendee, got %d", len(got))
	}
}

func TestSubmitToExpiredSession(t *testing.T) {
	ctx := context.Background()
	mgr, gate, _ := newGateFixture(t)

	s, err := mgr.Create(ctx, "Already Over", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := gate.Submit(ctx, s.ID, validSubmission()); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if got, _ := mgr.Attendees(ctx, s.ID); len(got) != 0 {
		t.Fatalf("rejected submission must not write, got %d attendee(s)", len(got))
	}
}

func TestSubmitToUnknownSession(t *testing.T) {
	_, gate, _ := newGateFixture(t)
	if _, err := gate.Submit(context.Background(), "never-existed", validSubmission()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSubmitExpiryCheckedBeforeValidation(t *testing.T) {
	ctx := context.Background()
	mgr, gate, _ := newGateFixture(t)

	s, _ := mgr.Create(ctx, "Already Over", time.Now().Add(-time.Hour))

	// Everything invalid, but the closed window must win so the submitter
	// is not encouraged to retry with fixed fields.
	_, err := gate.Submit(ctx, s.ID, Submission{})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired before validation, got %v", err)
	}
}

func TestSubmitFieldValidation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Submission)
		wantFields []string
	}{
		{"name of 2 rejected", func(s *Submission) { s.Name = "An" }, []string{"name"}},
		{"name of 3 accepted", func(s *Submission) { s.Name = "Ana" }, nil},
		{"department of 1 rejected", func(s *Submission) { s.Department = "I" }, []string{"department"}},
		{"department of 2 accepted", func(s *Submission) { s.Department = "IT" }, nil},
		{"student id of 2 rejected", func(s *Submission) { s.StudentID = "12" }, []string{"student_id"}},
		{"student id of 3 accepted", func(s *Submission) { s.StudentID = "123" }, nil},
		{"empty signature rejected", func(s *Submission) { s.Signature = "" }, []string{"signature"}},
		{"everything empty", func(s *Submission) { *s = Submission{} }, []string{"name", "department", "student_id", "signature"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			mgr, gate, _ := newGateFixture(t)
			s, _ := mgr.Create(ctx, "Weekly Sync", time.Now().Add(time.Hour))

			sub := validSubmission()
			tc.mutate(&sub)

			_, err := gate.Submit(ctx, s.ID, sub)
			if tc.wantFields == nil {
				if err != nil {
					t.Fatalf("expected acceptance, got %v", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(ve.Fields) != len(tc.wantFields) {
				t.Fatalf("expected %d field errors, got %v", len(tc.wantFields), ve.Fields)
			}
			for _, f := range tc.wantFields {
				if _, ok := ve.Fields[f]; !ok {
					t.Errorf("missing error for field %q in %v", f, ve.Fields)
				}
			}
			if got, _ := mgr.Attendees(ctx, s.ID); len(got) != 0 {
				t.Fatalf("rejected submission must not write, got %d attendee(s)", len(got))
			}
		})
	}
}

func TestSubmitTwiceCreatesTwoRecords(t *testing.T) {
	ctx := context.Background()
	mgr, gate, _ := newGateFixture(t)
	s, _ := mgr.Create(ctx, "Weekly Sync", time.Now().Add(time.Hour))

	first, err := gate.Submit(ctx, s.ID, validSubmission())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := gate.Submit(ctx, s.ID, validSubmission())
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("identical submissions must still produce distinct records")
	}
	if got, _ := mgr.Attendees(ctx, s.ID); len(got) != 2 {
		t.Fatalf("expected 2 attendees, got %d", len(got))
	}
}

func TestSubmitTargetsOnlyOneSession(t *testing.T) {
	ctx := context.Background()
	mgr, gate, _ := newGateFixture(t)
	a, _ := mgr.Create(ctx, "Session A", time.Now().Add(time.Hour))
	b, _ := mgr.Create(ctx, "Session B", time.Now().Add(time.Hour))

	if _, err := gate.Submit(ctx, a.ID, validSubmission()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got, _ := mgr.Attendees(ctx, a.ID); len(got) != 1 {
		t.Fatalf("A should have 1 attendee, got %d", len(got))
	}
	if got, _ := mgr.Attendees(ctx, b.ID); len(got) != 0 {
		t.Fatalf("B should have 0 attendees, got %d", len(got))
	}
}

func TestRemoveAttendee(t *testing.T) {
	ctx := context.Background()
	mgr, gate, _ := newGateFixture(t)
	s, _ := mgr.Create(ctx, "Weekly Sync", time.Now().Add(time.Hour))
	a, err := gate.Submit(ctx, s.ID, validSubmission())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := gate.RemoveAttendee(ctx, a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got, _ := mgr.Attendees(ctx, s.ID); len(got) != 0 {
		t.Fatalf("attendee should be gone, got %d", len(got))
	}
	if err := gate.RemoveAttendee(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove: expected ErrNotFound, got %v", err)
	}
}

// raceStore deletes the target session between the gate's expiry check and
// the insert, modeling an administrator delete landing mid-submission.
type raceStore struct {
	*Memory
	victim string
}

func (r *raceStore) InsertAttendee(ctx context.Context, a Attendee) error {
	if a.SessionID == r.victim {
		if _, err := r.Memory.DeleteSession(ctx, r.victim); err != nil {
			return err
		}
	}
	return r.Memory.InsertAttendee(ctx, a)
}

func TestSubmitRacingSessionDelete(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	rs := &raceStore{Memory: mem}
	mgr := NewManager(rs, nil)
	gate := NewGate(mgr, rs)

	s, _ := mgr.Create(ctx, "Doomed Session", time.Now().Add(time.Hour))
	rs.victim = s.ID

	if _, err := gate.Submit(ctx, s.ID, validSubmission()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound from the insert-time re-check, got %v", err)
	}
	if n, _ := mem.DeleteOrphans(ctx); n != 0 {
		t.Fatalf("no orphan may survive the rejected insert, swept %d", n)
	}
}

package session

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Session is a time-boxed attendance collection window. Attendees may submit
// until ExpiresAt passes; the administrator may move ExpiresAt at any time,
// including into the past, which closes the session immediately.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session's submission window is closed as of the
// given instant. The window is inclusive of ExpiresAt itself: a submission
// landing exactly at the deadline is still accepted. Every expiry decision in
// the system goes through this predicate.
func (s Session) Expired(asOf time.Time) bool {
	return asOf.After(s.ExpiresAt)
}

// SessionUpdate carries a partial edit of a session. Nil fields are left
// untouched; ID and CreatedAt are never editable.
type SessionUpdate struct {
	Title     *string    `json:"title"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Attendee is one recorded submission against a session.
type Attendee struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Name        string    `json:"name"`
	Department  string    `json:"department"`
	StudentID   string    `json:"student_id"`
	Signature   string    `json:"signature"` // opaque encoded image, e.g. a data URL or an upload URL
	ArrivalTime time.Time `json:"arrival_time"`
}

// Submission is the attendee-supplied part of an attendance form. It carries
// no arrival time: the server assigns one so submitters cannot backdate
// themselves.
type Submission struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	StudentID  string `json:"student_id"`
	Signature  string `json:"signature"`
}

const (
	minTitleLen      = 3
	minNameLen       = 3
	minDepartmentLen = 2
	minStudentIDLen  = 3
)

func validateTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	return title, utf8.RuneCountInString(title) >= minTitleLen
}

func (sub Submission) validate() *ValidationError {
	ve := &ValidationError{}
	if utf8.RuneCountInString(strings.TrimSpace(sub.Name)) < minNameLen {
		ve.Add("name", "name must be at least 3 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(sub.Department)) < minDepartmentLen {
		ve.Add("department", "department must be at least 2 characters")
	}
	if utf8.RuneCountInString(strings.TrimSpace(sub.StudentID)) < minStudentIDLen {
		ve.Add("student_id", "student id must be at least 3 characters")
	}
	if sub.Signature == "" {
		ve.Add("signature", "signature is required")
	}
	return ve
}

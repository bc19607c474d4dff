package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors returned by the manager and the submission gate. The two
// session errors are distinct so callers can count them separately, but both
// are terminal for the submitter and render the same user-facing message.
var (
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// TerminalMessage is the submitter-facing text for both session errors. A
// deleted session and a never-existing one are intentionally not
// distinguishable from the outside.
const TerminalMessage = "session invalid or ended"

// ValidationError carries one message per invalid field so the form can
// attribute errors to specific inputs.
type ValidationError struct {
	Fields map[string]string
}

// Add records a message for a field, keeping the first message if the field
// was already flagged.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns the error itself, or nil when no field was flagged.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// StorageError wraps a persistence failure. The underlying error is kept for
// operator logs; callers surface a generic message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

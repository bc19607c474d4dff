package session

import (
	"errors"
	"testing"
)

func TestValidationErrorErrNilWhenEmpty(t *testing.T) {
	ve := &ValidationError{}
	if err := ve.Err(); err != nil {
		t.Fatalf("empty ValidationError must yield nil, got %v", err)
	}
	ve.Add("name", "too short")
	if ve.Err() == nil {
		t.Fatal("flagged ValidationError must yield an error")
	}
}

func TestValidationErrorKeepsFirstMessage(t *testing.T) {
	ve := &ValidationError{}
	ve.Add("name", "first")
	ve.Add("name", "second")
	if ve.Fields["name"] != "first" {
		t.Fatalf("expected first message kept, got %q", ve.Fields["name"])
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := storageErr("insert attendee", cause)
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("StorageError must unwrap to its cause")
	}
	if storageErr("noop", nil) != nil {
		t.Fatal("nil cause must yield nil")
	}
}

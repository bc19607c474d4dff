package session

import "testing"

func TestAttendURL(t *testing.T) {
	tests := []struct {
		base string
		id   string
		want string
	}{
		{"http://localhost:8082", "abc", "http://localhost:8082/attend/abc"},
		{"https://hadir.example.com/", "abc", "https://hadir.example.com/attend/abc"},
	}
	for _, tc := range tests {
		if got := AttendURL(tc.base, tc.id); got != tc.want {
			t.Errorf("AttendURL(%q, %q) = %q, want %q", tc.base, tc.id, got, tc.want)
		}
	}
}

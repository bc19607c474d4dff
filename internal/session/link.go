package session

import "strings"

// AttendURL builds the shareable submission link for a session. The QR
// renderer encodes exactly this URL.
func AttendURL(baseURL, sessionID string) string {
	return strings.TrimRight(baseURL, "/") + "/attend/" + sessionID
}

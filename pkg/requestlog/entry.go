package requestlog

import "time"

// Entry is one handled request.
type Entry struct {
	// ID is assigned by the store when empty.
	ID        string    `json:"id"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Method      string `json:"method"`
	Path        string `json:"path"`
	QueryString string `json:"queryString,omitempty"`
	RemoteAddr  string `json:"remoteAddr,omitempty"`

	// Outcome is how the request was handled (intercepted, passthrough,
	// bypassed, rejected, control).
	Outcome string `json:"outcome"`
	// Route is the name of the matched mock route, if any.
	Route string `json:"route,omitempty"`

	Status     int   `json:"status"`
	DurationMs int64 `json:"durationMs"`
}

package domain

import "time"

// AccessStatus is the recorded outcome of a check-in attempt.
type AccessStatus string

const (
	AccessSuccess AccessStatus = "success"
	AccessDenied  AccessStatus = "denied"
)

// AccessLogEntry records one check-in attempt. Entries are appended once and
// never modified.
type AccessLogEntry struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	EventID   string       `json:"eventId"`
	EventName string       `json:"eventName"`
	Timestamp time.Time    `json:"timestamp"`
	Status    AccessStatus `json:"status"`
	ScannedBy string       `json:"scannedBy,omitempty"`
}

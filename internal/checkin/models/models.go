package models

import (
	"encoding/json"

	"eventgate/internal/checkin/qr"
	"eventgate/internal/decision"
	"eventgate/internal/domain"
)

// State tracks a single scan. Every scan starts Scanned, moves to Verifying
// once the scanner and payload are accepted, and ends Granted or Denied.
type State string

const (
	StateScanned   State = "scanned"
	StateVerifying State = "verifying"
	StateGranted   State = "granted"
	StateDenied    State = "denied"
)

// AccessResult is the outcome of one scan. Entry is nil when the scan was
// rejected before verification, in which case nothing was logged.
type AccessResult struct {
	State     State                  `json:"state"`
	Decision  decision.Decision      `json:"decision"`
	UserID    string                 `json:"userId,omitempty"`
	EventID   string                 `json:"eventId"`
	EventName string                 `json:"eventName,omitempty"`
	Entry     *domain.AccessLogEntry `json:"accessLog,omitempty"`
}

// Granted reports whether the attendee may enter.
func (r *AccessResult) Granted() bool {
	return r != nil && r.State == StateGranted
}

// RegisterAccessRequest is the scanner's POST body. Payload is the raw QR
// content: either the JSON object itself or a string holding it.
type RegisterAccessRequest struct {
	EventID string          `json:"eventId"`
	Payload json.RawMessage `json:"payload"`
}

type RegisterAccessResponse struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	State     State                  `json:"state"`
	AccessLog *domain.AccessLogEntry `json:"accessLog"`
}

// QRCode is an issued attendee code.
type QRCode struct {
	QRCode  string     `json:"qrCode"`
	Payload qr.Payload `json:"payload"`
}

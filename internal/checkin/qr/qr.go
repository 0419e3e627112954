// Package qr builds and parses the check-in payload carried in attendee QR
// codes.
//
// The payload is plain JSON with no signature: anyone who knows a registered
// attendee's id can forge a code that the scanner accepts.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"eventgate/internal/domain"
)

// DefaultSize is the rendered image edge in pixels.
const DefaultSize = 512

const dataURLPrefix = "data:image/png;base64,"

// ErrMalformed is returned by Parse for payloads that are not JSON or lack
// userId or email.
var ErrMalformed = errors.New("malformed check-in payload")

// Payload is the scanned content of an attendee code.
type Payload struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPayload captures the identity of u at issuance time.
func NewPayload(u *domain.User, now time.Time) Payload {
	return Payload{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Timestamp: now.UTC(),
	}
}

func (p Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// Parse decodes raw scanner output. A JSON string wrapping the object, as
// some scanners emit, is unwrapped first.
func Parse(raw []byte) (Payload, error) {
	var p Payload
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return p, ErrMalformed
		}
		trimmed = strings.TrimSpace(inner)
	}
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return Payload{}, ErrMalformed
	}
	p.UserID = strings.TrimSpace(p.UserID)
	p.Email = strings.TrimSpace(p.Email)
	if p.UserID == "" || p.Email == "" {
		return Payload{}, ErrMalformed
	}
	return p, nil
}

// RenderDataURL encodes content as a PNG QR code of size pixels and returns
// it as a data URL suitable for an <img> src.
func RenderDataURL(content []byte, size int) (string, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(string(content), qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("render qr code: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

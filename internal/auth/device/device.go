// Package device derives display names from User-Agent strings. Audit events
// for logins, check-ins and admin changes carry the name.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Service labels devices. A disabled service returns empty labels so nothing
// device-derived is recorded.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ParseUserAgent renders "Browser on OS", or "Unknown Device" for an empty
// header.
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.Join(strings.Fields(browser+" on "+os), " ")
}

// Describe labels the request's device, or returns "" when disabled.
func (s *Service) Describe(userAgent string) string {
	if !s.enabled {
		return ""
	}
	return ParseUserAgent(userAgent)
}

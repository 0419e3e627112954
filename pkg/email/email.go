// Package email validates addresses and derives display names from them.
package email

import (
	"regexp"
	"strings"
	"unicode"
)

// pattern accepts local@domain.tld with no whitespace and exactly one @.
var pattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Valid reports whether addr looks like a deliverable email address.
func Valid(addr string) bool {
	return pattern.MatchString(strings.TrimSpace(addr))
}

// DeriveNameFromEmail builds a display name from the local part, e.g.
// "ana.silva@x.io" becomes "Ana Silva". Falls back to "User".
func DeriveNameFromEmail(addr string) string {
	localPart := addr
	if at := strings.IndexByte(addr, '@'); at >= 0 {
		localPart = addr[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "User"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	if len(parts) > 2 {
		parts = []string{parts[0], parts[len(parts)-1]}
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Package auth holds the authentication error taxonomy shared by the auth
// service, its handlers and the session middleware.
package auth

import (
	"errors"

	dErrors "eventgate/pkg/domain-errors"
)

// Reason says why authentication failed. Reasons are for logs, metrics and
// audit; clients only ever see a generic 401.
type Reason string

const (
	ReasonNotFound      Reason = "not_found"
	ReasonInactive      Reason = "inactive"
	ReasonBadCredential Reason = "bad_credential"
	ReasonInvalidToken  Reason = "invalid_token"
)

// Error is an authentication failure. It unwraps to a CodeUnauthorized domain
// error so httputil.WriteError renders it as 401.
type Error struct {
	Reason Reason
	Cause  error
}

func NewError(reason Reason, cause error) error {
	return &Error{Reason: reason, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return "authentication failed: " + string(e.Reason) + ": " + e.Cause.Error()
	}
	return "authentication failed: " + string(e.Reason)
}

func (e *Error) Unwrap() []error {
	public := dErrors.New(dErrors.CodeUnauthorized, e.publicMessage())
	if e.Cause == nil {
		return []error{public}
	}
	return []error{public, e.Cause}
}

func (e *Error) publicMessage() string {
	if e.Reason == ReasonInvalidToken {
		return "invalid or expired session"
	}
	return "invalid email or password"
}

// ReasonOf extracts the failure reason, or "" when err is not an auth error.
func ReasonOf(err error) Reason {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ""
}

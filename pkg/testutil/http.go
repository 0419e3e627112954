// Package testutil provides request builders and response assertions shared
// by handler and end-to-end tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/domain"
	"eventgate/pkg/platform/httputil"
	"eventgate/pkg/requestcontext"
)

// Request describes one call against a handler.
type Request struct {
	Method    string
	Path      string
	Body      any
	Token     string
	Principal *domain.Principal
}

// Build creates the http.Request. A string body is sent as-is; anything else
// is JSON encoded. Token becomes a bearer header, Principal is placed on the
// context as the auth middleware would.
func (r Request) Build(t *testing.T) *http.Request {
	t.Helper()
	var body io.Reader
	switch b := r.Body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err, "marshal request body")
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	if r.Principal != nil {
		req = req.WithContext(requestcontext.WithPrincipal(req.Context(), r.Principal))
	}
	return req
}

// Do sends r to h and returns the recorded response.
func Do(t *testing.T, h http.Handler, r Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r.Build(t))
	return rec
}

// Decode unmarshals the response body into a T.
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "decode response: %s", rec.Body.String())
	return out
}

// RequireStatus fails the test immediately on an unexpected status.
func RequireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "unexpected status, body: %s", rec.Body.String())
}

// AssertError checks both the status and the error code of the standard
// error envelope.
func AssertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, "unexpected status, body: %s", rec.Body.String())
	resp := Decode[httputil.ErrorResponse](t, rec)
	assert.Equal(t, code, resp.Error)
}

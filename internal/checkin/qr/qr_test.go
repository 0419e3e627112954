package qr

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventgate/internal/domain"
)

func TestParse(t *testing.T) {
	t.Run("round trips an issued payload", func(t *testing.T) {
		issued := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
		p := NewPayload(&domain.User{ID: "u1", Email: "ana@example.com", Name: "Ana"}, issued)
		raw, err := p.Encode()
		require.NoError(t, err)

		got, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("accepts a JSON string wrapping the object", func(t *testing.T) {
		got, err := Parse([]byte(`"{\"userId\":\"u1\",\"email\":\"ana@example.com\"}"`))
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UserID)
	})

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"not json", `u1`},
		{"missing user id", `{"email":"ana@example.com"}`},
		{"missing email", `{"userId":"u1"}`},
		{"blank user id", `{"userId":"  ","email":"ana@example.com"}`},
		{"array", `["u1"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestRenderDataURL(t *testing.T) {
	url, err := RenderDataURL([]byte(`{"userId":"u1","email":"ana@example.com"}`), DefaultSize)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, dataURLPrefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, dataURLPrefix))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

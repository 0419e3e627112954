package device

import (
	"net/http"

	"eventgate/pkg/requestcontext"
)

// Describer derives a display name from a User-Agent.
type Describer interface {
	Describe(userAgent string) string
}

// Middleware stores the device name for the request's User-Agent. Must run
// after metadata.ClientMetadata.
func Middleware(d Describer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if name := d.Describe(requestcontext.UserAgent(ctx)); name != "" {
				ctx = requestcontext.WithDeviceName(ctx, name)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package metadata

import (
	"net/http"
	"strings"

	"eventgate/pkg/requestcontext"
)

// ClientMetadata stores the client IP and User-Agent in the request context.
// Apply it early: the rate limiter keys on the IP. Proxy headers are only
// read when trustProxyHeaders is set, i.e. when every request arrives through
// a reverse proxy that overwrites them.
func ClientMetadata(trustProxyHeaders bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIPFromRequest(r, trustProxyHeaders)
			ctx := requestcontext.WithClientMetadata(r.Context(), ip, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest extracts the client IP. X-Forwarded-For and X-Real-IP
// are client-controlled, so they are consulted only when trustProxyHeaders
// is true; otherwise the socket peer address is used.
func ClientIPFromRequest(r *http.Request, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}
	return remoteIP(r.RemoteAddr)
}

func forwardedIP(r *http.Request) string {
	// X-Forwarded-For is "client, proxy1, proxy2"; the first entry is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

// remoteIP strips the port from ip:port or [ipv6]:port.
func remoteIP(addr string) string {
	if addr == "" {
		return "unknown"
	}
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return strings.Trim(addr[:idx], "[]")
	}
	return addr
}

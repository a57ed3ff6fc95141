package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/circleapp/circle-server/internal/auth"
	"github.com/circleapp/circle-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter allows n requests per interval per key.
func NewRateLimiter(n int, interval time.Duration) *RateLimiter {
	return ratelimit.NewPerInterval(n, interval)
}

const clientInfoKey ctxKey = "clientInfo"

// clientInfoMiddleware records the caller's address and user agent so huma
// handlers can attach them to sessions and rate limit by IP.
func clientInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := auth.ClientInfo{
			IPAddress: getClientIP(r),
			UserAgent: r.UserAgent(),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientInfoKey, info)))
	})
}

// getClientInfo returns the values stored by clientInfoMiddleware.
func getClientInfo(ctx context.Context) auth.ClientInfo {
	info, _ := ctx.Value(clientInfoKey).(auth.ClientInfo)
	return info
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	// First entry in the chain is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package middleware

import (
	"net/http"

	"golang.org/x/sync/semaphore"
)

// LimitMiddleware bounds the number of analysis requests running at once.
// Excess requests wait for a slot until the client gives up.
type LimitMiddleware struct {
	sem *semaphore.Weighted
}

// NewLimitMiddleware creates a limiter admitting at most maxInFlight requests
func NewLimitMiddleware(maxInFlight int) *LimitMiddleware {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &LimitMiddleware{sem: semaphore.NewWeighted(int64(maxInFlight))}
}

// Limit wraps a handler with bounded admission
func (m *LimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.sem.Acquire(r.Context(), 1); err != nil {
			http.Error(w, `{"error":"request canceled while waiting"}`, http.StatusServiceUnavailable)
			return
		}
		defer m.sem.Release(1)

		next.ServeHTTP(w, r)
	})
}

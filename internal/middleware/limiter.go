package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"bridge-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Login / register (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Dashboard polling and websocket reconnects
	limitFrontend = rate.Limit(20)
	burstFrontend = 40

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per identity and tier.
type RateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	internalKey string
	now         func() time.Time
}

// NewRateLimiter starts a cleanup loop that runs until ctx is done.
// internalKey enables the trusted tier for requests carrying it in
// X-Service-Auth; leave it empty to disable that tier.
func NewRateLimiter(ctx context.Context, internalKey string) *RateLimiter {
	rl := &RateLimiter{
		visitors:    make(map[string]*visitor),
		internalKey: internalKey,
		now:         time.Now,
	}
	go rl.cleanupLoop(ctx)
	return rl
}

// getVisitor retrieves or creates a rate limiter for the given key.
func (rl *RateLimiter) getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		rl.visitors[key] = &visitor{limiter, rl.now()}
		return limiter
	}

	v.lastSeen = rl.now()
	return v.limiter
}

func (rl *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup removes idle entries from the visitors map.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, key)
		}
	}
}

// Middleware checks if the request is allowed by the rate limiter.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := rl.resolveRateTier(r)
		key := fmt.Sprintf("%s:%s", identity(r), tier)

		if !rl.getVisitor(key, limit, burst).Allow() {
			w.Header().Set("Retry-After", "1")
			utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		if tier == "internal" {
			r = r.WithContext(utils.WithInternalRequest(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

// identity prefers the authenticated user, then a client-supplied device
// id, then the remote IP.
func identity(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

// resolveRateTier determines which rate limit policy applies to the request.
func (rl *RateLimiter) resolveRateTier(r *http.Request) (rate.Limit, int, string) {
	if rl.internalKey != "" && r.Header.Get("X-Service-Auth") == rl.internalKey {
		return limitInternal, burstInternal, "internal"
	}

	if r.URL.Path == "/auth/login" || r.URL.Path == "/auth/register" {
		return limitStrict, burstStrict, "strict"
	}

	if r.URL.Path == "/ws" || strings.HasPrefix(r.URL.Path, "/notifications") || r.Header.Get("X-Client-Type") == "frontend-heavy" {
		return limitFrontend, burstFrontend, "frontend"
	}

	return limitGeneral, burstGeneral, "general"
}

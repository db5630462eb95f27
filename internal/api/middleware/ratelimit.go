package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/fundwallet/fundwallet-backend/internal/api/response"
)

// limiterTTL is how long an idle client's limiter is kept.
const limiterTTL = 10 * time.Minute

// RateLimiter limits requests per client IP with a token bucket per client.
// Limiters live in an expiring cache so idle clients are forgotten.
type RateLimiter struct {
	limiters *cache.Cache
	rps      rate.Limit
	burst    int
}

// NewRateLimiter creates a RateLimiter allowing rps requests per second with the
// given burst. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: cache.New(limiterTTL, 2*limiterTTL),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Handler is the middleware. It keys clients by RemoteAddr, so it belongs after
// chi's RealIP middleware.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l.rps <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(clientKey(r)).Allow() {
			// Seconds until the next token.
			retry := int(math.Ceil(1 / float64(l.rps)))
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			response.RespondError(w, r, http.StatusTooManyRequests, "rate limit exceeded", "too many requests, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	if v, found := l.limiters.Get(key); found {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	// Another request may have raced us; keep whichever got in first.
	if err := l.limiters.Add(key, lim, cache.DefaultExpiration); err != nil {
		if v, found := l.limiters.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func clientKey(r *http.Request) string {
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
		if addr[i] == ']' {
			break
		}
	}
	return addr
}

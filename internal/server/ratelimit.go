package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Per-client request budget. Chat traffic is human-paced; anything past this
// is a bot hammering the widget endpoint.
const (
	rateLimitPerMinute = 120
	rateLimitBurst     = 20
	rateLimitClients   = 4096
)

// rateLimiter is a token-bucket limiter keyed by client IP. Buckets live in
// an LRU so an IP churn attack cannot grow memory without bound.
type rateLimiter struct {
	clients *lru.Cache[string, *clientBucket]
	rate    float64 // tokens per second
	burst   float64
}

type clientBucket struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
}

func newRateLimiter(perMinute, burst int) *rateLimiter {
	cache, _ := lru.New[string, *clientBucket](rateLimitClients)
	return &rateLimiter{
		clients: cache,
		rate:    float64(perMinute) / 60,
		burst:   float64(perMinute + burst),
	}
}

func (rl *rateLimiter) allow(key string) bool {
	b, ok := rl.clients.Get(key)
	if !ok {
		b = &clientBucket{tokens: rl.burst, last: time.Now()}
		// Another goroutine may race the insert; both buckets start full, so
		// losing the race only makes the limit marginally more permissive.
		rl.clients.Add(key, b)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.allow(host) {
			s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/sentimentlab/sentiment-service/internal/pkg/errors"
)

// staleAfter is how long a client may stay idle before its limiter is dropped.
const staleAfter = 5 * time.Minute

// RateLimiter provides per-client rate limiting.
type RateLimiter struct {
	mu       sync.RWMutex
	clients  map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
	lastSeen map[string]time.Time
	trusted  []netip.Prefix
	stop     chan struct{}
	stopOnce sync.Once
}

// RateLimiterConfig configures the rate limiter.
type RateLimiterConfig struct {
	// RequestsPerSecond is the rate limit per client.
	RequestsPerSecond float64
	// Burst is the maximum burst size.
	Burst int
	// CleanupInterval is how often to clean up stale clients.
	CleanupInterval time.Duration
	// TrustedProxies are the peers whose X-Forwarded-For and X-Real-IP
	// headers are believed. Empty means clients are keyed by RemoteAddr only.
	TrustedProxies []netip.Prefix
}

// ParseTrustedProxies parses IP addresses and CIDR ranges.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		CleanupInterval:   time.Minute,
	}
}

// NewRateLimiter creates a new rate limiter. Call Stop to end the cleanup goroutine.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	rl := &RateLimiter{
		clients:  make(map[string]*rate.Limiter),
		rate:     rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		cleanup:  cfg.CleanupInterval,
		lastSeen: make(map[string]time.Time),
		trusted:  cfg.TrustedProxies,
		stop:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// getLimiter returns the rate limiter for a client, creating one if needed.
func (rl *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lastSeen[clientIP] = time.Now()

	limiter, exists := rl.clients[clientIP]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.clients[clientIP] = limiter
	}

	return limiter
}

// cleanupLoop removes stale client entries.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictStale(time.Now().Add(-staleAfter))
		}
	}
}

func (rl *RateLimiter) evictStale(threshold time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, lastSeen := range rl.lastSeen {
		if lastSeen.Before(threshold) {
			delete(rl.clients, ip)
			delete(rl.lastSeen, ip)
		}
	}
}

// Stop ends the background cleanup. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow checks if a request from the given IP should be allowed.
func (rl *RateLimiter) Allow(clientIP string) bool {
	return rl.getLimiter(clientIP).Allow()
}

// Middleware returns an HTTP middleware that applies rate limiting.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(rl.clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			apperrors.WriteError(w, apperrors.RateLimitedError(1))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP keys the request. Forwarding headers count only when the peer is
// a trusted proxy; X-Forwarded-For is walked right to left past trusted hops.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if !rl.isTrusted(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && (i == 0 || !rl.isTrusted(hop)) {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func (rl *RateLimiter) isTrusted(ip string) bool {
	if len(rl.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

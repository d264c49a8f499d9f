package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/alexiusacademia/goliq/internal/metrics"
)

// HeaderRequestID carries the request identifier in both directions.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the identifier assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestIDMiddleware keeps a client supplied X-Request-ID or assigns a new one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// ClientIdleTTL is how long a client's bucket is kept after its last request
const ClientIdleTTL = 3 * time.Minute

// client is the token bucket of one address
type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client address. Buckets idle
// for longer than ClientIdleTTL are dropped.
type IPRateLimiter struct {
	ips       map[string]*client
	mu        sync.Mutex
	r         rate.Limit
	b         int
	metrics   *metrics.Collector
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter creates a limiter allowing r requests per second with
// bursts of b per client.
func NewIPRateLimiter(r rate.Limit, b int, m *metrics.Collector) *IPRateLimiter {
	return &IPRateLimiter{
		ips:       make(map[string]*client),
		r:         r,
		b:         b,
		metrics:   m,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) >= ClientIdleTTL {
		i.evict(now)
	}

	c, exists := i.ips[ip]
	if !exists {
		c = &client{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

// evict drops the buckets idle since before now - ClientIdleTTL.
// The caller holds mu.
func (i *IPRateLimiter) evict(now time.Time) {
	for ip, c := range i.ips {
		if now.Sub(c.lastSeen) >= ClientIdleTTL {
			delete(i.ips, ip)
		}
	}
	i.lastSweep = now
}

// Clients returns the number of tracked client addresses.
func (i *IPRateLimiter) Clients() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

// LimitMiddleware rejects requests beyond the client's rate with 429.
func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !i.getLimiter(ip).Allow() {
			if i.metrics != nil {
				i.metrics.RateLimitedTotal.Inc()
			}
			sendError(w, "too many requests, try again later", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// accessMiddleware logs every request and records its metrics under the
// route template.
func accessMiddleware(logger *slog.Logger, m *metrics.Collector) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					endpoint = tmpl
				}
			}
			if m != nil {
				m.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(rec.status), duration)
			}

			logger.Info("api: request",
				"request_id", RequestID(r.Context()),
				"method", r.Method,
				"path", endpoint,
				"status", rec.status,
				"duration_ms", duration.Milliseconds(),
				"remote", r.RemoteAddr,
			)
		})
	}
}

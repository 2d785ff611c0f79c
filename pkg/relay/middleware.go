package relay

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/germanamz/taskify/pkg/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const loggerKey = "taskify.logger"

// requestID assigns every request an id, reusing a well-formed incoming one,
// and stores a logger carrying it.
func requestID(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Header(RequestIDHeader, id)
		c.Set(loggerKey, log.With("request_id", id))
		c.Next()
	}
}

// requestLogger returns the request-scoped logger set by requestID.
func requestLogger(c *gin.Context, def *slog.Logger) *slog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return def
}

// accessLog logs one line per request and records it in m when m is set.
func accessLog(log *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		d := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		requestLogger(c, log).LogAttrs(c.Request.Context(), levelFor(status), "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", d),
			slog.String("client", c.ClientIP()),
		)

		if m != nil {
			m.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), d)
		}
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// recovery converts handler panics into a 500 ErrorBody.
func recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestLogger(c, log).ErrorContext(c.Request.Context(), "handler panicked", "panic", fmt.Sprint(r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{
					Error:   ErrTitleInternal,
					Message: "unexpected server error",
				})
			}
		}()

		c.Next()
	}
}

// cors allows the configured origins. "*" allows any origin.
func cors(origins []string) gin.HandlerFunc {
	wildcard := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if wildcard {
				c.Header("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// bodyLimit caps request bodies at n bytes.
func bodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// clientLimiter keeps one token bucket per client address. Buckets idle
// for longer than idleAfter are dropped during a sweep.
type clientLimiter struct {
	rps       rate.Limit
	burst     int
	idleAfter time.Duration

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		idleAfter: 10 * time.Minute,
		clients:   make(map[string]*client),
		lastSweep: time.Now(),
	}
}

func (l *clientLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idleAfter {
		for k, cl := range l.clients {
			if now.Sub(cl.seen) > l.idleAfter {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.clients[key]
	if !ok {
		cl = &client{lim: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = cl
	}
	cl.seen = now

	return cl.lim.AllowN(now, 1)
}

// rateLimit rejects requests beyond the per-client budget with 429.
func rateLimit(rps float64, burst int) gin.HandlerFunc {
	l := newClientLimiter(rps, burst)

	return func(c *gin.Context) {
		if !l.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", strconv.Itoa(max(1, int(1/rps))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorBody{
				Error:   ErrTitleRateLimit,
				Message: "rate limit exceeded, retry later",
			})
			return
		}
		c.Next()
	}
}

package httpapi

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

type ctxKey int

const ctxKeyUserID ctxKey = 0

func withUser(ctx context.Context, userID int64) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, userID)
	return logging.ContextWith(ctx, "user_id", userID)
}

func userIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(int64)
	return id, ok
}

// extractToken returns the bearer token from the Authorization header, or "".
func extractToken(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix))
}

// logContext stores the request id in the context so every record logged
// with it, including those from services, carries the id.
func logContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWith(r.Context(), "request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger returns the handler logger tagged with method and path.
func (h *Handler) requestLogger(r *http.Request) logging.Logger {
	return h.log.With("method", r.Method, "path", r.URL.Path)
}

// logRequests emits one line per request. 5xx log as errors, 4xx as
// warnings, everything else as info.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"remote_addr", r.RemoteAddr,
		}

		switch {
		case status >= http.StatusInternalServerError:
			h.log.Error(r.Context(), "http request", args...)
		case status >= http.StatusBadRequest:
			h.log.Warn(r.Context(), "http request", args...)
		default:
			h.log.Info(r.Context(), "http request", args...)
		}
	})
}

// recoverer turns a handler panic into a logged 500 JSON response.
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			h.requestLogger(r).Error(r.Context(), "panic recovered", "panic", p, "stack", string(debug.Stack()))
			writeError(w, http.StatusInternalServerError, msgInternal)
		}()
		next.ServeHTTP(w, r)
	})
}

// requireUser rejects requests without a valid, unrevoked bearer token and
// stores the caller's id in the request context.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID, err := h.users.Authenticate(r.Context(), token)
		if err != nil {
			h.writeServiceError(w, r, err, errorMessages{})
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), userID)))
	})
}

// optionalUser attaches the caller's id when a valid token is present and
// otherwise lets the request through anonymously.
func (h *Handler) optionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token != "" {
			if userID, err := h.users.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(withUser(r.Context(), userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin guards admin routes when admin e-mails are configured. With
// an empty list the routes stay open.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	if len(h.opts.AdminEmails) == 0 {
		return next
	}
	check := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := userIDFromContext(r.Context())
		ok, err := h.users.IsAdmin(r.Context(), userID, h.opts.AdminEmails)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			h.writeServiceError(w, r, err, errorMessages{})
			return
		}
		if !ok {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
	return h.requireUser(check)
}

// ipRateLimiter hands out one token bucket per client IP. Idle buckets are
// swept lazily from Allow, so no background goroutine is needed.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(perMinute, burst int) *ipRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ipRateLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// reserve reports whether ip may proceed now and, if not, how long to wait.
func (l *ipRateLimiter) reserve(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idleTTL {
		for k, v := range l.limiters {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now

	res := entry.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Minute
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (l *ipRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// rateLimit applies l per client IP. A nil limiter disables limiting.
func (h *Handler) rateLimit(l *ipRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.reserve(clientIP(r))
			if !ok {
				secs := int(math.Ceil(wait.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. With TrustProxy set,
// middleware.RealIP has already replaced it with the forwarded address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

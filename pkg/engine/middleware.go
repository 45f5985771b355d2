package engine

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nspass/nspass-mockd/internal/id"
	"github.com/nspass/nspass-mockd/pkg/config"
	"github.com/nspass/nspass-mockd/pkg/logging"
	"github.com/nspass/nspass-mockd/pkg/metrics"
	"github.com/nspass/nspass-mockd/pkg/requestlog"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware so that the first one listed is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// statusWriter captures the status code written by the next handler.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher if the underlying writer does.
func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RequestID reuses an incoming X-Request-ID or assigns a new one, echoes
// it in the response and attaches a request-scoped logger to the context.
func RequestID(log *slog.Logger) Middleware {
	log = logging.OrNop(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if rid == "" || len(rid) > 128 {
				rid = id.UUID()
			}
			w.Header().Set(HeaderRequestID, rid)
			ctx := logging.WithContext(r.Context(), log.With("request_id", rid))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLog logs one line per request. Pass-through requests log at Info,
// everything else at Debug.
func RequestLog(log *slog.Logger) Middleware {
	log = logging.OrNop(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			outcome := sw.Header().Get(HeaderOutcome)
			level := slog.LevelDebug
			if outcome == metrics.OutcomePassthrough || outcome == metrics.OutcomeBypassed {
				level = slog.LevelInfo
			}
			logging.FromContext(r.Context(), log).Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.statusCode,
				"duration", time.Since(start),
				"outcome", outcome,
				"route", sw.Header().Get(HeaderRoute),
			)
		})
	}
}

// Metrics records request counts and durations. Routes are labelled by
// route name so ids in paths do not explode cardinality.
func Metrics(reg *metrics.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			route := sw.Header().Get(HeaderRoute)
			if route == "" {
				route = "unmatched"
			}
			reg.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.statusCode)).Inc()
			reg.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// History records every non-control request in store.
func History(store requestlog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			outcome := sw.Header().Get(HeaderOutcome)
			if outcome == metrics.OutcomeControl || (outcome == "" && IsControlPath(r.URL.Path)) {
				return
			}
			store.Log(&requestlog.Entry{
				RequestID:   sw.Header().Get(HeaderRequestID),
				Timestamp:   start,
				Method:      r.Method,
				Path:        r.URL.Path,
				QueryString: r.URL.RawQuery,
				RemoteAddr:  r.RemoteAddr,
				Outcome:     outcome,
				Route:       sw.Header().Get(HeaderRoute),
				Status:      sw.statusCode,
				DurationMs:  time.Since(start).Milliseconds(),
			})
		})
	}
}

// CORS answers preflight requests and sets CORS headers for allowed
// origins. A nil or disabled config passes requests through untouched.
func CORS(cfg *config.CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil || !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowOrigin := cfg.GetAllowOriginValue(r.Header.Get("Origin"))
			if allowOrigin != "" {
				setCORSHeaders(w.Header(), cfg, allowOrigin)
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowOrigin != "" {
					w.WriteHeader(http.StatusNoContent)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setCORSHeaders(h http.Header, cfg *config.CORSConfig, allowOrigin string) {
	h.Set("Access-Control-Allow-Origin", allowOrigin)
	if allowOrigin != "*" {
		h.Add("Vary", "Origin")
	}

	methods := cfg.AllowMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	h.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))

	headers := cfg.AllowHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin", HeaderRequestID}
	}
	h.Set("Access-Control-Allow-Headers", strings.Join(headers, ", "))

	expose := cfg.ExposeHeaders
	if len(expose) == 0 {
		expose = []string{HeaderRequestID, HeaderOutcome}
	}
	h.Set("Access-Control-Expose-Headers", strings.Join(expose, ", "))

	if cfg.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 86400
	}
	h.Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
}

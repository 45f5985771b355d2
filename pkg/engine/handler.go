package engine

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nspass/nspass-mockd/pkg/config"
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/logging"
	"github.com/nspass/nspass-mockd/pkg/metrics"
	"github.com/nspass/nspass-mockd/pkg/proxy"
	"github.com/nspass/nspass-mockd/pkg/requestlog"
	"github.com/nspass/nspass-mockd/pkg/router"
	"github.com/nspass/nspass-mockd/pkg/validation"
)

// ControlPrefix is the path prefix of the control API.
const ControlPrefix = "/__mock"

// Response headers describing how a request was handled.
const (
	HeaderOutcome = "X-Mockd-Outcome"
	HeaderRoute   = "X-Mockd-Route"
)

// Decision is the interception verdict for one request.
type Decision struct {
	Outcome string
	Route   *router.Route
	Params  map[string]string
	// Pattern is the bypass glob that matched, if any.
	Pattern string
}

// Intercepted reports whether the mock answers the request.
func (d Decision) Intercepted() bool {
	return d.Outcome == metrics.OutcomeIntercepted || d.Outcome == metrics.OutcomeRejected
}

// Options configures a Handler.
type Options struct {
	Router    *router.Router
	Store     *fixture.Store
	Validator *validation.Registry
	Enabled   bool
	// Unmatched is config.UnmatchedPassthrough (default) or
	// config.UnmatchedReject.
	Unmatched   string
	Bypass      *proxy.Filter
	Passthrough *proxy.Passthrough
	Metrics     *metrics.Registry
	// History backs the /__mock/requests endpoints. It may be nil.
	History requestlog.Store
	// OnReset runs after the control API resets resources.
	OnReset func(names []string)
	// OnToggle runs after interception is switched.
	OnToggle func(enabled bool)
	Logger   *slog.Logger
}

// Handler is the interception runtime as an http.Handler.
type Handler struct {
	api         *router.Router
	control     *router.Router
	store       *fixture.Store
	enabled     atomic.Bool
	unmatched   string
	bypass      *proxy.Filter
	passthrough *proxy.Passthrough
	metrics     *metrics.Registry
	history     requestlog.Store
	onReset     func([]string)
	onToggle    func(bool)
	started     time.Time
	log         *slog.Logger
}

// NewHandler builds a Handler. Router and Store are required.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		api:         opts.Router,
		store:       opts.Store,
		unmatched:   opts.Unmatched,
		bypass:      opts.Bypass,
		passthrough: opts.Passthrough,
		metrics:     opts.Metrics,
		history:     opts.History,
		onReset:     opts.OnReset,
		onToggle:    opts.OnToggle,
		started:     time.Now(),
		log:         logging.Component(opts.Logger, "engine"),
	}
	if h.unmatched == "" {
		h.unmatched = config.UnmatchedPassthrough
	}
	if h.passthrough == nil {
		h.passthrough, _ = proxy.NewPassthrough(proxy.Options{Logger: opts.Logger})
	}
	h.enabled.Store(opts.Enabled)
	if h.metrics != nil {
		h.metrics.SetEnabled(opts.Enabled)
	}
	h.control = router.New(ControlPrefix, opts.Validator, opts.Logger)
	h.registerControl(h.control)
	return h
}

// Enabled reports whether interception is on.
func (h *Handler) Enabled() bool {
	return h.enabled.Load()
}

// SetEnabled switches interception. Requests already past the decision
// point are not affected.
func (h *Handler) SetEnabled(on bool) {
	prev := h.enabled.Swap(on)
	if h.metrics != nil {
		h.metrics.SetEnabled(on)
	}
	if prev != on {
		h.log.Info("interception toggled", "enabled", on)
		if h.onToggle != nil {
			h.onToggle(on)
		}
	}
}

// Router returns the API router.
func (h *Handler) Router() *router.Router { return h.api }

// ControlRouter returns the control API router.
func (h *Handler) ControlRouter() *router.Router { return h.control }

// IsControlPath reports whether path belongs to the control API.
func IsControlPath(path string) bool {
	return path == ControlPrefix || strings.HasPrefix(path, ControlPrefix+"/")
}

// Decide applies the interception rules to one request.
func (h *Handler) Decide(enabled bool, method, path string) Decision {
	if !enabled {
		return Decision{Outcome: metrics.OutcomePassthrough}
	}
	if pattern, ok := h.bypass.Match(path); ok {
		return Decision{Outcome: metrics.OutcomeBypassed, Pattern: pattern}
	}
	if rt, params, ok := h.api.Match(method, path); ok {
		return Decision{Outcome: metrics.OutcomeIntercepted, Route: rt, Params: params}
	}
	if h.unmatched == config.UnmatchedReject {
		return Decision{Outcome: metrics.OutcomeRejected}
	}
	return Decision{Outcome: metrics.OutcomePassthrough}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if IsControlPath(r.URL.Path) {
		h.record(metrics.OutcomeControl)
		w.Header().Set(HeaderOutcome, metrics.OutcomeControl)
		h.serveControl(w, r)
		return
	}

	enabled := h.enabled.Load()
	d := h.Decide(enabled, r.Method, r.URL.Path)
	h.record(d.Outcome)
	w.Header().Set(HeaderOutcome, d.Outcome)

	switch d.Outcome {
	case metrics.OutcomeIntercepted:
		w.Header().Set(HeaderRoute, d.Route.Name)
		h.api.Serve(w, r, d.Route, d.Params)
	case metrics.OutcomeRejected:
		envelope.Write(w, envelope.ConventionA, noRoute())
	default:
		h.logPassthrough(d, enabled, r.Method, r.URL.Path)
		h.passthrough.ServeHTTP(w, r)
	}
}

func (h *Handler) serveControl(w http.ResponseWriter, r *http.Request) {
	rt, params, ok := h.control.Match(r.Method, r.URL.Path)
	if !ok {
		envelope.Write(w, envelope.ConventionA, noRoute())
		return
	}
	w.Header().Set(HeaderRoute, rt.Name)
	h.control.Serve(w, r, rt, params)
}

func (h *Handler) logPassthrough(d Decision, enabled bool, method, path string) {
	switch {
	case !enabled:
		h.log.Debug("interception disabled, passing through", "method", method, "path", path)
	case d.Outcome == metrics.OutcomeBypassed:
		h.log.Debug("bypassed request, passing through", "method", method, "path", path, "pattern", d.Pattern)
	default:
		h.log.Warn("unmatched request, passing through", "method", method, "path", path)
	}
}

func (h *Handler) record(outcome string) {
	if h.metrics != nil {
		h.metrics.Outcomes.WithLabelValues(outcome).Inc()
	}
}

func noRoute() *envelope.Reply {
	return envelope.Fail(http.StatusNotFound, envelope.CodeNotFound, envelope.MsgNoRoute)
}

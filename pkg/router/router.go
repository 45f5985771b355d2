package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/nspass/nspass-mockd/internal/matching"
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/logging"
	"github.com/nspass/nspass-mockd/pkg/validation"
)

// HandlerFunc produces the reply for a matched request.
type HandlerFunc func(*Request) *envelope.Reply

// Route is one registered (method, template) binding.
type Route struct {
	Name       string
	Method     string
	Pattern    string
	Convention envelope.Convention
	// Schema names the body schema checked by Request.Bind.
	Schema  string
	Summary string
	Tag     string

	template *matching.Template
	handler  HandlerFunc
}

// Template returns the parsed path template.
func (rt *Route) Template() *matching.Template { return rt.template }

// RouteInfo is the serializable description of a Route.
type RouteInfo struct {
	Name       string `json:"name" yaml:"name"`
	Method     string `json:"method" yaml:"method"`
	Pattern    string `json:"pattern" yaml:"pattern"`
	Convention string `json:"convention" yaml:"convention"`
	Schema     string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Summary    string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tag        string `json:"tag,omitempty" yaml:"tag,omitempty"`
	// Score is the specificity score of the pattern.
	Score int `json:"score" yaml:"score"`
}

// Info describes rt.
func (rt *Route) Info() RouteInfo {
	return RouteInfo{
		Name:       rt.Name,
		Method:     rt.Method,
		Pattern:    rt.Pattern,
		Convention: rt.Convention.String(),
		Schema:     rt.Schema,
		Summary:    rt.Summary,
		Tag:        rt.Tag,
		Score:      rt.template.Score(),
	}
}

// RouteOption customizes a route at registration.
type RouteOption func(*Route)

// Name sets the route name shown in logs and route listings.
func Name(name string) RouteOption { return func(rt *Route) { rt.Name = name } }

// Summary sets the one-line description used in the OpenAPI export.
func Summary(s string) RouteOption { return func(rt *Route) { rt.Summary = s } }

// Body sets the JSON Schema the request body is validated against.
func Body(schema string) RouteOption { return func(rt *Route) { rt.Schema = schema } }

// Router is an ordered route table.
type Router struct {
	mu        sync.RWMutex
	prefix    string
	routes    []*Route
	validator *validation.Registry
	log       *slog.Logger
}

// New creates a router whose routes live under prefix (e.g. "/api").
// validator may be nil, in which case bodies are decoded without schema
// checks.
func New(prefix string, validator *validation.Registry, log *slog.Logger) *Router {
	return &Router{
		prefix:    "/" + strings.Trim(prefix, "/"),
		validator: validator,
		log:       logging.OrNop(log),
	}
}

// Prefix returns the normalized API prefix.
func (r *Router) Prefix() string { return r.prefix }

// Handle registers a route. The path is relative to the router prefix.
func (r *Router) Handle(method, path string, conv envelope.Convention, h HandlerFunc, opts ...RouteOption) error {
	pattern := strings.TrimSuffix(r.prefix, "/") + "/" + strings.TrimPrefix(path, "/")
	tmpl, err := matching.ParseTemplate(pattern)
	if err != nil {
		return fmt.Errorf("registering %s %s: %w", method, path, err)
	}
	rt := &Route{
		Method:     strings.ToUpper(method),
		Pattern:    tmpl.String(),
		Convention: conv,
		template:   tmpl,
		handler:    h,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.Name == "" {
		rt.Name = rt.Method + " " + rt.Pattern
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.routes {
		if existing.Method == rt.Method && existing.Pattern == rt.Pattern {
			return fmt.Errorf("route %s %s already registered", rt.Method, rt.Pattern)
		}
	}
	r.routes = append(r.routes, rt)
	slices.SortStableFunc(r.routes, func(a, b *Route) int {
		return matching.Compare(a.template, b.template)
	})
	return nil
}

// Match finds the most specific route for method and path.
func (r *Router) Match(method, path string) (*Route, map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rt := range r.routes {
		if !matching.MatchMethod(rt.Method, method) {
			continue
		}
		if params, ok := rt.template.Match(path); ok {
			return rt, params, true
		}
	}
	return nil, nil, false
}

// Routes returns the route table in match order.
func (r *Router) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.routes)
}

// Dispatch runs the route handler for req. A panicking handler is turned
// into a 500 reply.
func (r *Router) Dispatch(req *Request) (reply *envelope.Reply) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(req.Context(), r.log).Error("handler panic",
				"route", req.Route.Name,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			reply = envelope.FromError(fmt.Errorf("handler panic: %v", rec))
		}
	}()

	reply = req.Route.handler(req)
	if reply == nil {
		reply = envelope.OK(nil)
	}
	return reply
}

// Serve builds a Request from an HTTP request already matched to rt,
// dispatches it, and writes the rendered envelope.
func (r *Router) Serve(w http.ResponseWriter, hr *http.Request, rt *Route, params map[string]string) *envelope.Reply {
	req, err := r.FromHTTP(hr, rt, params)
	var reply *envelope.Reply
	if err != nil {
		reply = envelope.FromError(err)
	} else {
		reply = r.Dispatch(req)
	}
	envelope.Write(w, rt.Convention, reply)
	return reply
}

// Group registers routes sharing a tag and envelope convention.
type Group struct {
	r    *Router
	tag  string
	conv envelope.Convention
}

// Group returns a registration helper for one resource.
func (r *Router) Group(tag string, conv envelope.Convention) *Group {
	return &Group{r: r, tag: tag, conv: conv}
}

func (g *Group) add(method, path string, h HandlerFunc, opts []RouteOption) {
	opts = append([]RouteOption{func(rt *Route) { rt.Tag = g.tag }}, opts...)
	if err := g.r.Handle(method, path, g.conv, h, opts...); err != nil {
		panic(err)
	}
}

// GET registers a GET route. It panics on an invalid or duplicate template.
func (g *Group) GET(path string, h HandlerFunc, opts ...RouteOption) {
	g.add(http.MethodGet, path, h, opts)
}

// POST registers a POST route.
func (g *Group) POST(path string, h HandlerFunc, opts ...RouteOption) {
	g.add(http.MethodPost, path, h, opts)
}

// PUT registers a PUT route.
func (g *Group) PUT(path string, h HandlerFunc, opts ...RouteOption) {
	g.add(http.MethodPut, path, h, opts)
}

// DELETE registers a DELETE route.
func (g *Group) DELETE(path string, h HandlerFunc, opts ...RouteOption) {
	g.add(http.MethodDelete, path, h, opts)
}

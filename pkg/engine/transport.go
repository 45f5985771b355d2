package engine

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/metrics"
	"github.com/nspass/nspass-mockd/pkg/router"
)

// Transport is an http.RoundTripper that answers matched requests from the
// mock and sends everything else through Base.
type Transport struct {
	handler *Handler
	base    http.RoundTripper
}

// NewTransport wraps base, which defaults to http.DefaultTransport.
func NewTransport(h *Handler, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{handler: h, base: base}
}

// Client returns an http.Client using t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	h := t.handler
	path := req.URL.Path

	if IsControlPath(path) {
		h.record(metrics.OutcomeControl)
		rt, params, ok := h.control.Match(req.Method, path)
		if !ok {
			return t.respond(req, envelope.ConventionA, noRoute(), metrics.OutcomeControl, "")
		}
		return t.respond(req, rt.Convention, dispatch(h.control, req, rt, params), metrics.OutcomeControl, rt.Name)
	}

	enabled := h.enabled.Load()
	d := h.Decide(enabled, req.Method, path)
	h.record(d.Outcome)

	switch d.Outcome {
	case metrics.OutcomeIntercepted:
		return t.respond(req, d.Route.Convention, dispatch(h.api, req, d.Route, d.Params), d.Outcome, d.Route.Name)
	case metrics.OutcomeRejected:
		return t.respond(req, envelope.ConventionA, noRoute(), d.Outcome, "")
	default:
		h.logPassthrough(d, enabled, req.Method, path)
		return t.base.RoundTrip(req)
	}
}

func dispatch(r *router.Router, req *http.Request, rt *router.Route, params map[string]string) *envelope.Reply {
	if req.Body != nil {
		defer func() { _ = req.Body.Close() }()
	}
	rreq, err := r.FromHTTP(req, rt, params)
	if err != nil {
		return envelope.FromError(err)
	}
	return r.Dispatch(rreq)
}

func (t *Transport) respond(req *http.Request, conv envelope.Convention, reply *envelope.Reply, outcome, route string) (*http.Response, error) {
	body, err := envelope.Encode(conv, reply)
	if err != nil {
		return nil, fmt.Errorf("encoding mock reply: %w", err)
	}
	status := reply.Status()
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Content-Length", strconv.Itoa(len(body)))
	header.Set(HeaderOutcome, outcome)
	if route != "" {
		header.Set(HeaderRoute, route)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

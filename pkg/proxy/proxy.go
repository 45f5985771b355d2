package proxy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/logging"
)

// DefaultMaxBodySize caps buffered request and response bodies (10MB).
const DefaultMaxBodySize = 10 * 1024 * 1024

// Messages returned when forwarding fails.
const (
	MsgNoUpstream          = "上游服务未配置"
	MsgUpstreamUnavailable = "上游服务不可用"
)

// ErrNoUpstream is returned when no upstream URL is configured.
var ErrNoUpstream = errors.New("no upstream configured")

var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"TE",
	"Trailers",
	"Transfer-Encoding",
	"Upgrade",
}

// Options configures a Passthrough.
type Options struct {
	// Upstream is the backend base URL. Empty answers every request with 502.
	Upstream string
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Passthrough is an http.Handler that forwards requests to the upstream.
type Passthrough struct {
	upstream *url.URL
	client   *http.Client
	log      *slog.Logger
}

// NewPassthrough parses the upstream URL and builds the forwarder.
func NewPassthrough(opts Options) (*Passthrough, error) {
	p := &Passthrough{log: logging.Component(opts.Logger, "proxy")}
	if opts.Upstream != "" {
		u, err := url.Parse(opts.Upstream)
		if err != nil {
			return nil, fmt.Errorf("invalid upstream %q: %w", opts.Upstream, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid upstream %q: scheme and host are required", opts.Upstream)
		}
		p.upstream = u
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	p.client = &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return p, nil
}

// Configured reports whether an upstream is set.
func (p *Passthrough) Configured() bool {
	return p != nil && p.upstream != nil
}

// Upstream returns the upstream URL, or "" when unset.
func (p *Passthrough) Upstream() string {
	if !p.Configured() {
		return ""
	}
	return p.upstream.String()
}

// ServeHTTP forwards r and copies the upstream response back.
func (p *Passthrough) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !p.Configured() {
		envelope.Write(w, envelope.ConventionA, envelope.Fail(http.StatusBadGateway, envelope.CodeUpstream, MsgNoUpstream))
		return
	}

	start := time.Now()
	resp, err := p.forward(r)
	if err != nil {
		p.log.Warn("upstream request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		envelope.Write(w, envelope.ConventionA, envelope.Fail(http.StatusBadGateway, envelope.CodeUpstream, MsgUpstreamUnavailable))
		return
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBodySize))
	if err != nil {
		p.log.Warn("reading upstream response failed", "path", r.URL.Path, "error", err)
		envelope.Write(w, envelope.ConventionA, envelope.Fail(http.StatusBadGateway, envelope.CodeUpstream, MsgUpstreamUnavailable))
		return
	}

	copyHeaders(w.Header(), resp.Header)
	removeHopByHopHeaders(w.Header())
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)

	p.log.Debug("forwarded", "method", r.Method, "path", r.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))
}

func (p *Passthrough) forward(r *http.Request) (*http.Response, error) {
	var body io.Reader
	if r.Body != nil {
		raw, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxBodySize))
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		_ = r.Body.Close()
		if len(raw) > 0 {
			body = bytes.NewReader(raw)
		}
	}

	target := p.Target(r.URL)
	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), body)
	if err != nil {
		return nil, err
	}
	copyHeaders(outReq.Header, r.Header)
	removeHopByHopHeaders(outReq.Header)
	setForwardedHeaders(outReq.Header, r)

	return p.client.Do(outReq)
}

// Target maps an incoming URL onto the upstream, joining the upstream's
// path prefix with the request path.
func (p *Passthrough) Target(in *url.URL) *url.URL {
	out := *p.upstream
	out.Path = strings.TrimSuffix(p.upstream.Path, "/") + in.Path
	out.RawPath = ""
	out.RawQuery = in.RawQuery
	return &out
}

func setForwardedHeaders(h http.Header, r *http.Request) {
	clientIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		clientIP = host
	}
	if clientIP != "" {
		if prior := r.Header.Get("X-Forwarded-For"); prior != "" {
			clientIP = prior + ", " + clientIP
		}
		h.Set("X-Forwarded-For", clientIP)
	}
	h.Set("X-Forwarded-Host", r.Host)
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	h.Set("X-Forwarded-Proto", proto)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

// removeHopByHopHeaders drops headers that apply to a single connection.
func removeHopByHopHeaders(h http.Header) {
	for _, f := range h.Values("Connection") {
		for _, name := range strings.Split(f, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, header := range hopByHopHeaders {
		h.Del(header)
	}
}

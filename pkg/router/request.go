package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nspass/nspass-mockd/internal/matching"
	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/validation"
)

// MaxBodyBytes caps the request body read by FromHTTP.
const MaxBodyBytes = 1 << 20

// Request is the handler's view of an intercepted HTTP call. The body has
// been read in full before the handler runs.
type Request struct {
	Method string
	Path   string
	Params map[string]string
	Query  url.Values
	Header http.Header
	Body   []byte
	Route  *Route

	ctx       context.Context
	validator *validation.Registry
}

// NewRequest builds a Request for a route, mainly for tests and for the
// in-process transport.
func (r *Router) NewRequest(ctx context.Context, rt *Route, path string, params map[string]string, query url.Values, header http.Header, body []byte) *Request {
	if ctx == nil {
		ctx = context.Background()
	}
	if params == nil {
		params = map[string]string{}
	}
	if query == nil {
		query = url.Values{}
	}
	if header == nil {
		header = http.Header{}
	}
	return &Request{
		Method:    rt.Method,
		Path:      path,
		Params:    params,
		Query:     query,
		Header:    header,
		Body:      body,
		Route:     rt,
		ctx:       ctx,
		validator: r.validator,
	}
}

// FromHTTP reads hr's body and wraps it in a Request for rt.
func (r *Router) FromHTTP(hr *http.Request, rt *Route, params map[string]string) (*Request, error) {
	var body []byte
	if hr.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(hr.Body, MaxBodyBytes+1))
		if err != nil {
			return nil, &envelope.ParseError{Err: err}
		}
		if len(body) > MaxBodyBytes {
			return nil, &envelope.ValidationError{Message: "请求体过大"}
		}
	}
	return r.NewRequest(hr.Context(), rt, hr.URL.Path, params, hr.URL.Query(), hr.Header, body), nil
}

// Context returns the request context.
func (r *Request) Context() context.Context { return r.ctx }

// Param returns a path parameter, or "".
func (r *Request) Param(name string) string { return r.Params[name] }

// ParamID parses a positive integer path parameter.
func (r *Request) ParamID(name string) (int64, error) {
	v, err := strconv.ParseInt(r.Params[name], 10, 64)
	if err != nil || v < 1 {
		return 0, &envelope.ValidationError{Field: name, Message: "无效的ID"}
	}
	return v, nil
}

// Page reads page and pageSize from the query, falling back to the defaults
// for missing or invalid values.
func (r *Request) Page() (page, pageSize int) {
	page = matching.IntParam(r.Query, "page", fixture.DefaultPage, 1, 0)
	pageSize = matching.IntParam(r.Query, "pageSize", fixture.DefaultPageSize, 1, fixture.MaxPageSize)
	return page, pageSize
}

// Bind decodes the body into v after validating it against the route's
// schema. An empty body is treated as {}.
func (r *Request) Bind(v any) error {
	schema := ""
	if r.Route != nil {
		schema = r.Route.Schema
	}
	return r.BindSchema(schema, v)
}

// BindSchema is Bind with an explicit schema name.
func (r *Request) BindSchema(schema string, v any) error {
	body := bytes.TrimSpace(r.Body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return &envelope.ParseError{Err: err}
	}
	if schema != "" && r.validator != nil {
		if err := r.validator.Validate(schema, doc); err != nil {
			var verr *validation.Error
			if errors.As(err, &verr) {
				field := ""
				if first := verr.First(); first != nil {
					field = first.Field
				}
				return &envelope.ValidationError{Field: field, Message: verr.Error()}
			}
			return fmt.Errorf("validating body: %w", err)
		}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &envelope.ParseError{Err: err}
	}
	return nil
}

// BearerToken returns the token from an "Authorization: Bearer" header.
func (r *Request) BearerToken() (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

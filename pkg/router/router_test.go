package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nspass/nspass-mockd/pkg/envelope"
	"github.com/nspass/nspass-mockd/pkg/validation"
)

func named(name string) HandlerFunc {
	return func(*Request) *envelope.Reply { return envelope.OK(name) }
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	r := New("/api", validation.MustNew(), nil)
	g := r.Group("servers", envelope.ConventionA)
	g.GET("/servers/:id", named("get"), Name("servers.get"))
	g.GET("/servers/stats", named("stats"), Name("servers.stats"))
	g.GET("/servers", named("list"), Name("servers.list"))
	g.POST("/servers", named("create"), Name("servers.create"), Body("server.create"))
	g.POST("/servers/:id/:action", named("generic"), Name("servers.generic"))
	g.POST("/servers/:id/restart", named("restart"), Name("servers.restart"))
	return r
}

func TestRouter_Match(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   string
		params map[string]string
	}{
		{"GET", "/api/servers/stats", "servers.stats", map[string]string{}},
		{"GET", "/api/servers/7", "servers.get", map[string]string{"id": "7"}},
		{"GET", "/api/servers/", "servers.list", map[string]string{}},
		{"POST", "/api/servers/7/restart", "servers.restart", map[string]string{"id": "7"}},
		{"POST", "/api/servers/7/test", "servers.generic", map[string]string{"id": "7", "action": "test"}},
		{"post", "/api/servers", "servers.create", map[string]string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rt, params, ok := r.Match(tt.method, tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, rt.Name)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestRouter_NoMatch(t *testing.T) {
	r := newTestRouter(t)

	for _, c := range []struct{ method, path string }{
		{"DELETE", "/api/servers/1"},
		{"HEAD", "/api/servers"},
		{"GET", "/servers"},
		{"GET", "/api/servers/1/extra/deep"},
	} {
		_, _, ok := r.Match(c.method, c.path)
		assert.False(t, ok, "%s %s", c.method, c.path)
	}
}

func TestRouter_RoutesInMatchOrder(t *testing.T) {
	r := newTestRouter(t)

	var names []string
	for _, rt := range r.Routes() {
		names = append(names, rt.Name)
	}
	assert.Less(t, indexOf(names, "servers.stats"), indexOf(names, "servers.get"))
	assert.Less(t, indexOf(names, "servers.restart"), indexOf(names, "servers.generic"))
	assert.Equal(t, "servers", r.Routes()[0].Tag)
}

func TestRouter_HandleErrors(t *testing.T) {
	r := New("api", nil, nil)
	assert.Equal(t, "/api", r.Prefix())

	require.NoError(t, r.Handle("GET", "/a/:id", envelope.ConventionA, named("a")))
	assert.Error(t, r.Handle("GET", "/a/:id", envelope.ConventionA, named("dup")))
	assert.Error(t, r.Handle("GET", "/a/:", envelope.ConventionA, named("bad")))
	assert.Panics(t, func() { r.Group("x", envelope.ConventionA).GET("/a/:id", named("dup")) })
}

func TestRouter_DispatchRecoversPanics(t *testing.T) {
	r := New("/api", nil, nil)
	require.NoError(t, r.Handle("GET", "/boom", envelope.ConventionA, func(*Request) *envelope.Reply {
		panic("kaboom")
	}))
	rt, params, ok := r.Match("GET", "/api/boom")
	require.True(t, ok)

	reply := r.Dispatch(r.NewRequest(context.Background(), rt, "/api/boom", params, nil, nil, nil))
	assert.Equal(t, http.StatusInternalServerError, reply.Status())
	assert.Equal(t, envelope.MsgInternal, reply.Message)
}

func TestRouter_DispatchNilReply(t *testing.T) {
	r := New("/api", nil, nil)
	require.NoError(t, r.Handle("DELETE", "/x/:id", envelope.ConventionA, func(*Request) *envelope.Reply { return nil }))
	rt, params, _ := r.Match("DELETE", "/api/x/1")

	reply := r.Dispatch(r.NewRequest(context.Background(), rt, "/api/x/1", params, nil, nil, nil))
	assert.True(t, reply.Success)
}

func TestRouter_Serve(t *testing.T) {
	r := newTestRouter(t)
	rt, params, ok := r.Match("GET", "/api/servers/stats")
	require.True(t, ok)

	rec := httptest.NewRecorder()
	hr := httptest.NewRequest(http.MethodGet, "/api/servers/stats", nil)
	r.Serve(rec, hr, rt, params)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body envelope.BodyA
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "stats", body.Data)
}

func TestRequest_Bind(t *testing.T) {
	r := newTestRouter(t)
	rt, _, ok := r.Match("POST", "/api/servers")
	require.True(t, ok)

	type serverBody struct {
		Name *string `json:"name"`
		IPv4 *string `json:"ipv4"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := r.NewRequest(context.Background(), rt, "/api/servers", nil, nil, nil, []byte(`{"name":"test-srv","ipv4":"1.2.3.4"}`))
		var b serverBody
		require.NoError(t, req.Bind(&b))
		assert.Equal(t, "test-srv", *b.Name)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		req := r.NewRequest(context.Background(), rt, "/api/servers", nil, nil, nil, []byte(`{"name":`))
		var b serverBody
		var perr *envelope.ParseError
		require.ErrorAs(t, req.Bind(&b), &perr)
	})

	t.Run("schema violation", func(t *testing.T) {
		req := r.NewRequest(context.Background(), rt, "/api/servers", nil, nil, nil, nil)
		var b serverBody
		var verr *envelope.ValidationError
		require.ErrorAs(t, req.Bind(&b), &verr)
		assert.Contains(t, verr.Error(), "不能为空")
	})

	t.Run("type mismatch after validation", func(t *testing.T) {
		req := r.NewRequest(context.Background(), rt, "/api/servers", nil, nil, nil, []byte(`{"name":"a","ipv4":"1.2.3.4"}`))
		var wrong struct {
			Name int `json:"name"`
		}
		var perr *envelope.ParseError
		require.ErrorAs(t, req.Bind(&wrong), &perr)
	})
}

func TestRequest_Helpers(t *testing.T) {
	r := New("/api", nil, nil)
	require.NoError(t, r.Handle("GET", "/users/:id", envelope.ConventionA, named("x")))
	rt, params, _ := r.Match("GET", "/api/users/12")

	q := url.Values{"page": {"3"}, "pageSize": {"1000"}}
	h := http.Header{"Authorization": {"bearer abc.def"}}
	req := r.NewRequest(context.Background(), rt, "/api/users/12", params, q, h, nil)

	id, err := req.ParamID("id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = req.ParamID("missing")
	var verr *envelope.ValidationError
	assert.ErrorAs(t, err, &verr)

	page, size := req.Page()
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, size)

	tok, ok := req.BearerToken()
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	req.Query = url.Values{"page": {"abc"}, "pageSize": {"0"}}
	page, size = req.Page()
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)
}

func TestFromHTTP_RejectsHugeBody(t *testing.T) {
	r := newTestRouter(t)
	rt, params, _ := r.Match("POST", "/api/servers")
	hr := httptest.NewRequest(http.MethodPost, "/api/servers", strings.NewReader(strings.Repeat("a", MaxBodyBytes+10)))

	_, err := r.FromHTTP(hr, rt, params)
	var verr *envelope.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

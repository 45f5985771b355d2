package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nspass/nspass-mockd/pkg/auth"
	"github.com/nspass/nspass-mockd/pkg/fixture"
	"github.com/nspass/nspass-mockd/pkg/router"
	"github.com/nspass/nspass-mockd/pkg/validation"
)

func init() {
	auth.Cost = bcrypt.MinCost
}

type testEnv struct {
	t      *testing.T
	store  *fixture.Store
	router *router.Router
	h      *Handlers
}

func newEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()
	seed := fixture.MustDefaultSeed()
	require.NoError(t, seed.HashPasswords(auth.HashPassword))
	store, err := fixture.NewStore(seed)
	require.NoError(t, err)

	opts := Options{Store: store}
	for _, m := range mutate {
		m(&opts)
	}
	h := New(opts)
	r := router.New("/api", validation.MustNew(), nil)
	h.Register(r)
	return &testEnv{t: t, store: store, router: r, h: h}
}

type response struct {
	Code int
	Body map[string]any
}

// data returns the "data" member of a Convention A or B body.
func (r response) data() any { return r.Body["data"] }

func (r response) dataMap() map[string]any {
	m, _ := r.Body["data"].(map[string]any)
	return m
}

func (r response) dataList() []any {
	l, _ := r.Body["data"].([]any)
	return l
}

// success reads success from either envelope convention.
func (r response) success() bool {
	if s, ok := r.Body["status"].(map[string]any); ok {
		b, _ := s["success"].(bool)
		return b
	}
	b, _ := r.Body["success"].(bool)
	return b
}

func (r response) message() string {
	if s, ok := r.Body["status"].(map[string]any); ok {
		m, _ := s["message"].(string)
		return m
	}
	m, _ := r.Body["message"].(string)
	return m
}

func (r response) errorCode() string {
	if s, ok := r.Body["status"].(map[string]any); ok {
		c, _ := s["errorCode"].(string)
		return c
	}
	return ""
}

func (r response) pagination() map[string]any {
	p, _ := r.Body["pagination"].(map[string]any)
	return p
}

func (e *testEnv) do(method, path string, body any, header ...string) response {
	e.t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(raw)
	}
	hr := httptest.NewRequest(method, path, rdr)
	for i := 0; i+1 < len(header); i += 2 {
		hr.Header.Set(header[i], header[i+1])
	}

	rt, params, ok := e.router.Match(hr.Method, hr.URL.Path)
	require.True(e.t, ok, "no route for %s %s", method, path)

	rec := httptest.NewRecorder()
	e.router.Serve(rec, hr, rt, params)

	var out map[string]any
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return response{Code: rec.Code, Body: out}
}

func ids(items []any) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		m := it.(map[string]any)
		out = append(out, int64(m["id"].(float64)))
	}
	return out
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

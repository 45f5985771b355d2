package engine

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nspass/nspass-mockd/pkg/config"
	"github.com/nspass/nspass-mockd/pkg/metrics"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func recordingBase(seen *[]string) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		*seen = append(*seen, r.Method+" "+r.URL.Path)
		return &http.Response{
			StatusCode: http.StatusTeapot,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Request:    r,
		}, nil
	})
}

func readJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestTransport_Intercepts(t *testing.T) {
	var seen []string
	client := NewTransport(newTestHandler(t), recordingBase(&seen)).Client()

	resp, err := client.Get("http://backend.local/api/servers/stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, metrics.OutcomeIntercepted, resp.Header.Get(HeaderOutcome))
	assert.Equal(t, "servers.stats", resp.Header.Get(HeaderRoute))
	data := readJSON(t, resp)["data"].(map[string]any)
	assert.EqualValues(t, 4, data["total"])
	assert.Empty(t, seen)
}

func TestTransport_PostBody(t *testing.T) {
	client := NewTransport(newTestHandler(t), nil).Client()

	resp, err := client.Post("http://backend.local/api/auth/login", "application/json",
		strings.NewReader(`{"username":"admin","password":"nspass123"}`))
	require.NoError(t, err)
	body := readJSON(t, resp)
	assert.Equal(t, true, body["status"].(map[string]any)["success"])
	assert.NotEmpty(t, body["data"].(map[string]any)["token"])
}

func TestTransport_PassesUnmatchedToBase(t *testing.T) {
	var seen []string
	h := newTestHandler(t)
	client := NewTransport(h, recordingBase(&seen)).Client()

	resp, err := client.Get("http://backend.local/api/reports")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	h.SetEnabled(false)
	resp, err = client.Get("http://backend.local/api/users")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, []string{"GET /api/reports", "GET /api/users"}, seen)
}

func TestTransport_RejectAndControl(t *testing.T) {
	var seen []string
	h := newTestHandler(t, func(o *Options) { o.Unmatched = config.UnmatchedReject })
	client := NewTransport(h, recordingBase(&seen)).Client()

	resp, err := client.Get("http://backend.local/api/reports")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "接口不存在", readJSON(t, resp)["message"])

	resp, err = client.Post("http://backend.local/__mock/toggle", "application/json", strings.NewReader(`{"enabled":false}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, metrics.OutcomeControl, resp.Header.Get(HeaderOutcome))
	assert.False(t, h.Enabled())
	assert.Empty(t, seen)
}

package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nspass/nspass-mockd/pkg/config"
	"github.com/nspass/nspass-mockd/pkg/metrics"
	"github.com/nspass/nspass-mockd/pkg/stream"
	"github.com/nspass/nspass-mockd/pkg/tasks"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Mock.HeartbeatSchedule = ""
	return cfg
}

func TestNewServer_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Mock.Unmatched = "explode"
	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestServer_Handler(t *testing.T) {
	s, err := NewServer(testConfig())
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/dashboard/overview")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get(HeaderRequestID), 36)
	assert.Equal(t, "dashboard.overview", resp.Header.Get(HeaderRoute))
	_, err = io.ReadAll(resp.Body)
	require.NoError(t, err)

	hist, err := http.Get(ts.URL + "/__mock/requests?route=dashboard.overview")
	require.NoError(t, err)
	defer hist.Body.Close()
	var body struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(hist.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "/api/dashboard/overview", body.Data[0]["path"])

	m, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer m.Body.Close()
	raw, _ := io.ReadAll(m.Body)
	assert.Contains(t, string(raw), "nspass_mock_requests_total")
}

func TestServer_MetricsOffAndDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	cfg.Mock.Enabled = new(bool)
	s, err := NewServer(cfg)
	require.NoError(t, err)
	assert.False(t, s.Engine().Enabled())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, metrics.OutcomePassthrough, rec.Header().Get(HeaderOutcome))
}

func TestServer_MetricsPerServer(t *testing.T) {
	a, err := NewServer(testConfig())
	require.NoError(t, err)
	b, err := NewServer(testConfig())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	scrape := func(s *Server) string {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}
	assert.Contains(t, scrape(a), `route="dashboard.overview"`)
	assert.NotContains(t, scrape(b), `route="dashboard.overview"`)
}

func TestServer_Stream(t *testing.T) {
	s, err := NewServer(testConfig())
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + StreamPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg stream.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, stream.MessageOverview, msg.Type)

	// A reset pushes a fresh overview.
	_, err = s.Engine().Reset("servers")
	require.NoError(t, err)
	require.NoError(t, conn.ReadJSON(&msg))
	data, _ := json.Marshal(msg.Data)
	assert.Contains(t, string(data), `"totalServers":4`)
}

func TestServer_StartStop(t *testing.T) {
	cfg := testConfig()
	cfg.Mock.HeartbeatSchedule = "@every 1h"
	s, err := NewServer(cfg)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Error(t, s.Start())
	assert.Len(t, s.Scheduler().Entries(), 1)
	assert.Equal(t, tasks.JobHeartbeat, s.Scheduler().Entries()[0].Name)

	resp, err := http.Get("http://" + s.Addr() + "/__mock/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	client := s.Transport(nil).Client()
	resp, err = client.Get("http://api.nspass.local/api/users/1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))

	select {
	case err, ok := <-s.Done():
		assert.False(t, ok && err != nil)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

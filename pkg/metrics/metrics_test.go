package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	require.NotSame(t, a, b)

	a.SetEnabled(true)
	b.SetEnabled(false)
	a.Outcomes.WithLabelValues(OutcomeIntercepted).Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.MockEnabled), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.MockEnabled), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(a.Outcomes.WithLabelValues(OutcomeIntercepted)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.Outcomes.WithLabelValues(OutcomeIntercepted)), 0)
}

func TestRegistryHelpers(t *testing.T) {
	r := New()

	r.SetEnabled(true)
	assert.InDelta(t, 1, testutil.ToFloat64(r.MockEnabled), 0)
	r.SetEnabled(false)
	assert.InDelta(t, 0, testutil.ToFloat64(r.MockEnabled), 0)

	r.SetRecords(map[string]int{"users": 5, "servers": 4})
	assert.InDelta(t, 5, testutil.ToFloat64(r.Records.WithLabelValues("users")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(r.Records.WithLabelValues("servers")), 0)
}

func TestHandler_Exposition(t *testing.T) {
	r := New()
	r.Outcomes.WithLabelValues(OutcomeIntercepted).Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `nspass_mock_outcomes_total{outcome="intercepted"} 1`)
	assert.NotContains(t, rec.Body.String(), "go_goroutines")

	other := httptest.NewRecorder()
	New().Handler().ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.NotContains(t, other.Body.String(), `outcome="intercepted"`)
}

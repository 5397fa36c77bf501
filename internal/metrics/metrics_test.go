package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/x", 200, time.Millisecond)
		m.PlanEvent("created")
		m.Validation("official", true)
		m.Transition("Approved")
		m.FrameCaptured()
		m.SetQueueDepth(3)
	})
}

func TestCounters(t *testing.T) {
	m := New()
	m.PlanEvent("created")
	m.PlanEvent("created")
	m.Validation("simulation", false)
	m.Transition("Approved")
	m.FrameCaptured()
	m.SetQueueDepth(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.plans.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("simulation", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("Approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frames))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queueDepth))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/api/v1/plans", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `gemini_http_requests_total{code="200",method="GET",route="/api/v1/plans"} 1`), body)
	assert.Contains(t, body, "gemini_http_request_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverCounters(t *testing.T) {
	s := New()

	s.Recomputed("Monday", 3)
	s.Recomputed("Monday", 5)
	s.Mutated("Monday", "dragging")
	s.Rejected("Monday", errors.New("too short"))

	assert.Equal(t, 2.0, testutil.ToFloat64(s.recomputes.WithLabelValues("Monday")))
	assert.Equal(t, 5.0, testutil.ToFloat64(s.placements.WithLabelValues("Monday")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.mutations.WithLabelValues("Monday", "dragging")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.rejections.WithLabelValues("Monday")))
}

func TestObserveRefresh(t *testing.T) {
	s := New()
	at := time.Unix(1700000000, 0)

	s.ObserveRefresh(12, nil, at)
	s.ObserveRefresh(0, errors.New("offline"), at)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.refreshes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.refreshes.WithLabelValues("error")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(s.lastRefresh))
}

func TestHandlerServesRegistry(t *testing.T) {
	s := New()
	s.ObserveHTTPRequest(http.MethodGet, "/health", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestNilServiceIsNoop(t *testing.T) {
	var s *Service
	s.Recomputed("x", 1)
	s.Mutated("x", "dragging")
	s.Rejected("x", nil)
	s.ObserveRefresh(1, nil, time.Now())
	s.ObserveHTTPRequest("GET", "/", 200, 0)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

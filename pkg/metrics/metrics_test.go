package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/taskify/pkg/fallback"
	"github.com/germanamz/taskify/pkg/providers/model"
)

func TestObserver_RecordsAttemptsAndResults(t *testing.T) {
	m := New()
	obs := m.Observer()
	ctx := context.Background()

	a := model.Candidate{ID: "org/a"}
	b := model.Candidate{ID: "org/b"}

	obs.Attempt(ctx, fallback.Outcome{Candidate: a, Kind: fallback.FailureTimeout, Duration: time.Second})
	obs.Attempt(ctx, fallback.Outcome{Candidate: b, Succeeded: true, Duration: time.Second})
	obs.Finished(ctx, fallback.Response{ModelID: "org/b"}, nil)
	obs.Finished(ctx, fallback.Response{}, errors.New("exhausted"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.AttemptCount.WithLabelValues("org/a", "timeout")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AttemptCount.WithLabelValues("org/b", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RelayResultCount.WithLabelValues("succeeded", "org/b")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RelayResultCount.WithLabelValues("exhausted", "")), 0)
}

func TestHandler_ExposesRelayMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "/api/chat", "200", 20*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `taskify_requests_total{method="POST",route="/api/chat",status="200"} 1`)
	assert.Contains(t, string(body), "taskify_request_duration_seconds")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveRequest("GET", "/", "200", time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(a.RequestCount.WithLabelValues("GET", "/", "200")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.RequestCount.WithLabelValues("GET", "/", "200")), 0)
}

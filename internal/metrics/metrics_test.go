package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveFile("python", "", 10*time.Millisecond)
	m.ObserveFile("python", "", 5*time.Millisecond)
	m.ObserveFile("java", "UNSUPPORTED_LANGUAGE", 0)
	m.ObserveRun(nil, 7)
	m.ObserveRun(errors.New("boom"), 0)
	m.ObserveWatchEvent()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesExtracted.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesExtracted.WithLabelValues("UNSUPPORTED_LANGUAGE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ExternalModules), "failed runs leave the gauge alone")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WatcherEventsTotal))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFile("go", "", time.Second)
		m.ObserveStage("tree", time.Second)
		m.ObserveRun(nil, 1)
		m.ObserveWatchEvent()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveStage("render", time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `repodoc_stage_seconds_count{stage="render"} 1`)
}

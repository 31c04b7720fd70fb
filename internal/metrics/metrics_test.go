package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	// A second instance has its own registry and must not panic.
	assert.NotPanics(t, func() { New() })
}

func TestRecordPrediction(t *testing.T) {
	m := New()
	m.RecordPrediction("DistilBert", "Positive")
	m.RecordPrediction("DistilBert", "Positive")
	m.RecordPrediction("DistilBert", "Negative")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("DistilBert", "Positive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("DistilBert", "Negative")))
}

func TestObserveInference(t *testing.T) {
	m := New()
	m.ObserveInference("model-a", 20*time.Millisecond, nil)
	m.ObserveInference("model-a", 30*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InferenceErrors.WithLabelValues("model-a")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.InferenceDuration))
}

func TestCacheCounters(t *testing.T) {
	m := New()
	m.RecordCacheHit("m")
	m.RecordCacheMiss("m")
	m.RecordCacheMiss("m")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("m")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses.WithLabelValues("m")))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.RecordPrediction("MultiBert", "Negative")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), `sentiment_predictions_total{model="MultiBert",sentiment="Negative"} 1`)
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordToggle("orders", "ok")
		m.RecordCacheOp("get", "hit")
		m.SetDatasetRows(map[string]int{"orders": 1})
		m.ObserveBuild(time.Millisecond)
	})
}

func TestRecordToggle(t *testing.T) {
	m := New()
	m.RecordToggle("customers", "ok")
	m.RecordToggle("customers", "ok")
	m.RecordToggle("bogus", "rejected")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChoroplethToggles.WithLabelValues("customers", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChoroplethToggles.WithLabelValues("bogus", "rejected")))
}

func TestHandlerExposesDatasetRows(t *testing.T) {
	m := New()
	m.SetDatasetRows(map[string]int{"orders": 42})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `opsdash_dataset_rows{table="orders"} 42`)
}

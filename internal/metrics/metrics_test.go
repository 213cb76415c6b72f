package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
)

func TestRecordRun(t *testing.T) {
	m := New()
	run := models.NewRunStore().Create("https://x", "", []models.Category{models.CategoryCatalogs}, models.Options{})
	run.Complete([]models.Tally{{Category: models.CategoryCatalogs, Succeeded: 3, Failed: 1, Skipped: 1}})

	m.RecordRun(run)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(models.RunCompleted)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("catalogs", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("catalogs", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("catalogs", "skipped")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Runs.WithLabelValues(models.RunFailed).Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `dbcleaner_runs_total{status="failed"} 1`)
}

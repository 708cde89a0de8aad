package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageDoneCounts(t *testing.T) {
	m := New()
	m.PageDone("train", StatusOK, 5, 1, 2)
	m.PageDone("train", StatusOK, 3, 0, 0)
	m.PageDone("val", StatusFailed, 0, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesTotal.WithLabelValues("train", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesTotal.WithLabelValues("val", StatusFailed)))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.FragmentsTotal.WithLabelValues("train")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OverflowsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClippedTotal))
}

func TestRunsDoNotShareRegistries(t *testing.T) {
	a, b := New(), New()
	a.WriteRetriesTotal.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.WriteRetriesTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.WriteRetriesTotal))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.PageDone("train", StatusOK, 2, 0, 0)
	m.ObserveStage(StageRender, time.Now().Add(-10*time.Millisecond))

	path := filepath.Join(t.TempDir(), "synthgen.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "synthgen_pages_total")
	assert.Contains(t, string(data), "synthgen_stage_seconds_bucket")
}

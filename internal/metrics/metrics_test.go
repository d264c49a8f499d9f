package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_IndependentRegistries(t *testing.T) {
	// a second collector with the same namespace must not panic
	a := NewCollector("goliq")
	b := NewCollector("goliq")

	a.RecordAPIRequest("/api/v1/assess", "POST", "200", 15*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.APIRequestsTotal.WithLabelValues("/api/v1/assess", "POST", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.APIRequestsTotal.WithLabelValues("/api/v1/assess", "POST", "200")))
}

func TestCollector_RecordCalculation(t *testing.T) {
	c := NewCollector("test")
	fs := 0.37
	c.RecordCalculation("Liquefiable", &fs, "")
	c.RecordCalculation("Error", nil, "domain_error")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.CalculationsTotal.WithLabelValues("Liquefiable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FailuresTotal.WithLabelValues("domain_error")))

	n, err := testutil.GatherAndCount(c.Registry, "test_safety_factor")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollector_Model(t *testing.T) {
	c := NewCollector("test")
	c.RecordModelReload(nil, true)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ModelLoaded))

	c.RecordModelReload(errors.New("bad file"), true)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ModelReloadTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ModelReloadTotal.WithLabelValues("ok")))

	c.SetModelLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.ModelLoaded))
}

func TestCollector_RecordBatch(t *testing.T) {
	c := NewCollector("test")
	c.RecordBatch(25, time.Second)
	c.RecordProbability(0.8)
	assert.Equal(t, 25.0, testutil.ToFloat64(c.BatchRowsTotal))
}

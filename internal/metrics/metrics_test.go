package metrics

import (
	"testing"
	"time"

	"github.com/mikey/sms-risk-detector/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.ObserveVerdict(core.HighRisk, core.SourceModel, 2*time.Millisecond)
	r.ObserveVerdict(core.HighRisk, core.SourceModel, time.Millisecond)
	r.ObserveVerdict(core.Safe, core.SourceCache, time.Microsecond)
	r.ObserveCacheHit()
	r.ObserveTraining(5572, 4100, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.verdicts.WithLabelValues("High Risk", core.SourceModel)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.verdicts.WithLabelValues("Safe", core.SourceCache)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.trainings))
	assert.Equal(t, 4100.0, testutil.ToFloat64(r.features))
	assert.Equal(t, 5572.0, testutil.ToFloat64(r.documents))
}

func TestNewRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

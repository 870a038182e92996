package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservePrediction(t *testing.T) {
	before := testutil.ToFloat64(predictionsCounter.WithLabelValues("Churn"))
	ObservePrediction("Churn", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(predictionsCounter.WithLabelValues("Churn")))
}

func TestObservePredictionError(t *testing.T) {
	before := testutil.ToFloat64(predictionErrorsCounter.WithLabelValues("ShapeMismatch"))
	ObservePredictionError("ShapeMismatch", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(predictionErrorsCounter.WithLabelValues("ShapeMismatch")))
}

func TestObserveReload(t *testing.T) {
	ok := testutil.ToFloat64(reloadsCounter.WithLabelValues("success"))
	bad := testutil.ToFloat64(reloadsCounter.WithLabelValues("error"))
	ObserveReload(true)
	ObserveReload(false)
	assert.Equal(t, ok+1, testutil.ToFloat64(reloadsCounter.WithLabelValues("success")))
	assert.Equal(t, bad+1, testutil.ToFloat64(reloadsCounter.WithLabelValues("error")))
}

package loss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigmoidLogitInverse(t *testing.T) {
	for _, p := range []float64{0.01, 0.2, 0.5, 0.77, 0.99} {
		assert.InDelta(t, p, Sigmoid(Logit(p)), 1e-12)
	}
	assert.Equal(t, 0.5, Sigmoid(0))
	assert.False(t, math.IsNaN(Sigmoid(-1000)))
	assert.False(t, math.IsNaN(Sigmoid(1000)))
}

func TestLogLoss(t *testing.T) {
	assert.InDelta(t, math.Log(2), LogLoss([]float64{0, 1}, []float64{0.5, 0.5}), 1e-12)
	assert.Less(t, LogLoss([]float64{0, 1}, []float64{0, 1}), 1e-12)
	assert.False(t, math.IsInf(LogLoss([]float64{1}, []float64{0}), 0))
	assert.Equal(t, 0.0, LogLoss(nil, nil))
}

func TestGradHess(t *testing.T) {
	y := []float64{1, 0}
	m := []float64{0, 0}
	g := make([]float64, 2)
	h := make([]float64, 2)
	GradHess(y, m, g, h)
	assert.Equal(t, []float64{-0.5, 0.5}, g)
	assert.Equal(t, []float64{0.25, 0.25}, h)
}

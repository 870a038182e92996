// Package loss holds the binary logistic objective used by the boosted
// classifier: the sigmoid link, its inverse, and the log-loss with its
// first and second derivatives.
package loss

import "math"

const probEps = 1e-15

// Sigmoid maps a raw margin onto a probability.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Logit is the inverse of Sigmoid. p is clipped away from 0 and 1.
func Logit(p float64) float64 {
	p = clip(p)
	return math.Log(p / (1 - p))
}

// LogLoss is the mean binary cross-entropy of probabilities p against 0/1
// labels y.
func LogLoss(y, p []float64) float64 {
	n := len(y)
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := range y {
		pi := clip(p[i])
		s += -(y[i]*math.Log(pi) + (1-y[i])*math.Log(1-pi))
	}
	return s / float64(n)
}

// GradHess fills grad and hess with the derivatives of the log-loss with
// respect to the raw margins, given the current margins.
func GradHess(y, margin, grad, hess []float64) {
	for i := range y {
		p := Sigmoid(margin[i])
		grad[i] = p - y[i]
		h := p * (1 - p)
		if h < 1e-16 {
			h = 1e-16
		}
		hess[i] = h
	}
}

func clip(p float64) float64 {
	return math.Min(math.Max(p, probEps), 1-probEps)
}

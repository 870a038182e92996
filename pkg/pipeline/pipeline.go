package pipeline

import (
	"encoding/gob"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/dataprep"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/stats"
)

// Step is one fit/transform stage over a fixed-width float row. Steps may
// be applied in place (dst and row aliasing the same slice).
type Step interface {
	Fit(X [][]float64) error
	TransformRow(dst, row []float64) error
}

// Chain fits its steps in order, each on the previous step's output.
type Chain struct {
	Steps []Step
}

func NewChain(steps ...Step) *Chain {
	return &Chain{Steps: steps}
}

func (c *Chain) Fit(X [][]float64) error {
	cur := X
	for _, step := range c.Steps {
		if err := step.Fit(cur); err != nil {
			return err
		}
		next := make([][]float64, len(cur))
		for i, row := range cur {
			next[i] = make([]float64, len(row))
			if err := step.TransformRow(next[i], row); err != nil {
				return err
			}
		}
		cur = next
	}
	return nil
}

func (c *Chain) TransformRow(dst, row []float64) error {
	copy(dst, row)
	for _, step := range c.Steps {
		if err := step.TransformRow(dst, dst); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	gob.Register(&dataprep.MedianImputer{})
	gob.Register(&dataprep.QuantileTransformer{})
	gob.Register(&stats.StandardScaler{})
}

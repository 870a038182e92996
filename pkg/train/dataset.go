package train

import (
	"math"

	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/dataprep"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

// FeatureRows selects the schema columns of f, in schema order, and parses
// every cell into a Value of the column's kind.
func FeatureRows(f *data.Frame, schema *pipeline.Schema) ([][]pipeline.Value, error) {
	sel, err := f.Select(schema.Names()...)
	if err != nil {
		return nil, err
	}
	rows := make([][]pipeline.Value, sel.Len())
	for i, r := range sel.Rows {
		row := make([]pipeline.Value, len(r))
		for j, cell := range r {
			row[j] = pipeline.ParseValue(schema.Fields[j].Kind, cell)
		}
		rows[i] = row
	}
	return rows, nil
}

// Labels parses the 0/1 label column of f.
func Labels(f *data.Frame, column string) ([]float64, error) {
	col, err := f.Column(column)
	if err != nil {
		return nil, err
	}
	y := make([]float64, len(col))
	for i, c := range col {
		v := dataprep.ParseNumeric(c)
		if math.IsNaN(v) || (v != 0 && v != 1) {
			return nil, errors.Wrapf(errs.ErrTrainingDataInvalid, "row %d: label %q is not 0 or 1", i, c)
		}
		y[i] = v
	}
	return y, nil
}

// IntLabels converts 0/1 float labels for the metric functions.
func IntLabels(y []float64) []int {
	out := make([]int, len(y))
	for i, v := range y {
		out[i] = int(v)
	}
	return out
}

func checkBothClasses(y []float64, set string) error {
	if len(y) == 0 {
		return errors.Wrapf(errs.ErrTrainingDataInvalid, "%s set is empty", set)
	}
	pos := 0
	for _, v := range y {
		if v == 1 {
			pos++
		}
	}
	if pos == 0 || pos == len(y) {
		return errors.Wrapf(errs.ErrTrainingDataInvalid, "%s labels are single-class", set)
	}
	return nil
}

package pipeline

import (
	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/dataprep"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/stats"
)

// Preprocessor turns a raw schema-ordered row into the numeric vector the
// model was trained on.
//
// Numeric columns: median imputation, quantile transform to a normal
// distribution, standardization. Categorical columns: most-frequent
// imputation, one-hot encoding, scaling to unit variance without centering.
// The output is the numeric block followed by the indicator block.
//
// After Fit the Preprocessor is read-only; Transform is a pure function of
// the fitted state and the input row, safe for concurrent use.
type Preprocessor struct {
	Columns           []Field
	SchemaFingerprint string

	NumericIdx     []int
	CategoricalIdx []int

	Numeric    *Chain
	CatImputer *dataprep.ModeImputer
	Encoder    *dataprep.OneHotEncoder
	CatScaler  *stats.StandardScaler

	Fitted bool
}

// PreprocessorOption configures a Preprocessor.
type PreprocessorOption func(*Preprocessor)

// WithQuantileOptions overrides the quantile transformer settings.
func WithQuantileOptions(opts ...dataprep.QuantileOption) PreprocessorOption {
	return func(p *Preprocessor) {
		p.Numeric.Steps[1] = dataprep.NewQuantileTransformer(opts...)
	}
}

// NewPreprocessor returns an unfitted Preprocessor for schema.
func NewPreprocessor(schema *Schema, opts ...PreprocessorOption) *Preprocessor {
	p := &Preprocessor{
		Columns:           append([]Field(nil), schema.Fields...),
		SchemaFingerprint: schema.Fingerprint(),
		NumericIdx:        schema.Indices(Numeric),
		CategoricalIdx:    schema.Indices(Categorical),
		Numeric: NewChain(
			&dataprep.MedianImputer{},
			dataprep.NewQuantileTransformer(),
			stats.NewStandardScaler(),
		),
		CatImputer: &dataprep.ModeImputer{},
		Encoder:    &dataprep.OneHotEncoder{},
		CatScaler:  stats.NewStandardScaler(stats.WithoutCentering()),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Fit learns every per-column statistic from rows.
func (p *Preprocessor) Fit(rows [][]Value) error {
	if len(rows) == 0 {
		return errors.Wrap(errs.ErrTrainingDataInvalid, "preprocessor: no rows to fit")
	}
	num := make([][]float64, len(rows))
	cat := make([][]string, len(rows))
	catMissing := make([][]bool, len(rows))
	for i, row := range rows {
		if err := p.checkRow(row); err != nil {
			return errors.Wrapf(err, "preprocessor: fit row %d", i)
		}
		num[i], cat[i], catMissing[i] = p.split(row)
	}

	if len(p.NumericIdx) > 0 {
		if err := p.Numeric.Fit(num); err != nil {
			return errors.Wrapf(errs.ErrTrainingDataInvalid, "preprocessor: numeric block: %v", err)
		}
	}
	if len(p.CategoricalIdx) > 0 {
		if err := p.CatImputer.Fit(cat, catMissing); err != nil {
			return errors.Wrapf(errs.ErrTrainingDataInvalid, "preprocessor: categorical block: %v", err)
		}
		imputed := make([][]string, len(cat))
		for i, row := range cat {
			imputed[i] = make([]string, len(row))
			if err := p.CatImputer.TransformRow(imputed[i], row, catMissing[i]); err != nil {
				return errors.Wrap(err, "preprocessor: impute categorical")
			}
		}
		if err := p.Encoder.Fit(imputed); err != nil {
			return errors.Wrapf(errs.ErrTrainingDataInvalid, "preprocessor: encode: %v", err)
		}
		encoded := make([][]float64, len(imputed))
		for i, row := range imputed {
			encoded[i] = make([]float64, p.Encoder.Width())
			if err := p.Encoder.TransformRow(encoded[i], row); err != nil {
				return errors.Wrap(err, "preprocessor: encode categorical")
			}
		}
		if err := p.CatScaler.Fit(encoded); err != nil {
			return errors.Wrapf(errs.ErrTrainingDataInvalid, "preprocessor: scale categorical: %v", err)
		}
	}
	p.Fitted = true
	return nil
}

// OutputWidth is the length of every transformed vector.
func (p *Preprocessor) OutputWidth() int {
	return len(p.NumericIdx) + p.Encoder.Width()
}

// FeatureNames names every output column.
func (p *Preprocessor) FeatureNames() []string {
	out := make([]string, 0, p.OutputWidth())
	for _, i := range p.NumericIdx {
		out = append(out, p.Columns[i].Name)
	}
	var cats []string
	for _, f := range dataprep.SelectColumns(p.Columns, p.CategoricalIdx) {
		cats = append(cats, f.Name)
	}
	return append(out, p.Encoder.FeatureNames(cats)...)
}

// TransformRow converts one raw row.
func (p *Preprocessor) TransformRow(row []Value) ([]float64, error) {
	if !p.Fitted {
		return nil, errors.Wrap(errs.ErrModelUnavailable, "preprocessor: not fitted")
	}
	if err := p.checkRow(row); err != nil {
		return nil, err
	}
	num, cat, catMissing := p.split(row)
	out := make([]float64, p.OutputWidth())

	nNum := len(p.NumericIdx)
	if nNum > 0 {
		if err := p.Numeric.TransformRow(out[:nNum], num); err != nil {
			return nil, errors.Wrapf(errs.ErrShapeMismatch, "preprocessor: numeric block: %v", err)
		}
	}
	if len(p.CategoricalIdx) > 0 {
		imputed := make([]string, len(cat))
		if err := p.CatImputer.TransformRow(imputed, cat, catMissing); err != nil {
			return nil, errors.Wrapf(errs.ErrShapeMismatch, "preprocessor: categorical block: %v", err)
		}
		block := out[nNum:]
		if err := p.Encoder.TransformRow(block, imputed); err != nil {
			return nil, errors.Wrapf(errs.ErrShapeMismatch, "preprocessor: encode: %v", err)
		}
		if err := p.CatScaler.TransformRow(block, block); err != nil {
			return nil, errors.Wrapf(errs.ErrShapeMismatch, "preprocessor: scale categorical: %v", err)
		}
	}
	return out, nil
}

// Transform converts rows; the first failing row aborts the batch.
func (p *Preprocessor) Transform(rows [][]Value) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		v, err := p.TransformRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		out[i] = v
	}
	return out, nil
}

func (p *Preprocessor) checkRow(row []Value) error {
	if len(row) != len(p.Columns) {
		return errors.Wrapf(errs.ErrShapeMismatch, "got %d columns, want %d", len(row), len(p.Columns))
	}
	for j, v := range row {
		if v.Kind != p.Columns[j].Kind {
			return errors.Wrapf(errs.ErrSchemaMismatch, "column %d (%s) is %s, want %s",
				j, p.Columns[j].Name, v.Kind, p.Columns[j].Kind)
		}
	}
	return nil
}

func (p *Preprocessor) split(row []Value) (num []float64, cat []string, catMissing []bool) {
	num = make([]float64, len(p.NumericIdx))
	for j, v := range dataprep.SelectColumns(row, p.NumericIdx) {
		num[j] = v.Num
	}
	cat = make([]string, len(p.CategoricalIdx))
	catMissing = make([]bool, len(p.CategoricalIdx))
	for j, v := range dataprep.SelectColumns(row, p.CategoricalIdx) {
		cat[j] = v.Str
		catMissing[j] = v.Null
	}
	return num, cat, catMissing
}

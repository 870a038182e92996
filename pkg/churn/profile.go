// Package churn reconstructs complete customer rows from partial records and
// scores them with a fitted preprocessor and model.
package churn

import (
	"math"

	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/data"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/dataprep"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/stats"
)

// Profile holds the population fallback value of every schema field: the
// median of numeric fields and the most frequent level of categorical ones.
// It is immutable once built.
type Profile struct {
	schema *pipeline.Schema
	values []pipeline.Value
}

// BuildProfile computes the fallback values from a reference dataset.
// Missing cells are ignored. Categorical ties go to the level seen first in
// row order.
func BuildProfile(schema *pipeline.Schema, ref *data.Frame) (*Profile, error) {
	if ref == nil || ref.Len() == 0 {
		return nil, errors.Wrap(errs.ErrDataUnavailable, "reference dataset is empty")
	}
	p := &Profile{schema: schema, values: make([]pipeline.Value, schema.Len())}
	for i, f := range schema.Fields {
		col, err := ref.Column(f.Name)
		if err != nil {
			return nil, errors.Wrap(err, "reference dataset")
		}
		switch f.Kind {
		case pipeline.Numeric:
			med := stats.NanMedian(dataprep.ParseNumericColumn(col))
			if math.IsNaN(med) {
				return nil, errors.Wrapf(errs.ErrDataUnavailable, "reference column %q has no numeric values", f.Name)
			}
			p.values[i] = pipeline.Number(med)
		case pipeline.Categorical:
			levels := make([]string, 0, len(col))
			for _, c := range col {
				if s := dataprep.ParseCategory(c); s != "" {
					levels = append(levels, s)
				}
			}
			mode, ok := stats.Mode(levels)
			if !ok {
				return nil, errors.Wrapf(errs.ErrDataUnavailable, "reference column %q has no values", f.Name)
			}
			p.values[i] = pipeline.Category(mode)
		}
	}
	return p, nil
}

// NewProfile builds a profile from explicit fallback values, one per schema
// field.
func NewProfile(schema *pipeline.Schema, values map[string]any) (*Profile, error) {
	p := &Profile{schema: schema, values: make([]pipeline.Value, schema.Len())}
	for i, f := range schema.Fields {
		raw, ok := values[f.Name]
		if !ok || raw == nil {
			return nil, errors.Wrapf(errs.ErrDataUnavailable, "no fallback for field %q", f.Name)
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		p.values[i] = v
	}
	return p, nil
}

func (p *Profile) Schema() *pipeline.Schema { return p.schema }

// Value returns the fallback for field name.
func (p *Profile) Value(name string) (pipeline.Value, bool) {
	i := p.schema.Index(name)
	if i < 0 {
		return pipeline.Value{}, false
	}
	return p.values[i], true
}

// Values returns a copy of the fallbacks in schema order.
func (p *Profile) Values() []pipeline.Value {
	return append([]pipeline.Value(nil), p.values...)
}

// Map renders the profile as field name to float64 or string.
func (p *Profile) Map() map[string]any {
	out := make(map[string]any, len(p.values))
	for i, f := range p.schema.Fields {
		if f.Kind == pipeline.Numeric {
			out[f.Name] = p.values[i].Num
		} else {
			out[f.Name] = p.values[i].Str
		}
	}
	return out
}

package churn

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/dataprep"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

// Derived holds the ratio features computed from the merged row. Every
// denominator is smoothed by +1.
//
// They are reported alongside predictions but are not part of the column
// layout the preprocessor was fitted on.
type Derived struct {
	RevPerMou         float64 `json:"rev_per_mou" yaml:"rev_per_mou"`
	OverageRatio      float64 `json:"overage_ratio" yaml:"overage_ratio"`
	EquipmentAgeRatio float64 `json:"equipment_age_ratio" yaml:"equipment_age_ratio"`
}

// Map keys the derived features by name.
func (d Derived) Map() map[string]float64 {
	return map[string]float64{
		pipeline.RevPerMou:         d.RevPerMou,
		pipeline.OverageRatio:      d.OverageRatio,
		pipeline.EquipmentAgeRatio: d.EquipmentAgeRatio,
	}
}

// MarshalJSON writes non-finite ratios as null; a zero-or-negative
// denominator can make them infinite.
func (d Derived) MarshalJSON() ([]byte, error) {
	m := d.Map()
	out := make(map[string]*float64, len(pipeline.DerivedNames))
	for _, name := range pipeline.DerivedNames {
		v := m[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[name] = nil
			continue
		}
		out[name] = &v
	}
	return json.Marshal(out)
}

// Row is a complete schema-ordered row ready for the preprocessor.
type Row struct {
	Values  []pipeline.Value
	Derived Derived
}

// Get returns the value of field name.
func (r *Row) Get(schema *pipeline.Schema, name string) (pipeline.Value, bool) {
	i := schema.Index(name)
	if i < 0 {
		return pipeline.Value{}, false
	}
	return r.Values[i], true
}

// Reconstruct merges rec over the profile: fields the caller supplied win,
// every other field takes the profile value. The derived ratios are computed
// on the merged values.
func Reconstruct(rec Record, p *Profile) (*Row, error) {
	if p == nil {
		return nil, errors.Wrap(errs.ErrDataUnavailable, "no reference profile")
	}
	schema := p.schema
	values := p.Values()

	// walk the schema rather than the map so the first reported error is stable
	for i, f := range schema.Fields {
		raw, ok := rec[f.Name]
		if !ok || raw == nil {
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	for i, v := range values {
		if v.Kind != schema.Fields[i].Kind || v.IsMissing() {
			return nil, errors.Wrapf(errs.ErrSchemaMismatch, "field %q has no value", schema.Fields[i].Name)
		}
	}

	return &Row{Values: values, Derived: derive(schema, values)}, nil
}

func derive(schema *pipeline.Schema, values []pipeline.Value) Derived {
	num := func(name string) float64 {
		i := schema.Index(name)
		if i < 0 {
			return math.NaN()
		}
		return values[i].Num
	}
	mou := num("mou_Mean")
	return Derived{
		RevPerMou:         dataprep.SmoothedRatio(num("rev_Mean"), mou),
		OverageRatio:      dataprep.SmoothedRatio(num("ovrmou_Mean"), mou),
		EquipmentAgeRatio: dataprep.SmoothedRatio(num("eqpdays"), num("months")),
	}
}

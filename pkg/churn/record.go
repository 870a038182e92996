package churn

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/pipeline"
)

// Record is a partial customer record as supplied by a caller. Keys outside
// the schema are ignored. A nil value counts as not supplied.
type Record map[string]any

// coerce converts a caller value to the kind of field f. Numeric fields take
// any finite number, including numeric strings; categorical fields take
// strings only, trimmed the same way training cells are.
func coerce(f pipeline.Field, raw any) (pipeline.Value, error) {
	if f.Kind == pipeline.Categorical {
		s, ok := raw.(string)
		if !ok {
			return pipeline.Value{}, errors.Wrapf(errs.ErrSchemaMismatch, "field %q wants a string, got %T", f.Name, raw)
		}
		return pipeline.Category(strings.TrimSpace(s)), nil
	}

	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint32:
		v = float64(x)
	case uint64:
		v = float64(x)
	case json.Number:
		f64, err := x.Float64()
		if err != nil {
			return pipeline.Value{}, errors.Wrapf(errs.ErrSchemaMismatch, "field %q: %v", f.Name, err)
		}
		v = f64
	case string:
		f64, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return pipeline.Value{}, errors.Wrapf(errs.ErrSchemaMismatch, "field %q wants a number, got %q", f.Name, x)
		}
		v = f64
	default:
		return pipeline.Value{}, errors.Wrapf(errs.ErrSchemaMismatch, "field %q wants a number, got %T", f.Name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return pipeline.Value{}, errors.Wrapf(errs.ErrSchemaMismatch, "field %q is not a finite number", f.Name)
	}
	return pipeline.Number(v), nil
}

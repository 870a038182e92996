package pipeline

import (
	"math"
	"strconv"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/dataprep"
)

// Value is one cell of a feature row: a float for numeric fields or a
// string for categorical ones. A missing numeric value is NaN; a missing
// categorical value has Null set. The empty string is a real category.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Null bool
}

func Number(f float64) Value  { return Value{Kind: Numeric, Num: f} }
func Category(s string) Value { return Value{Kind: Categorical, Str: s} }

// Missing returns the missing value for kind k.
func Missing(k Kind) Value {
	if k == Numeric {
		return Number(math.NaN())
	}
	return Value{Kind: Categorical, Null: true}
}

func (v Value) IsMissing() bool {
	if v.Kind == Numeric {
		return math.IsNaN(v.Num)
	}
	return v.Null
}

func (v Value) String() string {
	if v.Kind == Numeric {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}

// ParseValue converts a raw CSV cell into a Value of kind k.
func ParseValue(k Kind, raw string) Value {
	if k == Numeric {
		return Number(dataprep.ParseNumeric(raw))
	}
	if dataprep.IsMissing(raw) {
		return Missing(k)
	}
	return Category(dataprep.ParseCategory(raw))
}

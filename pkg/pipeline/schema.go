package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Kind tags a schema field as numeric or categorical.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Field is one named, typed column of a Schema.
type Field struct {
	Name string
	Kind Kind
}

// Schema describes the ordered structure of a feature row.
type Schema struct {
	Fields []Field
	index  map[string]int
}

// NewSchema builds a Schema from fields in order. Duplicate names panic:
// a schema is program text, not input.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{Fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic("pipeline: duplicate schema field " + f.Name)
		}
		s.index[f.Name] = i
	}
	return s
}

func (s *Schema) Len() int { return len(s.Fields) }

// Names returns the field names in schema order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Index returns the position of name, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether name is a schema field.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Indices returns the positions of the fields of the given kind, in order.
func (s *Schema) Indices(k Kind) []int {
	var out []int
	for i, f := range s.Fields {
		if f.Kind == k {
			out = append(out, i)
		}
	}
	return out
}

// NamesOf returns the names of the fields of the given kind, in order.
func (s *Schema) NamesOf(k Kind) []string {
	var out []string
	for _, f := range s.Fields {
		if f.Kind == k {
			out = append(out, f.Name)
		}
	}
	return out
}

// Fingerprint identifies the exact field order and kinds. Artifacts fitted
// against one schema carry its fingerprint so a reordered schema is rejected.
func (s *Schema) Fingerprint() string {
	var b strings.Builder
	for _, f := range s.Fields {
		b.WriteString(f.Name)
		b.WriteByte(':')
		b.WriteString(f.Kind.String())
		b.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Derived feature names, computed from the base fields at serving time.
const (
	RevPerMou         = "rev_per_mou"
	OverageRatio      = "overage_ratio"
	EquipmentAgeRatio = "equipment_age_ratio"
)

// DerivedNames lists the derived features in the order they are computed.
var DerivedNames = []string{RevPerMou, OverageRatio, EquipmentAgeRatio}

// LabelColumn is the 0/1 target column in training data.
const LabelColumn = "churn"

// ChurnSchema is the 27-field layout every churn artifact is fitted against:
// 25 numeric usage/account fields followed by 2 categorical fields. The
// order is part of the fitted preprocessor contract.
var ChurnSchema = NewSchema(
	Field{"mou_Mean", Numeric},
	Field{"avgmou", Numeric},
	Field{"peak_vce_Mean", Numeric},
	Field{"opk_vce_Mean", Numeric},
	Field{"mou_peav_Mean", Numeric},
	Field{"mou_opkv_Mean", Numeric},
	Field{"roam_Mean", Numeric},
	Field{"change_mou", Numeric},
	Field{"change_rev", Numeric},
	Field{"rev_Mean", Numeric},
	Field{"totmrc_Mean", Numeric},
	Field{"ovrmou_Mean", Numeric},
	Field{"ovrrev_Mean", Numeric},
	Field{"vceovr_Mean", Numeric},
	Field{"datovr_Mean", Numeric},
	Field{"drop_blk_Mean", Numeric},
	Field{"attempt_Mean", Numeric},
	Field{"complete_Mean", Numeric},
	Field{"months", Numeric},
	Field{"uniqsubs", Numeric},
	Field{"actvsubs", Numeric},
	Field{"eqpdays", Numeric},
	Field{"phones", Numeric},
	Field{"models", Numeric},
	Field{"hnd_price", Numeric},
	Field{"refurb_new", Categorical},
	Field{"creditcd", Categorical},
)

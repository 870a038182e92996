package dataprep

import (
	"fmt"
	"sort"
)

// OneHotEncoder maps each categorical column onto indicator columns, one
// per category seen at fit time. Categories are kept sorted so the layout
// does not depend on row order. A category unseen at fit time encodes as
// all zeros.
type OneHotEncoder struct {
	Categories [][]string
}

func (e *OneHotEncoder) Fit(X [][]string) error {
	if len(X) == 0 {
		return fmt.Errorf("one-hot: empty X")
	}
	c := len(X[0])
	e.Categories = make([][]string, c)
	for j := 0; j < c; j++ {
		unique := map[string]struct{}{}
		for i := range X {
			if len(X[i]) != c {
				return fmt.Errorf("one-hot: row %d has %d columns, want %d", i, len(X[i]), c)
			}
			unique[X[i][j]] = struct{}{}
		}
		cats := make([]string, 0, len(unique))
		for v := range unique {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		e.Categories[j] = cats
	}
	return nil
}

// Width is the number of indicator columns produced per row.
func (e *OneHotEncoder) Width() int {
	w := 0
	for _, cats := range e.Categories {
		w += len(cats)
	}
	return w
}

// FeatureNames returns "<column>_<category>" for every indicator column.
func (e *OneHotEncoder) FeatureNames(columns []string) []string {
	out := make([]string, 0, e.Width())
	for j, cats := range e.Categories {
		for _, c := range cats {
			out = append(out, columns[j]+"_"+c)
		}
	}
	return out
}

// TransformRow writes the indicator encoding of row into dst, which must
// have length Width().
func (e *OneHotEncoder) TransformRow(dst []float64, row []string) error {
	if len(row) != len(e.Categories) {
		return fmt.Errorf("one-hot: got %d columns, want %d", len(row), len(e.Categories))
	}
	if len(dst) != e.Width() {
		return fmt.Errorf("one-hot: destination has %d slots, want %d", len(dst), e.Width())
	}
	off := 0
	for j, v := range row {
		cats := e.Categories[j]
		for k := range cats {
			dst[off+k] = 0
		}
		if k := sort.SearchStrings(cats, v); k < len(cats) && cats[k] == v {
			dst[off+k] = 1
		}
		off += len(cats)
	}
	return nil
}

package dataprep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric(t *testing.T) {
	assert.Equal(t, 1.5, ParseNumeric(" 1.5 "))
	assert.True(t, math.IsNaN(ParseNumeric("")))
	assert.True(t, math.IsNaN(ParseNumeric("NA")))
	assert.True(t, math.IsNaN(ParseNumeric("abc")))
	assert.Equal(t, "", ParseCategory("NaN"))
	assert.Equal(t, "Y", ParseCategory(" Y"))
}

func TestMedianImputer(t *testing.T) {
	nan := math.NaN()
	X := [][]float64{{1, nan}, {nan, 4}, {3, 6}}
	var m MedianImputer
	require.NoError(t, m.Fit(X))
	assert.Equal(t, []float64{2, 5}, m.Fill)

	dst := make([]float64, 2)
	require.NoError(t, m.TransformRow(dst, []float64{nan, 10}))
	assert.Equal(t, []float64{2, 10}, dst)

	assert.Error(t, m.TransformRow(dst, []float64{1}))
}

func TestMedianImputer_AllMissingColumn(t *testing.T) {
	var m MedianImputer
	assert.Error(t, m.Fit([][]float64{{math.NaN()}}))
}

func TestModeImputer(t *testing.T) {
	X := [][]string{{"N", ""}, {"Y", "B"}, {"Y", "A"}, {"", "A"}}
	missing := [][]bool{{false, true}, {false, false}, {false, false}, {true, false}}
	var m ModeImputer
	require.NoError(t, m.Fit(X, missing))
	assert.Equal(t, []string{"Y", "A"}, m.Fill)

	dst := make([]string, 2)
	require.NoError(t, m.TransformRow(dst, []string{"", "C"}, []bool{true, false}))
	assert.Equal(t, []string{"Y", "C"}, dst)
}

func TestModeImputer_EmptyStringIsALevel(t *testing.T) {
	var m ModeImputer
	require.NoError(t, m.Fit([][]string{{""}, {""}, {"Y"}}, nil))
	assert.Equal(t, []string{""}, m.Fill)

	dst := make([]string, 1)
	require.NoError(t, m.TransformRow(dst, []string{""}, nil))
	assert.Equal(t, []string{""}, dst)

	assert.Error(t, m.Fit([][]string{{"Y"}}, [][]bool{}))
}

func TestOneHotEncoder(t *testing.T) {
	var e OneHotEncoder
	require.NoError(t, e.Fit([][]string{{"Y", "R"}, {"N", "N"}}))
	assert.Equal(t, [][]string{{"N", "Y"}, {"N", "R"}}, e.Categories)
	assert.Equal(t, 4, e.Width())
	assert.Equal(t, []string{"c_N", "c_Y", "r_N", "r_R"}, e.FeatureNames([]string{"c", "r"}))

	dst := make([]float64, 4)
	require.NoError(t, e.TransformRow(dst, []string{"Y", "N"}))
	assert.Equal(t, []float64{0, 1, 1, 0}, dst)
}

func TestOneHotEncoder_UnknownCategoryIsAllZero(t *testing.T) {
	var e OneHotEncoder
	require.NoError(t, e.Fit([][]string{{"Y"}, {"N"}}))
	dst := []float64{9, 9}
	require.NoError(t, e.TransformRow(dst, []string{"Z"}))
	assert.Equal(t, []float64{0, 0}, dst)
}

func TestQuantileTransformer(t *testing.T) {
	X := make([][]float64, 0, 101)
	for i := 0; i <= 100; i++ {
		X = append(X, []float64{float64(i)})
	}
	q := NewQuantileTransformer(WithNQuantiles(101))
	require.NoError(t, q.Fit(X))
	assert.Len(t, q.References, 101)

	dst := make([]float64, 1)
	require.NoError(t, q.TransformRow(dst, []float64{50}))
	assert.InDelta(t, 0, dst[0], 1e-9)

	require.NoError(t, q.TransformRow(dst, []float64{-1000}))
	assert.InDelta(t, -normalClip, dst[0], 1e-12)
	require.NoError(t, q.TransformRow(dst, []float64{1000}))
	assert.InDelta(t, normalClip, dst[0], 1e-12)
	assert.InDelta(t, 5.1993, normalClip, 1e-3)

	// monotone
	var prev = math.Inf(-1)
	for _, v := range []float64{1, 10, 25.5, 60, 99} {
		require.NoError(t, q.TransformRow(dst, []float64{v}))
		assert.Greater(t, dst[0], prev)
		prev = dst[0]
	}
}

func TestQuantileTransformer_RepeatedQuantilesMapToMidpoint(t *testing.T) {
	X := [][]float64{{0}, {1}, {1}, {1}, {2}}
	q := NewQuantileTransformer(WithNQuantiles(5))
	require.NoError(t, q.Fit(X))
	assert.Equal(t, []float64{0, 1, 1, 1, 2}, q.Quantiles[0])

	dst := make([]float64, 1)
	require.NoError(t, q.TransformRow(dst, []float64{1}))
	assert.InDelta(t, 0, dst[0], 1e-9)
}

func TestQuantileTransformer_Deterministic(t *testing.T) {
	X := make([][]float64, 0, 500)
	for i := 0; i < 500; i++ {
		X = append(X, []float64{float64((i * 37) % 101)})
	}
	a := NewQuantileTransformer(WithSubsample(100))
	b := NewQuantileTransformer(WithSubsample(100))
	require.NoError(t, a.Fit(X))
	require.NoError(t, b.Fit(X))
	assert.Equal(t, a.Quantiles, b.Quantiles)
}

func TestSmoothedRatio(t *testing.T) {
	assert.Equal(t, 10.0, SmoothedRatio(10, 0))
	assert.Equal(t, 0.5, SmoothedRatio(1, 1))
}

func TestSelectColumns(t *testing.T) {
	assert.Equal(t, []string{"c", "a"}, SelectColumns([]string{"a", "b", "c"}, []int{2, 0}))
}

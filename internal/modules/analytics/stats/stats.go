// Package stats provides the statistical primitives used by the analytics
// engine: a chi-squared test over 2x2 contingency tables and the conversion
// from p-values to a 0-100 significance score.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquaredResult holds the outcome of a chi-squared independence test.
type ChiSquaredResult struct {
	ChiSquared float64 `json:"chi_squared"`
	PValue     float64 `json:"p_value"`
}

// ChiSquaredTest runs a chi-squared independence test on a 2x2 contingency
// table. Rows are the signal and comparison cohorts, columns are
// converted/not-converted:
//
//	a = signal converted      b = signal not converted
//	c = comparison converted  d = comparison not converted
//
// A table with any zero row or column total carries no evidence and returns
// {ChiSquared: 0, PValue: 1} rather than an error.
func ChiSquaredTest(a, b, c, d int) ChiSquaredResult {
	row1 := float64(a + b)
	row2 := float64(c + d)
	col1 := float64(a + c)
	col2 := float64(b + d)
	n := row1 + row2

	if row1 == 0 || row2 == 0 || col1 == 0 || col2 == 0 {
		return ChiSquaredResult{ChiSquared: 0, PValue: 1}
	}

	observed := [4]float64{float64(a), float64(b), float64(c), float64(d)}
	expected := [4]float64{
		row1 * col1 / n,
		row1 * col2 / n,
		row2 * col1 / n,
		row2 * col2 / n,
	}

	chi := 0.0
	for i := range observed {
		diff := observed[i] - expected[i]
		chi += diff * diff / expected[i]
	}

	return ChiSquaredResult{ChiSquared: chi, PValue: chiSquaredPValue(chi)}
}

// chiSquaredPValue converts a chi-squared statistic with one degree of
// freedom to a two-tailed p-value. With df=1 the statistic is z^2, so the
// p-value follows from the unit normal CDF.
func chiSquaredPValue(chi float64) float64 {
	if chi <= 0 {
		return 1
	}
	z := math.Sqrt(chi)
	p := 2 * distuv.UnitNormal.Survival(z)
	return math.Max(0, math.Min(1, p))
}

// Significance rescales a p-value to a 0-100 confidence score.
// p=0 maps to 100, p=1 maps to 0.
func Significance(pValue float64) float64 {
	return math.Max(0, math.Min(100, (1-pValue)*100))
}

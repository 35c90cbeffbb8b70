package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChiSquaredTest_SignificantDifference(t *testing.T) {
	// 30% vs 10% conversion at n=100 per group is significant at p<0.05.
	result := ChiSquaredTest(30, 70, 10, 90)

	assert.Greater(t, result.ChiSquared, 3.84, "should exceed the df=1 critical value")
	assert.Less(t, result.PValue, 0.05)
	assert.InDelta(t, 12.5, result.ChiSquared, 0.001)
}

func TestChiSquaredTest_NoDifference(t *testing.T) {
	// Identical conversion rates carry no evidence of a difference.
	result := ChiSquaredTest(20, 80, 20, 80)

	assert.InDelta(t, 0, result.ChiSquared, 1e-9)
	assert.InDelta(t, 1, result.PValue, 1e-9)
}

func TestChiSquaredTest_GroupSwapSymmetry(t *testing.T) {
	tables := [][4]int{
		{30, 70, 10, 90},
		{5, 95, 8, 92},
		{1, 1, 1, 1},
		{12, 40, 33, 7},
	}

	for _, tbl := range tables {
		forward := ChiSquaredTest(tbl[0], tbl[1], tbl[2], tbl[3])
		swapped := ChiSquaredTest(tbl[2], tbl[3], tbl[0], tbl[1])
		assert.InDelta(t, forward.ChiSquared, swapped.ChiSquared, 1e-9)
		assert.InDelta(t, forward.PValue, swapped.PValue, 1e-9)
	}
}

func TestChiSquaredTest_DegenerateTables(t *testing.T) {
	cases := []struct {
		name       string
		a, b, c, d int
	}{
		{"all zeros", 0, 0, 0, 0},
		{"zero signal row", 0, 0, 10, 90},
		{"zero comparison row", 10, 90, 0, 0},
		{"nobody converted", 0, 50, 0, 50},
		{"everybody converted", 50, 0, 50, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ChiSquaredTest(tc.a, tc.b, tc.c, tc.d)
			assert.Equal(t, 0.0, result.ChiSquared)
			assert.Equal(t, 1.0, result.PValue)
		})
	}
}

func TestSignificance_Endpoints(t *testing.T) {
	assert.Equal(t, 100.0, Significance(0))
	assert.Equal(t, 0.0, Significance(1))
}

func TestSignificance_MonotonicallyNonIncreasing(t *testing.T) {
	prev := Significance(0)
	for p := 0.01; p <= 1.0; p += 0.01 {
		s := Significance(p)
		require.LessOrEqual(t, s, prev, "significance must not increase with p")
		prev = s
	}
}

func TestSignificance_Clamped(t *testing.T) {
	assert.Equal(t, 100.0, Significance(-0.5))
	assert.Equal(t, 0.0, Significance(1.5))
}

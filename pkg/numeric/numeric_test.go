package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPow_MatchesMathPow(t *testing.T) {
	cases := []struct{ a, b float64 }{
		{2, 10}, {5, -5}, {0.5, 3.2}, {100, -0.333},
	}
	for _, c := range cases {
		got := Pow(c.a, c.b)
		want := math.Pow(c.a, c.b)
		assert.InEpsilon(t, want, got, 1e-9, "Pow(%v,%v)", c.a, c.b)
	}
}

func TestPow_NonPositiveBaseIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Pow(0, 5))
	assert.Equal(t, 0.0, Pow(-1, 5))
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 2.0, SafeDiv(4, 2))
	assert.Equal(t, 0.0, SafeDiv(4, 0))
	assert.Equal(t, 0.0, SafeDiv(4, 1e-13))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-5))
	assert.Equal(t, 1.0, Clamp01(5))
	assert.Equal(t, 0.5, Clamp01(0.5))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
}

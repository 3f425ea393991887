package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruce-hill/blangc/internal/units"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want units.Unit
	}{
		{"empty", "", units.None},
		{"single atom", "m", "m"},
		{"percent passthrough", "%", units.Percent},
		{"duplicate atoms merge", "m*m", "m^2"},
		{"division", "m/s", "m/s"},
		{"explicit exponent", "m^2/s^2", "m^2/s^2"},
		{"cancelling exponents drop the atom", "m*m^-1", units.None},
		{"reordered atoms canonicalize the same", "s*m", "m*s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, units.Normalize(tc.raw))
		})
	}
}

func TestNormalizeReorderedEquivalence(t *testing.T) {
	require.Equal(t, units.Normalize("m/s"), units.Normalize("m*s^-1"))
}

func TestIntern(t *testing.T) {
	a := units.Intern("m*s^-1")
	b := units.Intern("m/s")
	assert.Equal(t, a, b)
}

func TestMulDiv(t *testing.T) {
	m := units.Intern("m")
	s := units.Intern("s")
	assert.Equal(t, units.Unit("m/s"), units.Mul(m, units.Div(units.None, s)))
	assert.Equal(t, units.Unit("m^2"), units.Mul(m, m))
	assert.Equal(t, m, units.Div(m, units.None))
	assert.Equal(t, units.None, units.Div(m, m))
}

func TestMulPercentDropsMarker(t *testing.T) {
	m := units.Intern("m")
	assert.Equal(t, m, units.Mul(units.Percent, m))
	assert.Equal(t, m, units.Mul(m, units.Percent))
}

func TestEqual(t *testing.T) {
	assert.True(t, units.Equal(units.Normalize("m*s"), units.Normalize("s*m")))
	assert.False(t, units.Equal(units.Normalize("m"), units.Normalize("s")))
}

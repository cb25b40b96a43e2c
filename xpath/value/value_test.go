package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundSignPreservation(t *testing.T) {
	// round(-0.25) -> -0 ; round(-0.5) -> 0
	r1 := NewDouble(-0.25).Round()
	assert.Equal(t, 0.0, r1.F)
	assert.True(t, math.Signbit(r1.F), "round(-0.25) should preserve negative zero")

	r2 := NewDouble(-0.5).Round()
	assert.Equal(t, 0.0, r2.F)
	assert.False(t, math.Signbit(r2.F), "round(-0.5) should be positive zero")

	r3 := NewDouble(0.5).Round()
	assert.Equal(t, 1.0, r3.F)
}

func TestNaNNeverEqual(t *testing.T) {
	nan := NewDouble(math.NaN())
	_, ok := nan.Compare(nan)
	assert.False(t, ok, "NaN must never compare equal, even to itself")
}

func TestEffectiveBooleanValue(t *testing.T) {
	tests := []struct {
		name string
		seq  Sequence
		want bool
	}{
		{"empty", Empty(), false},
		{"true bool", Single(BooleanAtomic(true)), true},
		{"false bool", Single(BooleanAtomic(false)), false},
		{"zero number", Single(NumericAtomic(NewInteger(0))), false},
		{"nan number", Single(NumericAtomic(NewDouble(math.NaN()))), false},
		{"nonzero number", Single(NumericAtomic(NewInteger(1))), true},
		{"empty string", Single(StringAtomic("")), false},
		{"nonempty string", Single(StringAtomic("x")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectiveBooleanValue(tt.seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveBooleanValueMultiItemNonNodeIsTypeError(t *testing.T) {
	_, err := EffectiveBooleanValue(Sequence{StringAtomic("a"), StringAtomic("b")})
	assert.Error(t, err)
}

func TestMapPutPreservesInsertionOrder(t *testing.T) {
	m := NewMap().Put(StringAtomic("b"), Single(NumericAtomic(NewInteger(2)))).
		Put(StringAtomic("a"), Single(NumericAtomic(NewInteger(1))))
	keys := m.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, "b", keys[0].Lexical())
	assert.Equal(t, "a", keys[1].Lexical())
}

func TestArrayIsOneIndexed(t *testing.T) {
	a := NewArray([]Sequence{Single(StringAtomic("x")), Single(StringAtomic("y"))})
	v, ok := a.Get(1)
	require.True(t, ok)
	assert.Equal(t, StringAtomic("x"), v[0])
	_, ok = a.Get(0)
	assert.False(t, ok)
}

func TestDurationLexicalRoundTrip(t *testing.T) {
	d, err := ParseDuration("P1Y2M3DT4H5M6S")
	require.NoError(t, err)
	assert.Equal(t, "P1Y2M3DT4H5M6S", d.Lexical())
	assert.Equal(t, KDuration, d.Kind())
}

func TestDateTimeLexicalRoundTrip(t *testing.T) {
	d, err := ParseDateTime("2024-07-09T08:05:03")
	require.NoError(t, err)
	assert.Equal(t, "2024-07-09T08:05:03", d.Lexical())
	y, ok := d.Year()
	assert.True(t, ok)
	assert.Equal(t, 2024, y)
}

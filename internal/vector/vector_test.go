package vector

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/basket/internal/fpdecimal"
)

func mustVec(t *testing.T, values ...string) Vector {
	t.Helper()
	v, err := Parse(values)
	require.NoError(t, err)
	return v
}

func TestReductions(t *testing.T) {
	t.Parallel()

	a := mustVec(t, "1", "2.5", "-3")
	b := mustVec(t, "4", "0.2", "2")

	sum, err := Sum(a)
	require.NoError(t, err)
	assert.Equal(t, "0.5", sum.String())

	empty, err := Sum(nil)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	dot, err := Dot(a, b)
	require.NoError(t, err)
	assert.Equal(t, "-1.5", dot.String())
}

func TestElementwise(t *testing.T) {
	t.Parallel()

	a := mustVec(t, "1", "2.5", "-3")
	b := mustVec(t, "4", "0.2", "2")

	tests := []struct {
		name string
		fn   func(a, b Vector) (Vector, error)
		want []string
	}{
		{"mul", Mul, []string{"4", "0.5", "-6"}},
		{"add", Add, []string{"5", "2.7", "-1"}},
		{"sub", Sub, []string{"-3", "2.3", "-5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(a, b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Strings())
		})
	}

	scaled, err := MulConst(a, fpdecimal.MustParse("-2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"-2", "-5", "6"}, scaled.Strings())

	halved, err := DivConst(a, fpdecimal.Two)
	require.NoError(t, err)
	assert.Equal(t, []string{"0.5", "1.25", "-1.5"}, halved.Strings())

	assert.Equal(t, []string{"1", "2.5", "3"}, Abs(a).Strings())
	assert.Equal(t, []string{"-1", "-2.5", "3"}, Neg(a).Strings())

	assert.Equal(t, []string{"1", "2.5", "-3"}, a.Strings(), "inputs are not modified")
}

func TestLengthMismatch(t *testing.T) {
	t.Parallel()

	a := mustVec(t, "1", "2")
	b := mustVec(t, "1", "2", "3")

	for name, fn := range map[string]func(a, b Vector) (Vector, error){"mul": Mul, "add": Add, "sub": Sub} {
		_, err := fn(a, b)
		assert.ErrorIs(t, err, ErrLengthMismatch, name)
	}
	_, err := Dot(a, b)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestErrorPropagation(t *testing.T) {
	t.Parallel()

	_, err := DivConst(mustVec(t, "1"), fpdecimal.Zero)
	assert.ErrorIs(t, err, fpdecimal.ErrDivisionByZero)

	huge := fpdecimal.MustParse("1" + "00000000000000000000000000000000000000000000000000")
	_, err = Mul(Vector{huge, fpdecimal.One}, Vector{huge, fpdecimal.One})
	assert.ErrorIs(t, err, fpdecimal.ErrOverflow)

	_, err = Sum(Vector{huge, huge, huge, huge, huge, huge, huge, huge, huge, huge, huge, huge})
	assert.NoError(t, err)

	_, err = Parse([]string{"1", ".5"})
	assert.ErrorIs(t, err, fpdecimal.ErrMalformedInput)
}

func TestFromInts(t *testing.T) {
	t.Parallel()

	v, err := FromInts([]sdkmath.Int{sdkmath.NewInt(10), sdkmath.NewInt(-3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "-3"}, v.Strings())
	assert.Len(t, Zeros(3), 3)
}

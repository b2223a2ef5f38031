package fpdecimal

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(FPDecimal) (FPDecimal, error)
		in   string
		want string
	}{
		{"exp", Exp, "0", "1"},
		{"exp", Exp, "1", "2.718281828459045235"},
		{"exp", Exp, "-1", "0.367879441171442321"},
		{"exp", Exp, "10", "22026.465794806716516957"},
		{"exp", Exp, "-50", "0"},
		{"ln", Ln, "1", "0"},
		{"ln", Ln, "2", "0.693147180559945309"},
		{"ln", Ln, "0.5", "-0.693147180559945309"},
		{"ln", Ln, "10", "2.302585092994045684"},
		{"ln", Ln, "2.718281828459045235", "0.999999999999999999"},
		{"log10", Log10, "2", "0.301029995663981195"},
		{"sqrt", Sqrt, "0", "0"},
		{"sqrt", Sqrt, "2", "1.414213562373095048"},
		{"sqrt", Sqrt, "4", "2"},
		{"sqrt", Sqrt, "0.25", "0.5"},
		{"sin", Sin, "0", "0"},
		{"sin", Sin, "1", "0.841470984807896506"},
		{"sin", Sin, "-1", "-0.841470984807896506"},
		{"sin", Sin, "3.141592653589793238", "0"},
		{"cos", Cos, "0", "1"},
		{"cos", Cos, "1", "0.540302305868139717"},
		{"cos", Cos, "-1", "0.540302305868139717"},
		{"tan", Tan, "0", "0"},
		{"tan", Tan, "1", "1.55740772465490223"},
		{"sinh", Sinh, "0", "0"},
		{"sinh", Sinh, "1", "1.175201193643801456"},
		{"sinh", Sinh, "-1", "-1.175201193643801456"},
		{"cosh", Cosh, "0", "1"},
		{"cosh", Cosh, "1", "1.543080634815243778"},
		{"cosh", Cosh, "-1", "1.543080634815243778"},
		{"tanh", Tanh, "0", "0"},
		{"tanh", Tanh, "1", "0.761594155955764888"},
		{"tanh", Tanh, "-1", "-0.761594155955764888"},
		{"tanh", Tanh, "100", "1"},
		{"tanh", Tanh, "-500", "-1"},
	}
	for _, tt := range tests {
		got, err := tt.fn(MustParse(tt.in))
		require.NoError(t, err, "%s(%s)", tt.name, tt.in)
		assert.Equal(t, tt.want, got.String(), "%s(%s)", tt.name, tt.in)
	}
}

func TestUnary_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(FPDecimal) (FPDecimal, error)
		in   string
		want error
	}{
		{"exp", Exp, "200", ErrOverflow},
		{"ln", Ln, "0", ErrInvalidOperation},
		{"ln", Ln, "-1", ErrInvalidOperation},
		{"log10", Log10, "0", ErrInvalidOperation},
		{"sqrt", Sqrt, "-4", ErrInvalidOperation},
		{"sinh", Sinh, "200", ErrOverflow},
		{"cosh", Cosh, "-200", ErrOverflow},
	}
	for _, tt := range tests {
		_, err := tt.fn(MustParse(tt.in))
		assert.ErrorIs(t, err, tt.want, "%s(%s)", tt.name, tt.in)
	}
}

func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2.718281828459045235", E.String())
	assert.Equal(t, "3.141592653589793238", Pi.String())
}

func TestPow(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			a, b, want string
		}{
			{"2", "10", "1024"},
			{"2", "-2", "0.25"},
			{"-2", "3", "-8"},
			{"-2", "2", "4"},
			{"1.5", "2", "2.25"},
			{"7", "0", "1"},
			{"0", "3", "0"},
			{"0", "0", "1"},
			{"2", "0.5", "1.414213562373095048"},
			{"10", "-18", "0.000000000000000001"},
			{"10", "-20", "0"},
		}
		for _, tt := range tests {
			got, err := Pow(MustParse(tt.a), MustParse(tt.b))
			require.NoError(t, err, "pow(%s, %s)", tt.a, tt.b)
			want := MustParse(tt.want)
			assert.True(t, want.Equal(got), "pow(%s, %s) = %s, want %s", tt.a, tt.b, got, want)
		}
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		_, err := Pow(Zero, New(-1))
		assert.ErrorIs(t, err, ErrDivisionByZero)

		_, err = Pow(New(-2), MustParse("0.5"))
		assert.ErrorIs(t, err, ErrInvalidOperation)

		_, err = Pow(Ten, New(100))
		assert.ErrorIs(t, err, ErrOverflow)

		_, err = Pow(Ten, MustParse("100.5"))
		assert.ErrorIs(t, err, ErrOverflow)
	})
}

func TestDeterminism(t *testing.T) {
	t.Parallel()

	fns := []func(FPDecimal) (FPDecimal, error){Exp, Ln, Sqrt, Sin, Cos, Sinh, Cosh, Tanh}
	x := MustParse("1.234567890123456789")
	for _, fn := range fns {
		a, err := fn(x)
		require.NoError(t, err)
		b, err := fn(x)
		require.NoError(t, err)
		assert.Equal(t, a.Magnitude().String(), b.Magnitude().String())
	}
}

func TestHyperbolicIdentity(t *testing.T) {
	t.Parallel()

	t.Run("working precision", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"0", "0.1", "-0.5", "1", "3.75", "-12", "20"} {
			p, n, err := expPair(MustParse(s))
			require.NoError(t, err)
			c, sh := coshWork(p, n), sinhWork(p, n)
			diff := new(big.Int).Sub(wmul(c, c), wmul(sh, sh))
			diff.Sub(diff, workScale)
			assert.True(t, diff.CmpAbs(guardScale) < 0, "cosh^2 - sinh^2 - 1 at %s is %s", s, diff)
		}
	})

	t.Run("18 digits", func(t *testing.T) {
		t.Parallel()

		// Cosh and Sinh are each truncated to 18 digits and Mul truncates again,
		// so the squares drift by at most 2*cosh(x)+1 units of the last digit.
		// The one-unit identity is checked by "working precision" above.
		tolerance := MustParse("0.000000000000000006")
		for _, s := range []string{"0", "0.1", "-0.5", "1", "-1.2"} {
			x := MustParse(s)
			c := Must(Cosh(x))
			sh := Must(Sinh(x))
			got := Must(Must(c.Mul(c)).Sub(Must(sh.Mul(sh))))
			off := Must(got.Sub(One)).Abs()
			assert.True(t, off.LTE(tolerance), "cosh^2 - sinh^2 at %s is %s", s, got)
		}
	})
}

func TestTanh_Monotone(t *testing.T) {
	t.Parallel()

	prev := Must(Tanh(New(-120)))
	step := MustParse("0.37")
	for x := New(-120); x.LT(New(120)); x = Must(x.Add(step)) {
		cur := Must(Tanh(x))
		assert.True(t, cur.GTE(prev), "tanh not monotone at %s", x)
		assert.True(t, cur.Abs().LTE(One))
		prev = cur
	}
}

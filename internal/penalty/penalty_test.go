package penalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/vector"
)

func testParams() Params {
	return Params{
		AlphaPlus:  fpdecimal.MustParse("0.5"),
		SigmaPlus:  fpdecimal.MustParse("0.1"),
		AlphaMinus: fpdecimal.MustParse("0.1"),
		SigmaMinus: fpdecimal.MustParse("0.3"),
	}
}

func d(s string) fpdecimal.FPDecimal { return fpdecimal.MustParse(s) }

func TestPenalty_Sign(t *testing.T) {
	t.Parallel()

	p := testParams()

	t.Run("worsening is charged", func(t *testing.T) {
		got, err := Penalty(d("0.2"), d("0.3"), p)
		require.NoError(t, err)
		// 0.5 * tanh(1)
		assert.Equal(t, "0.380797077977882444", got.String())
	})

	t.Run("improving is rebated", func(t *testing.T) {
		got, err := Penalty(d("0.3"), d("0.2"), p)
		require.NoError(t, err)
		assert.True(t, got.IsNeg())
		assert.True(t, got.GTE(p.AlphaMinus.Neg()))
	})

	t.Run("unchanged is zero", func(t *testing.T) {
		got, err := Penalty(d("0.25"), d("0.25"), p)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})
}

func TestPenalty_Properties(t *testing.T) {
	t.Parallel()

	p := testParams()
	before := d("1")
	step := d("0.013")

	prev, err := Penalty(before, d("0.5"), p)
	require.NoError(t, err)
	for after := d("0.5"); after.LT(d("1.5")); after = fpdecimal.Must(after.Add(step)) {
		cur, err := Penalty(before, after, p)
		require.NoError(t, err)
		assert.True(t, cur.GTE(prev), "not monotone at after=%s", after)

		switch after.Cmp(before) {
		case 1:
			assert.False(t, cur.IsNeg(), "charge expected at after=%s", after)
			assert.True(t, cur.LTE(p.AlphaPlus))
		case -1:
			assert.False(t, cur.IsPos(), "rebate expected at after=%s", after)
			assert.True(t, cur.GTE(p.AlphaMinus.Neg()))
		}
		prev = cur
	}

	// continuity: the smallest step either way is tiny
	ulp := d("0.000000000000000001")
	up, err := Penalty(before, fpdecimal.Must(before.Add(ulp)), p)
	require.NoError(t, err)
	down, err := Penalty(before, fpdecimal.Must(before.Sub(ulp)), p)
	require.NoError(t, err)
	assert.True(t, up.LTE(d("0.00000000000000001")))
	assert.True(t, down.GTE(d("-0.00000000000000001")))
}

func TestPenalty_Asymmetry(t *testing.T) {
	t.Parallel()

	p := testParams()
	require.True(t, p.Asymmetric())

	for _, s := range []string{"0.01", "0.05", "0.2", "1"} {
		delta := d(s)
		charge, err := Penalty(fpdecimal.Zero, delta, p)
		require.NoError(t, err)
		rebate, err := Penalty(delta, fpdecimal.Zero, p)
		require.NoError(t, err)
		assert.True(t, charge.GT(rebate.Abs()), "|Δ|=%s charge %s rebate %s", s, charge, rebate)
	}

	sym := Params{AlphaPlus: d("0.2"), SigmaPlus: d("0.5"), AlphaMinus: d("0.2"), SigmaMinus: d("0.5")}
	assert.False(t, sym.Asymmetric())
	charge, err := Penalty(fpdecimal.Zero, d("0.3"), sym)
	require.NoError(t, err)
	rebate, err := Penalty(d("0.3"), fpdecimal.Zero, sym)
	require.NoError(t, err)
	assert.True(t, charge.Equal(rebate.Neg()))
}

func TestParams_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, testParams().Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative alpha plus", func(p *Params) { p.AlphaPlus = d("-0.1") }},
		{"negative alpha minus", func(p *Params) { p.AlphaMinus = d("-0.1") }},
		{"zero sigma plus", func(p *Params) { p.SigmaPlus = fpdecimal.Zero }},
		{"negative sigma minus", func(p *Params) { p.SigmaMinus = d("-1") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParams)

			_, err := Penalty(d("0"), d("1"), p)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	inv, _ := vector.Parse([]string{"10", "20"})
	price, _ := vector.Parse([]string{"1", "2"})
	weight, _ := vector.Parse([]string{"0.5", "0.5"})

	t.Run("rebalancing trade scores negative", func(t *testing.T) {
		// adding 10 of the under-held first asset restores the target split
		delta, _ := vector.Parse([]string{"10", "0"})
		score, err := Score(inv, delta, price, weight)
		require.NoError(t, err)
		// imbalance 13.333333333333333333 -> 0 over a value of 10
		assert.Equal(t, "-1.333333333333333333", score.String())

		mult, err := Multiplier(score, testParams())
		require.NoError(t, err)
		assert.True(t, mult.GT(fpdecimal.One))
	})

	t.Run("worsening trade scores positive", func(t *testing.T) {
		delta, _ := vector.Parse([]string{"0", "10"})
		score, err := Score(inv, delta, price, weight)
		require.NoError(t, err)
		assert.True(t, score.IsPos())

		mult, err := Multiplier(score, testParams())
		require.NoError(t, err)
		assert.True(t, mult.LT(fpdecimal.One))
	})

	t.Run("valueless trade", func(t *testing.T) {
		delta, _ := vector.Parse([]string{"0", "0"})
		_, err := Score(inv, delta, price, weight)
		assert.ErrorIs(t, err, fpdecimal.ErrDivisionByZero)
	})
}

package penalty

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/basket/internal/fpdecimal"
)

func TestSmoothing(t *testing.T) {
	t.Parallel()

	t.Run("gap beyond int64 converges to nav", func(t *testing.T) {
		got, err := Smoothing{EMA: d("10"), LastBlock: 1}.At(math.MaxUint64, d("50"), DefaultTau)
		require.NoError(t, err)
		assert.Equal(t, "50", got.String())

		got, err = Smoothing{EMA: d("10"), LastBlock: 1}.At(2, d("50"), math.MaxUint64)
		require.NoError(t, err)
		assert.Equal(t, "10", got.String())
	})

	t.Run("first observation seeds the average", func(t *testing.T) {
		got, err := Smoothing{}.At(100, d("50"), DefaultTau)
		require.NoError(t, err)
		assert.Equal(t, "50", got.String())
	})

	t.Run("same block keeps the average", func(t *testing.T) {
		s := Smoothing{EMA: d("40"), LastBlock: 100}
		got, err := s.At(100, d("50"), DefaultTau)
		require.NoError(t, err)
		assert.Equal(t, "40", got.String())
	})

	t.Run("one time constant", func(t *testing.T) {
		s := Smoothing{EMA: d("40"), LastBlock: 100}
		got, err := s.At(700, d("50"), DefaultTau)
		require.NoError(t, err)
		// 40 e^-1 + 50 (1 - e^-1)
		assert.Equal(t, "46.32120558828557679", got.String())
	})

	t.Run("update returns new state and leaves the old one", func(t *testing.T) {
		s := Smoothing{EMA: d("40"), LastBlock: 100}
		next, err := s.Update(700, d("50"), DefaultTau)
		require.NoError(t, err)
		assert.Equal(t, uint64(700), next.LastBlock)
		assert.Equal(t, "46.32120558828557679", next.EMA.String())
		assert.Equal(t, "40", s.EMA.String())
		assert.Equal(t, uint64(100), s.LastBlock)
	})

	t.Run("long gaps converge to nav", func(t *testing.T) {
		s := Smoothing{EMA: d("40"), LastBlock: 1}
		got, err := s.At(1_000_000, d("50"), DefaultTau)
		require.NoError(t, err)
		assert.Equal(t, "50", got.String())
	})

	t.Run("scale is capped at nav", func(t *testing.T) {
		s := Smoothing{EMA: d("80"), LastBlock: 100}
		got, err := s.Scale(100, d("50"), DefaultTau)
		require.NoError(t, err)
		assert.Equal(t, "50", got.String())

		s = Smoothing{EMA: d("30"), LastBlock: 100}
		got, err = s.Scale(100, d("50"), DefaultTau)
		require.NoError(t, err)
		assert.Equal(t, "30", got.String())
	})

	t.Run("errors", func(t *testing.T) {
		s := Smoothing{EMA: d("40"), LastBlock: 100}
		_, err := s.At(99, d("50"), DefaultTau)
		assert.ErrorIs(t, err, ErrStaleBlock)

		_, err = s.At(200, d("50"), 0)
		assert.ErrorIs(t, err, ErrInvalidParams)

		next, err := s.Update(99, fpdecimal.One, DefaultTau)
		assert.Error(t, err)
		assert.Equal(t, s, next)
	})
}

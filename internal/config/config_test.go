package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/basket/internal/penalty"
)

func TestDefaultPenaltyParams(t *testing.T) {
	require.NoError(t, DefaultPenaltyParams.Validate())
	assert.True(t, DefaultPenaltyParams.Asymmetric())
	assert.True(t, DefaultPenaltyParams.AlphaMinus.LT(DefaultPenaltyParams.AlphaPlus))
}

func TestLoadConfig(t *testing.T) {
	t.Run("memory store needs no database", func(t *testing.T) {
		t.Setenv("STORE", StoreMemory)
		t.Setenv("EMA_TAU_BLOCKS", "1200")
		t.Setenv("MAX_DRIFT", "0.25")
		require.NoError(t, LoadConfig())
		assert.Equal(t, StoreMemory, StoreMode)
		assert.Equal(t, uint64(1200), EMATauBlocks)
		assert.Equal(t, "0.25", MaxDrift.String())
		assert.Equal(t, "8080", WebPort)
	})

	t.Run("postgres store requires credentials", func(t *testing.T) {
		t.Setenv("STORE", StorePostgres)
		t.Setenv("DB_HOST", "")
		require.NoError(t, os.Unsetenv("DB_HOST"))
		err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_HOST")

		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "basket")
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("DB_NAME", "basket")
		require.NoError(t, LoadConfig())
		assert.Equal(t, uint64(5432), DBPort)
		assert.Equal(t, "disable", DBSSLMode)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("STORE", StoreMemory)
		t.Setenv("MAX_DRIFT", "lots")
		assert.Error(t, LoadConfig())

		t.Setenv("MAX_DRIFT", "-0.1")
		assert.Error(t, LoadConfig())

		t.Setenv("MAX_DRIFT", "")
		t.Setenv("EMA_TAU_BLOCKS", "0")
		assert.Error(t, LoadConfig())

		t.Setenv("EMA_TAU_BLOCKS", "")
		t.Setenv("STORE", "sqlite")
		assert.Error(t, LoadConfig())
	})
}

func TestLoadParamsFile(t *testing.T) {
	t.Parallel()

	t.Run("full file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "basket.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
penalty:
  alpha_plus: "0.5"
  sigma_plus: "0.1"
  alpha_minus: "0.1"
  sigma_minus: 0.3
tau_blocks: 300
max_drift: "0.2"
token_precision: 18
assets:
  - {symbol: atom, denom: uatom, precision: 6, target_weight: "1"}
  - {symbol: usdc, denom: uusdc, precision: 6, target_weight: "2.5"}
`), 0o600))

		f, err := LoadParamsFile(path)
		require.NoError(t, err)
		assert.Equal(t, "0.5", f.Penalty.AlphaPlus.String())
		assert.Equal(t, "0.3", f.Penalty.SigmaMinus.String())
		assert.Equal(t, uint64(300), f.TauBlocks)
		assert.Equal(t, "0.2", f.MaxDrift.String())
		assert.Equal(t, 18, *f.TokenPrecision)

		assets := f.BasketAssets()
		require.Len(t, assets, 2)
		assert.Equal(t, "uusdc", assets[1].Denom)
		assert.Equal(t, "2.5", assets[1].TargetWeight.String())
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		f, err := ParseParamsFile([]byte("assets: []\n"))
		require.NoError(t, err)
		assert.Equal(t, DefaultPenaltyParams, *f.Penalty)
		assert.Equal(t, DefaultTauBlocks, f.TauBlocks)
		assert.True(t, f.MaxDrift.Equal(DefaultMaxDrift))
		assert.Equal(t, DefaultTokenPrecision, *f.TokenPrecision)
		assert.Nil(t, f.Notional)
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()
		_, err := ParseParamsFile([]byte("penalty: {alpha_plus: \"0.1\", sigma_plus: \"0\", alpha_minus: \"0\", sigma_minus: \"1\"}\n"))
		assert.ErrorIs(t, err, ErrParamsFile)
		assert.ErrorIs(t, err, penalty.ErrInvalidParams)

		_, err = ParseParamsFile([]byte("notional: {penalty_cutoff_lo: \"0.5\", penalty_cutoff_hi: \"0.1\"}\n"))
		assert.ErrorIs(t, err, penalty.ErrInvalidParams)

		_, err = ParseParamsFile([]byte("max_drift: \"1.2.3\"\n"))
		assert.ErrorIs(t, err, ErrParamsFile)

		_, err = ParseParamsFile([]byte("assets:\n  - {symbol: atom}\n"))
		assert.ErrorIs(t, err, ErrParamsFile)

		_, err = LoadParamsFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

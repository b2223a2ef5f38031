package engine

import (
	"context"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/penalty"
	"github.com/elys-network/basket/internal/state"
	"github.com/elys-network/basket/internal/types"
	"github.com/elys-network/basket/internal/vector"
)

func d(s string) fpdecimal.FPDecimal { return fpdecimal.MustParse(s) }

func vec(t *testing.T, values ...string) vector.Vector {
	t.Helper()
	v, err := vector.Parse(values)
	require.NoError(t, err)
	return v
}

func testParams() penalty.Params {
	return penalty.Params{AlphaPlus: d("0.5"), SigmaPlus: d("0.1"), AlphaMinus: d("0.1"), SigmaMinus: d("0.3")}
}

func testDefinition() types.BasketState {
	return types.BasketState{
		Assets: []types.Asset{
			{Symbol: "atom", Denom: "uatom", Precision: 6, TargetWeight: d("1")},
			{Symbol: "usdc", Denom: "uusdc", Precision: 6, TargetWeight: d("2")},
		},
		TokenPrecision: 6,
	}
}

var testPrices = map[string]fpdecimal.FPDecimal{"uatom": d("2"), "uusdc": d("1")}

func newTestEngine(t *testing.T, height uint64) (*Engine, *state.MemoryStore) {
	t.Helper()
	store := state.NewMemoryStore()
	e, err := NewEngine(Config{
		Store:      store,
		Heights:    StaticHeight(height),
		ConfigName: "test",
		TauBlocks:  penalty.DefaultTau,
	})
	require.NoError(t, err)
	require.NoError(t, e.Seed(context.Background(), testParams(), testDefinition()))
	return e, store
}

func TestNewEngine_Validation(t *testing.T) {
	t.Parallel()

	valid := Config{Store: state.NewMemoryStore(), Heights: StaticHeight(1), ConfigName: "x", TauBlocks: 1}
	_, err := NewEngine(valid)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no store", func(c *Config) { c.Store = nil }},
		{"no heights", func(c *Config) { c.Heights = nil }},
		{"no config name", func(c *Config) { c.ConfigName = "" }},
		{"zero tau", func(c *Config) { c.TauBlocks = 0 }},
		{"negative drift limit", func(c *Config) { c.MaxDrift = d("-1") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			assert.Error(t, err)
		})
	}
}

func TestSeed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e, store := newTestEngine(t, 10)

	pv, err := e.ActiveParams(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pv.Version)

	b, err := store.BasketState(ctx)
	require.NoError(t, err)
	assert.Len(t, b.Assets, 2)
	assert.True(t, b.Supply.IsZero())

	// seeding again keeps what is there
	other := testParams()
	other.AlphaPlus = d("0.9")
	require.NoError(t, e.Seed(ctx, other, types.BasketState{}))
	pv, err = e.ActiveParams(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pv.Version)
	assert.Equal(t, "0.5", pv.Params.AlphaPlus.String())

	bad := testDefinition()
	bad.Assets[0].Denom = "x"
	fresh, err := NewEngine(Config{Store: state.NewMemoryStore(), Heights: StaticHeight(1), ConfigName: "x", TauBlocks: 1})
	require.NoError(t, err)
	assert.Error(t, fresh.Seed(ctx, testParams(), bad))
}

func TestMintAndRedeem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e, store := newTestEngine(t, 100)

	rec, err := e.ExecuteMint(ctx, MintRequest{
		Deposit: sdktypes.NewCoins(sdktypes.NewInt64Coin("uatom", 10_000_000), sdktypes.NewInt64Coin("uusdc", 20_000_000)),
		Prices:  testPrices,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.QuoteID)
	assert.Equal(t, uint64(100), rec.BlockHeight)
	assert.Equal(t, "40000000", rec.BasketTokens.String())

	stored, err := store.GetQuote(ctx, rec.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, types.QuoteMint, stored.Kind)

	b, err := store.BasketState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "40000000", b.Supply.String())
	assert.Equal(t, "10000000uatom,20000000uusdc", b.Inventory.String())

	sm, err := store.Smoothing(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), sm.LastBlock)
	assert.Equal(t, "40", sm.EMA.String())

	t.Run("preview leaves state alone", func(t *testing.T) {
		quote, err := e.PreviewMint(ctx, MintRequest{
			Deposit: sdktypes.NewCoins(sdktypes.NewInt64Coin("uatom", 1_000_000)),
			Prices:  testPrices,
			Height:  150,
		})
		require.NoError(t, err)
		assert.True(t, quote.Penalty.IsPos())

		after, err := store.BasketState(ctx)
		require.NoError(t, err)
		assert.Equal(t, "40000000", after.Supply.String())
		recent, err := store.RecentQuotes(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, recent, 1)
	})

	t.Run("pro rata redeem", func(t *testing.T) {
		rec, err := e.ExecuteRedeem(ctx, RedeemRequest{
			Amount: sdkmath.NewInt(10_000_000),
			Prices: testPrices,
			Height: 200,
		})
		require.NoError(t, err)
		assert.True(t, rec.ProRata)
		assert.Equal(t, "2500000uatom,5000000uusdc", rec.Coins.String())

		b, err := store.BasketState(ctx)
		require.NoError(t, err)
		assert.Equal(t, "30000000", b.Supply.String())
		assert.Equal(t, "7500000uatom,15000000uusdc", b.Inventory.String())

		stats, err := store.QuoteStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Mints)
		assert.Equal(t, int64(1), stats.ProRataRedeems)
	})

	t.Run("stale height is rejected without side effects", func(t *testing.T) {
		_, err := e.ExecuteMint(ctx, MintRequest{
			Deposit: sdktypes.NewCoins(sdktypes.NewInt64Coin("uatom", 1_000_000)),
			Prices:  testPrices,
			Height:  50,
		})
		assert.ErrorIs(t, err, penalty.ErrStaleBlock)

		sm, err := store.Smoothing(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), sm.LastBlock)
	})

	t.Run("missing price", func(t *testing.T) {
		_, err := e.PreviewRedeem(ctx, RedeemRequest{
			Amount: sdkmath.NewInt(1_000_000),
			Prices: map[string]fpdecimal.FPDecimal{"uatom": d("2")},
		})
		assert.Error(t, err)
	})
}

func TestRunCycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e, store := newTestEngine(t, 700)

	// nothing priced yet
	e.RunCycle(ctx)
	sm, err := store.Smoothing(ctx)
	require.NoError(t, err)
	assert.Zero(t, sm.LastBlock)

	_, err = e.ExecuteMint(ctx, MintRequest{
		Deposit: sdktypes.NewCoins(sdktypes.NewInt64Coin("uatom", 10_000_000), sdktypes.NewInt64Coin("uusdc", 20_000_000)),
		Prices:  testPrices,
		Height:  100,
	})
	require.NoError(t, err)

	e.RunCycle(ctx)
	sm, err = store.Smoothing(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), sm.LastBlock)
	// NAV unchanged at 40, so the average stays put
	assert.Equal(t, "40", sm.EMA.String())
}

func TestRunLoop_StopsOnCancel(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.RunLoop(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	a, err := Analyze(vec(t, "10", "20"), vec(t, "1", "2"), vec(t, "0.5", "0.5"))
	require.NoError(t, err)
	assert.Equal(t, "13.333333333333333333", a.Imbalance.String())
	assert.Equal(t, "0.266666666666666666", a.Drift.String())
	assert.Equal(t, []string{"10", "-10"}, a.AllocationError.Strings())

	empty, err := Analyze(vec(t, "0", "0"), vec(t, "1", "2"), vec(t, "0.5", "0.5"))
	require.NoError(t, err)
	assert.True(t, empty.Drift.IsZero())

	_, err = Analyze(vec(t, "1"), vec(t, "1", "2"), vec(t, "0.5", "0.5"))
	assert.ErrorIs(t, err, vector.ErrLengthMismatch)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	inv, price, weight := vec(t, "10", "20"), vec(t, "1", "2"), vec(t, "0.5", "0.5")

	ev, err := Evaluate(inv, vec(t, "10", "0"), price, weight, testParams())
	require.NoError(t, err)
	assert.Equal(t, "13.333333333333333333", ev.ImbalanceBefore.String())
	assert.True(t, ev.ImbalanceAfter.IsZero())
	assert.Equal(t, "0.266666666666666666", ev.DriftBefore.String())
	assert.True(t, ev.Penalty.IsNeg())
	require.NotNil(t, ev.Score)
	assert.Equal(t, "-1.333333333333333333", ev.Score.String())

	none, err := Evaluate(inv, vec(t, "0", "0"), price, weight, testParams())
	require.NoError(t, err)
	assert.Nil(t, none.Score)
	assert.True(t, none.Penalty.IsZero())

	_, err = Evaluate(inv, vec(t, "-11", "0"), price, weight, testParams())
	assert.ErrorIs(t, err, ErrNegativeInventory)
}

func TestHeartbeat(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	h := &Heartbeat{Start: 500, Since: start, BlockTime: 6 * time.Second, now: func() time.Time { return now }}

	got, err := h.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(500), got)

	now = start.Add(time.Minute + time.Second)
	got, err = h.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(510), got)
}

func TestSourceHeightBehindSmoothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e, store := newTestEngine(t, 100)
	e.heights = StaticHeight(5)

	deposit := sdktypes.NewCoins(sdktypes.NewInt64Coin("uatom", 10_000_000), sdktypes.NewInt64Coin("uusdc", 20_000_000))
	_, err := e.ExecuteMint(ctx, MintRequest{Deposit: deposit, Prices: testPrices, Height: 1_000_000})
	require.NoError(t, err)

	quote, err := e.PreviewMint(ctx, MintRequest{Deposit: deposit, Prices: testPrices})
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), quote.BlockHeight)

	rec, err := e.ExecuteMint(ctx, MintRequest{Deposit: deposit, Prices: testPrices})
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), rec.BlockHeight)

	sm, err := store.Smoothing(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), sm.LastBlock)
}

/*

This file contains the default parameters for the basket.

They are used when no active penalty parameters are found in the store and no params file is given.
Each value comes with the reasoning behind it so it can be revisited when the basket's assets change.

*/

package config

import (
	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/penalty"
)

// DefaultPenaltyParams shapes the charge for trades that push the basket off target
// and the rebate for trades that pull it back.
var DefaultPenaltyParams = penalty.Params{
	AlphaPlus: fpdecimal.MustParse("0.05"), // Worsening trades lose at most 5% of their value.
	// Rationale: The charge has to outweigh what an arbitrageur gains by dumping the
	// cheapest asset into the basket, but a cap keeps honest depositors from being
	// punished for a basket that is already far off target.

	SigmaPlus: fpdecimal.MustParse("0.02"), // A 2% drift increase reaches ~76% of the cap.
	// Rationale: Small trades that barely move drift pay almost nothing. The charge
	// ramps quickly once a single trade shifts drift by a few percent.

	AlphaMinus: fpdecimal.MustParse("0.01"), // Rebalancing trades earn at most a 1% bonus.
	// Rationale: Rebates are paid out of other holders' value, so they stay well below
	// the charge. Keeping alpha_minus < alpha_plus means a worsen-then-improve round trip
	// always costs the trader.

	SigmaMinus: fpdecimal.MustParse("0.05"), // Rebates saturate more slowly than charges.
	// Rationale: A wider sigma spreads the rebate over larger corrections instead of
	// paying the full bonus for a small nudge.
}

// DefaultMaxDrift rejects trades that leave drift above 50% and higher than before.
// Rationale: Past that point the basket no longer tracks its targets in any useful way.
var DefaultMaxDrift = fpdecimal.MustParse("0.5")

const (
	// DefaultTauBlocks is roughly one hour of blocks.
	// Rationale: Long enough that a single large trade cannot drag the scale down, short
	// enough that a genuine NAV change is reflected within a session.
	DefaultTauBlocks = penalty.DefaultTau

	// DefaultCacheTTLSeconds bounds staleness of cached reads if an invalidation is missed.
	DefaultCacheTTLSeconds uint64 = 30

	// DefaultLoopIntervalSeconds is the heartbeat period of the engine loop.
	DefaultLoopIntervalSeconds uint64 = 60

	// DefaultBlockTimeSeconds matches the chain's target block time, so that
	// DefaultTauBlocks spans about an hour of wall clock.
	DefaultBlockTimeSeconds uint64 = 6

	// DefaultTokenPrecision is the number of decimals of the basket token.
	DefaultTokenPrecision = 6
)

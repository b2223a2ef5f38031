/*

This file contains the types for mint and redeem quotes and the record kept for every executed one.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/basket/internal/fpdecimal"
)

// QuoteKind is the direction of a basket trade.
type QuoteKind string

const (
	QuoteMint   QuoteKind = "MINT"
	QuoteRedeem QuoteKind = "REDEEM"
)

// Quote is the priced outcome of a mint or redeem against a basket.
type Quote struct {
	Kind         QuoteKind           `json:"kind"`
	Coins        sdktypes.Coins      `json:"coins"`         // Deposited on mint, paid out on redeem
	BasketTokens sdkmath.Int         `json:"basket_tokens"` // Minted on mint, burned on redeem
	TradeValue   fpdecimal.FPDecimal `json:"trade_value"`   // dot(coins, prices) before adjustment
	Value        fpdecimal.FPDecimal `json:"value"`         // Trade value after the penalty or rebate
	Penalty      fpdecimal.FPDecimal `json:"penalty"`       // Signed, positive is a charge
	NAVBefore    fpdecimal.FPDecimal `json:"nav_before"`
	NAVAfter     fpdecimal.FPDecimal `json:"nav_after"`
	DriftBefore  fpdecimal.FPDecimal `json:"drift_before"` // imbalance / scale before the trade
	DriftAfter   fpdecimal.FPDecimal `json:"drift_after"`
	ProRata      bool                `json:"pro_rata"` // Redeemed as a slice of every holding, no penalty

	InventoryAfter sdktypes.Coins `json:"inventory_after"`
	SupplyAfter    sdkmath.Int    `json:"supply_after"`
}

// QuoteRecord is an executed quote as stored.
type QuoteRecord struct {
	QuoteID     string    `json:"quote_id"`
	BlockHeight uint64    `json:"block_height"`
	ParamsID    int64     `json:"params_id"` // Penalty params version the quote was priced with
	Timestamp   time.Time `json:"timestamp"`
	Quote
}

// QuoteStats summarises executed quotes.
type QuoteStats struct {
	Mints            int64               `json:"mints"`
	Redeems          int64               `json:"redeems"`
	ProRataRedeems   int64               `json:"pro_rata_redeems"`
	PenaltiesCharged fpdecimal.FPDecimal `json:"penalties_charged"` // Sum of positive penalty value
	RebatesPaid      fpdecimal.FPDecimal `json:"rebates_paid"`      // Sum of negative penalty value, as a positive number
	LastQuoteAt      *time.Time          `json:"last_quote_at,omitempty"`
}

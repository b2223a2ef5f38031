/*

This file contains the persisted state of a basket: what it holds, what it targets, and how many basket tokens exist.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
)

type BasketState struct {
	Assets         []Asset        `json:"assets"`          // Constituents in a fixed order, vectors follow this order
	Inventory      sdktypes.Coins `json:"inventory"`       // Base unit balances held by the basket
	Supply         sdkmath.Int    `json:"supply"`          // Outstanding basket tokens in base units
	TokenPrecision int            `json:"token_precision"` // Decimal places of the basket token itself
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SupplyOrZero treats a nil supply as an empty basket.
func (b BasketState) SupplyOrZero() sdkmath.Int {
	if b.Supply.IsNil() {
		return sdkmath.ZeroInt()
	}
	return b.Supply
}

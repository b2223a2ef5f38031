/*

This is the type for a basket constituent, the token plus the units of it one basket unit targets.

*/

package types

import "github.com/elys-network/basket/internal/fpdecimal"

type Asset struct {
	Symbol       string              `json:"symbol"`        // e.g., "atom"
	Denom        string              `json:"denom"`         // e.g., "uatom" or "ibc/273...A8"
	Precision    int                 `json:"precision"`     // e.g., 6 means 1000000 uatom = 1 atom
	TargetWeight fpdecimal.FPDecimal `json:"target_weight"` // Target units per basket unit, value share is w·p / dot(w,p)
}

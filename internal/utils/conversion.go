/*
This file contains common utility functions for converting between on-chain base unit amounts
and fixed-point decimals, and for laying coins and prices out as vectors in basket order.
*/

package utils

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/types"
	"github.com/elys-network/basket/internal/vector"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrUnknownDenom     = errors.New("denom is not part of the basket")
	ErrMissingPrice     = errors.New("price is missing")
	ErrConversionFailed = errors.New("conversion failed")
)

func checkPrecision(precision int) error {
	if precision < 0 || precision > fpdecimal.Precision {
		return fmt.Errorf("%w: %d (must be between 0 and %d)", ErrInvalidPrecision, precision, fpdecimal.Precision)
	}
	return nil
}

func pow10(precision int) fpdecimal.FPDecimal {
	return fpdecimal.Must(fpdecimal.NewFromInt(sdkmath.NewIntWithDecimal(1, precision)))
}

// AmountToDecimal converts a base unit amount to whole tokens. The result is exact
// because precision never exceeds the decimal's fractional digits.
func AmountToDecimal(amount sdkmath.Int, precision int) (fpdecimal.FPDecimal, error) {
	if err := checkPrecision(precision); err != nil {
		return fpdecimal.Zero, err
	}
	if amount.IsNil() {
		return fpdecimal.Zero, ErrAmountNil
	}
	if amount.IsNegative() {
		return fpdecimal.Zero, ErrAmountNegative
	}

	d, err := fpdecimal.NewFromInt(amount)
	if err != nil {
		return fpdecimal.Zero, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if precision == 0 {
		return d, nil
	}
	result, err := d.Quo(pow10(precision))
	if err != nil {
		return fpdecimal.Zero, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	return result, nil
}

// DecimalToAmount converts whole tokens to a base unit amount, truncating the
// sub-unit remainder or rounding it up when roundUp is set.
func DecimalToAmount(d fpdecimal.FPDecimal, precision int, roundUp bool) (sdkmath.Int, error) {
	if err := checkPrecision(precision); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if d.IsNeg() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}

	scaled, err := d.Mul(pow10(precision))
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if roundUp {
		scaled, err = scaled.Ceil()
		if err != nil {
			return sdkmath.ZeroInt(), fmt.Errorf("%w: %w", ErrConversionFailed, err)
		}
	}
	return scaled.SDKInt(), nil
}

// CoinsToVector lays coins out in asset order as whole token amounts. Assets
// missing from coins read as zero; coins outside the basket are rejected.
func CoinsToVector(coins sdktypes.Coins, assets []types.Asset) (vector.Vector, error) {
	known := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		known[a.Denom] = struct{}{}
	}
	for _, c := range coins {
		if _, ok := known[c.Denom]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDenom, c.Denom)
		}
	}

	v := make(vector.Vector, len(assets))
	for i, a := range assets {
		amt, err := AmountToDecimal(coins.AmountOf(a.Denom), a.Precision)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Denom, err)
		}
		v[i] = amt
	}
	return v, nil
}

// VectorToCoins is the inverse of CoinsToVector. Zero entries are dropped.
func VectorToCoins(v vector.Vector, assets []types.Asset, roundUp bool) (sdktypes.Coins, error) {
	if len(v) != len(assets) {
		return nil, fmt.Errorf("%w: %d amounts for %d assets", vector.ErrLengthMismatch, len(v), len(assets))
	}
	coins := make([]sdktypes.Coin, 0, len(v))
	for i, a := range assets {
		amt, err := DecimalToAmount(v[i], a.Precision, roundUp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Denom, err)
		}
		if amt.IsZero() {
			continue
		}
		coins = append(coins, sdktypes.Coin{Denom: a.Denom, Amount: amt})
	}
	return sdktypes.NewCoins(coins...), nil
}

// PricesToVector lays per-token prices out in asset order.
func PricesToVector(prices map[string]fpdecimal.FPDecimal, assets []types.Asset) (vector.Vector, error) {
	v := make(vector.Vector, len(assets))
	for i, a := range assets {
		p, ok := prices[a.Denom]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingPrice, a.Denom)
		}
		v[i] = p
	}
	return v, nil
}

// WeightsVector returns the target weights in asset order.
func WeightsVector(assets []types.Asset) vector.Vector {
	v := make(vector.Vector, len(assets))
	for i, a := range assets {
		v[i] = a.TargetWeight
	}
	return v
}

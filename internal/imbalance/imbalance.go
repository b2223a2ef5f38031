// Package imbalance measures how far a basket's inventory has drifted from its
// target allocation.
package imbalance

import (
	"errors"
	"fmt"

	"github.com/elys-network/basket/internal/fpdecimal"
	"github.com/elys-network/basket/internal/vector"
)

var ErrNegativeComponent = errors.New("prices and target weights must be non-negative")

// AllocationError returns the signed per-asset error
//
//	err = w∘p · dot(i,p) − i∘p · dot(w,p)
//
// which is zero when the inventory's value split matches the target weights.
func AllocationError(inventory, price, weight vector.Vector) (vector.Vector, error) {
	errv, _, err := allocation(inventory, price, weight)
	return errv, err
}

// Imbalance returns sum(|err|) / dot(w,p), a non-negative drift score that is
// zero when the inventory matches the target allocation exactly.
func Imbalance(inventory, price, weight vector.Vector) (fpdecimal.FPDecimal, error) {
	errv, wp, err := allocation(inventory, price, weight)
	if err != nil {
		return fpdecimal.Zero, err
	}
	total, err := vector.Sum(vector.Abs(errv))
	if err != nil {
		return fpdecimal.Zero, fmt.Errorf("summing allocation error: %w", err)
	}
	return total.Quo(wp)
}

// Drift returns the imbalance divided by the inventory value dot(i,p).
// Imbalance grows linearly with the basket size; drift does not.
func Drift(inventory, price, weight vector.Vector) (fpdecimal.FPDecimal, error) {
	imb, err := Imbalance(inventory, price, weight)
	if err != nil {
		return fpdecimal.Zero, err
	}
	nav, err := vector.Dot(inventory, price)
	if err != nil {
		return fpdecimal.Zero, err
	}
	if nav.IsZero() {
		return fpdecimal.Zero, fmt.Errorf("inventory has no value: %w", fpdecimal.ErrDivisionByZero)
	}
	return imb.Quo(nav)
}

func allocation(inventory, price, weight vector.Vector) (vector.Vector, fpdecimal.FPDecimal, error) {
	zero := fpdecimal.Zero
	for i := range price {
		if price[i].IsNeg() {
			return nil, zero, fmt.Errorf("price %d is %v: %w", i, price[i], ErrNegativeComponent)
		}
	}
	for i := range weight {
		if weight[i].IsNeg() {
			return nil, zero, fmt.Errorf("weight %d is %v: %w", i, weight[i], ErrNegativeComponent)
		}
	}

	wp, err := vector.Dot(weight, price)
	if err != nil {
		return nil, zero, err
	}
	if wp.IsZero() {
		return nil, zero, fmt.Errorf("target weights carry no value: %w", fpdecimal.ErrDivisionByZero)
	}

	u, err := vector.Mul(weight, price)
	if err != nil {
		return nil, zero, err
	}
	nav, err := vector.Dot(inventory, price)
	if err != nil {
		return nil, zero, err
	}
	target, err := vector.MulConst(u, nav)
	if err != nil {
		return nil, zero, err
	}
	held, err := vector.Mul(inventory, price)
	if err != nil {
		return nil, zero, err
	}
	actual, err := vector.MulConst(held, wp)
	if err != nil {
		return nil, zero, err
	}
	errv, err := vector.Sub(target, actual)
	if err != nil {
		return nil, zero, err
	}
	return errv, wp, nil
}

// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.
//
// The Kortana library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The Kortana library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Kortana library. If not, see <http://www.gnu.org/licenses/>.

// Package feemarket implements the EIP-1559-shaped base fee update rule:
// the base fee moves toward equilibrium as a function of how far the
// previous block's gas usage sat from its target, floored at a configured
// minimum so it can never go to zero.
package feemarket

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/params"
)

// NextBaseFee returns the base fee a block at gasUsed/gasLimit implies for
// its child, following the same delta rule as EIP-1559: the base fee moves
// by at most 1/BaseFeeChangeDenominator of itself per block, scaled by how
// far gasUsed sat from the target (gasLimit / ElasticityMultiplier).
//
// The result is always floored at params.MinGasPrice.
func NextBaseFee(parentBaseFee *uint256.Int, gasUsed, gasLimit uint64) *uint256.Int {
	target := gasLimit / params.ElasticityMultiplier
	if target == 0 {
		return floor(parentBaseFee)
	}

	if gasUsed == target {
		return floor(parentBaseFee)
	}

	if gasUsed > target {
		delta := gasUsed - target
		change := scaledDelta(parentBaseFee, delta, target)
		next := new(uint256.Int).Add(parentBaseFee, change)
		return floor(next)
	}

	delta := target - gasUsed
	change := scaledDelta(parentBaseFee, delta, target)
	next := new(uint256.Int).Sub(parentBaseFee, change)
	return floor(next)
}

// scaledDelta computes parentBaseFee * delta / (target * BaseFeeChangeDenominator),
// with a floor of 1 whenever the nominal change would otherwise round to
// zero but delta is non-zero — the same "gas_used != target always moves
// the price" guarantee EIP-1559 makes.
func scaledDelta(parentBaseFee *uint256.Int, delta, target uint64) *uint256.Int {
	num := new(uint256.Int).Mul(parentBaseFee, uint256.NewInt(delta))
	denom := uint256.NewInt(target * params.BaseFeeChangeDenominator)
	change := new(uint256.Int).Div(num, denom)
	if change.IsZero() {
		change = uint256.NewInt(1)
	}
	return change
}

// floor clamps v up to params.MinGasPrice.
func floor(v *uint256.Int) *uint256.Int {
	min := uint256.NewInt(params.MinGasPrice)
	if v == nil || v.Lt(min) {
		return min
	}
	return v
}

// ValidateGasPrice reports whether a transaction's offered gas price meets
// the header's base fee, the admission rule block validation enforces.
func ValidateGasPrice(gasPrice, baseFee *uint256.Int) bool {
	return gasPrice.Cmp(baseFee) >= 0
}

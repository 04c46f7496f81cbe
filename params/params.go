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

// Package params collects chain-wide constants: gas schedule, fee market
// bounds, and the protocol parameters every component needs to agree on.
package params

import "github.com/holiman/uint256"

// ChainID identifies the network for replay protection (EIP-155 style).
const ChainID uint64 = 7424

const (
	// TxGasCall is the intrinsic gas cost of a value-transfer or contract call.
	TxGasCall uint64 = 21000

	// TxGasContractCreation is the intrinsic gas cost of deploying a contract.
	TxGasContractCreation uint64 = 53000

	// TxDataNonZeroGas is charged per non-zero byte of transaction payload.
	TxDataNonZeroGas uint64 = 16

	// TxDataZeroGas is charged per zero byte of transaction payload.
	TxDataZeroGas uint64 = 4
)

const (
	// MinGasPrice is the fee market's base-fee floor.
	MinGasPrice uint64 = 1_000_000_000 // 1 Gwei

	// BaseFeeChangeDenominator bounds the base fee's per-block maximum
	// relative change to 1/8, mirroring EIP-1559.
	BaseFeeChangeDenominator uint64 = 8

	// ElasticityMultiplier defines the gas target as GasLimit / Multiplier.
	ElasticityMultiplier uint64 = 2
)

const (
	// MaxCallDepth bounds nested Call/Create invocations in both execution engines.
	MaxCallDepth = 1024

	// MaxStackDepth bounds the EVM operand stack.
	MaxStackDepth = 1024

	// MaxCodeSize bounds deployed contract bytecode.
	MaxCodeSize = 24576
)

const (
	// BlocksPerEpoch is the height interval at which the consensus engine
	// distributes rewards and recomputes the active validator set. The
	// engine reads this constant directly; conf.ChainConfig.BlocksPerEpoch
	// does not change it.
	BlocksPerEpoch uint64 = 432_000

	// UnbondingPeriodBlocks is the default delay before undelegated stake
	// becomes withdrawable; the pipeline builds the staking store with
	// conf.ChainConfig.UnbondingPeriodBlocks instead.
	UnbondingPeriodBlocks uint64 = 50400

	// InitialBlockReward is the block subsidy before any halving, denominated
	// in the chain's smallest unit.
	InitialBlockReward uint64 = 5_000_000_000 // 5 KOR (in base units of 1e9)

	// HalvingIntervalBlocks is the height interval between reward reductions.
	HalvingIntervalBlocks uint64 = 10_512_000

	// HalvingPercentage is the percentage the reward is cut by at every
	// HalvingIntervalBlocks boundary — a 10% step, not a 50% halving,
	// matching original_source's calculate_block_reward.
	HalvingPercentage uint64 = 10

	// ActiveValidatorCount bounds the size of the active validator set
	// recomputed at every epoch boundary.
	ActiveValidatorCount = 128

	// MaxMissedBlocksBeforeJail is the downtime threshold past which a
	// validator is eligible for a Downtime slash.
	MaxMissedBlocksBeforeJail uint64 = 50

	// JailDurationSlots is how long a jailed validator stays inactive.
	JailDurationSlots uint64 = 500
)

// MinValidatorStake is the minimum stake a validator must hold to be
// eligible for the active set. Stake is a u128 quantity (it must represent
// pre-stakes on the order of 32e18 base units), so this is a *uint256.Int
// rather than a const, matching the way FeeMarket and account balances
// carry amounts.
var MinValidatorStake = uint256.NewInt(32_000_000_000) // 32 KOR

// Slashing basis points (out of 10000), per reason.
const (
	SlashDoubleProposalBps uint64 = 1000
	SlashEquivocationBps   uint64 = 3300
	SlashDowntimeBps       uint64 = 100
	SlashByzantineBps      uint64 = 10000

	// JailThresholdBps is the slash severity at or above which a validator
	// is jailed in addition to being slashed.
	JailThresholdBps uint64 = 1000
)

// StakingContractAddress is the reserved 20-byte address the processor
// dispatches delegate/undelegate calls to ahead of precompiles and VM
// execution, mirrored from original_source's STAKING_CONTRACT_ADDRESS.
var StakingContractAddress = [20]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}

// BlockReward returns the block subsidy at the given height under the
// halving schedule: the reward is cut by HalvingPercentage at every
// HalvingIntervalBlocks boundary, monotonically decreasing toward zero. It
// is a pure function of height so every validator derives the same value
// independently.
func BlockReward(height uint64) uint64 {
	halvings := height / HalvingIntervalBlocks
	reward := InitialBlockReward
	for i := uint64(0); i < halvings && reward > 0; i++ {
		reward = reward * (100 - HalvingPercentage) / 100
	}
	return reward
}

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

// Package consensus implements the validator set, leader election, vote
// aggregation, BFT finality, slashing, jailing, and epoch-boundary reward
// distribution, grounded on original_source's
// kortana-blockchain-rust/src/consensus/mod.rs ConsensusEngine.
package consensus

import (
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/log"
	"github.com/kortanachain/kortana/params"
)

// recentsCacheSize bounds the leader-election memo cache: one entry per
// recently queried slot is all the block-production ticker ever needs.
const recentsCacheSize = 1024

// ValidatorInfo is one validator's bonded stake and participation record,
// mirroring the Rust struct field-for-field.
type ValidatorInfo struct {
	Address       types.Address
	Stake         *uint256.Int
	IsActive      bool
	CommissionBps uint16
	MissedBlocks  uint64
}

// Engine owns the validator set and the consensus bookkeeping that
// operates on it: leader election, vote aggregation, slashing, jailing,
// and epoch advancement. It is the single mutator of validator state;
// callers serialize access the same way pipeline.Pipeline serializes
// access to state and the mempool.
type Engine struct {
	mu sync.Mutex

	CurrentSlot     uint64
	Validators      []*ValidatorInfo
	Votes           *VoteAggregator
	Finality        *FinalityGadget
	FinalizedHeight uint64
	FinalizedHash   types.Hash

	slashHistory map[types.Address][]SlashRecord
	jailedUntil  map[types.Address]uint64

	leaderCache *lru.Cache[uint64, types.Address]
}

// SlashRecord is one entry in a validator's slashing history.
type SlashRecord struct {
	Slot   uint64
	Reason SlashReason
}

// NewEngine builds an engine over the given initial validator set.
func NewEngine(validators []*ValidatorInfo) *Engine {
	cache, err := lru.New[uint64, types.Address](recentsCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which recentsCacheSize never is.
		panic(err)
	}
	return &Engine{
		Validators:   validators,
		Votes:        NewVoteAggregator(),
		Finality:     NewFinalityGadget(),
		slashHistory: make(map[types.Address][]SlashRecord),
		jailedUntil:  make(map[types.Address]uint64),
		leaderCache:  cache,
	}
}

// activeValidators returns the validators eligible to propose or vote:
// active and not currently jailed.
func (e *Engine) activeValidators() []*ValidatorInfo {
	out := make([]*ValidatorInfo, 0, len(e.Validators))
	for _, v := range e.Validators {
		if v.IsActive && e.jailedUntil[v.Address] == 0 {
			out = append(out, v)
		}
	}
	return out
}

// Leader returns the validator elected to propose the block at slot, or
// false if no validator is currently active. Election is deterministic:
// SHA3-256(slot) mod |active validators|, matching ConsensusEngine::get_leader.
func (e *Engine) Leader(slot uint64) (types.Address, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if addr, ok := e.leaderCache.Get(slot); ok {
		return addr, true
	}

	active := e.activeValidators()
	if len(active) == 0 {
		return types.Address{}, false
	}
	idx := leaderIndex(slot, uint64(len(active)))
	addr := active[idx].Address
	e.leaderCache.Add(slot, addr)
	return addr, true
}

// TotalActiveStake sums the stake of every active, unjailed validator.
func (e *Engine) TotalActiveStake() *uint256.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalActiveStakeLocked()
}

func (e *Engine) totalActiveStakeLocked() *uint256.Int {
	total := uint256.NewInt(0)
	for _, v := range e.activeValidators() {
		total.Add(total, v.Stake)
	}
	return total
}

// isSuperMajority reports whether stake*3 > total*2, the two-thirds
// supermajority threshold every finality check in this package uses.
func isSuperMajority(stake, total *uint256.Int) bool {
	if total.IsZero() {
		return false
	}
	lhs := new(uint256.Int).Mul(stake, uint256.NewInt(3))
	rhs := new(uint256.Int).Mul(total, uint256.NewInt(2))
	return lhs.Cmp(rhs) > 0
}

// IsSuperMajority reports whether voteStake represents more than two
// thirds of the currently active stake, matching
// ConsensusEngine::is_super_majority's `stake * 3 > total * 2` rule.
func (e *Engine) IsSuperMajority(voteStake *uint256.Int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return isSuperMajority(voteStake, e.totalActiveStakeLocked())
}

// ProcessVote records a validator's vote for a block hash and, if the
// accumulated stake now clears the supermajority threshold, marks that
// hash finalized.
func (e *Engine) ProcessVote(blockHash types.Hash, validator types.Address, signature []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Votes.AddVote(blockHash, validator, signature)
	stake := e.Votes.StakeForBlock(blockHash, e.Validators)
	total := e.totalActiveStakeLocked()
	if isSuperMajority(stake, total) {
		e.FinalizedHash = blockHash
		log.Debug("consensus: block reached vote supermajority", "hash", blockHash, "stake", stake, "total", total)
	}
}

// RecordParticipation updates missed-block counters after a block at the
// given slot is produced: the proposer's counter resets, every other
// active validator's increments. It does not slash on its own — the
// pipeline decides whether a validator crossing MaxMissedBlocksBeforeJail
// is slashed for Downtime, matching the Rust comment that this call would
// be made by node logic.
func (e *Engine) RecordParticipation(proposer types.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range e.Validators {
		if !v.IsActive {
			continue
		}
		if v.Address == proposer {
			v.MissedBlocks = 0
			continue
		}
		v.MissedBlocks++
	}
}

// ValidatorsNearingJail returns active validators whose missed-block
// count has crossed params.MaxMissedBlocksBeforeJail, for the caller to
// slash for Downtime.
func (e *Engine) ValidatorsNearingJail() []types.Address {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []types.Address
	for _, v := range e.Validators {
		if v.IsActive && v.MissedBlocks >= params.MaxMissedBlocksBeforeJail {
			out = append(out, v.Address)
		}
	}
	return out
}

// AdvanceEpoch runs the epoch-boundary bookkeeping if height lands on a
// BlocksPerEpoch boundary: reward distribution followed by active-set
// recomputation, matching ConsensusEngine::advance_era.
func (e *Engine) AdvanceEpoch(height uint64) {
	if height == 0 || height%params.BlocksPerEpoch != 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.distributeRewardsLocked(height)
	e.recomputeActiveSetLocked()
	e.leaderCache.Purge()
}

// distributeRewardsLocked splits one epoch's block rewards across active
// validators proportional to stake, further splitting each validator's
// share into a commission cut (kept) and a delegator cut, matching
// distribute_rewards. Delegator distribution against the staking ledger
// is the caller's responsibility; this only grows the validator's own
// stake entry, the same simplification the Rust source documents.
func (e *Engine) distributeRewardsLocked(height uint64) {
	rewardPerBlock := params.BlockReward(height)
	totalReward := new(uint256.Int).Mul(uint256.NewInt(rewardPerBlock), uint256.NewInt(params.BlocksPerEpoch))

	totalActive := e.totalActiveStakeLocked()
	if totalActive.IsZero() {
		return
	}
	for _, v := range e.Validators {
		if !v.IsActive {
			continue
		}
		share := new(uint256.Int).Div(new(uint256.Int).Mul(totalReward, v.Stake), totalActive)
		commission := new(uint256.Int).Div(new(uint256.Int).Mul(share, uint256.NewInt(uint64(v.CommissionBps))), uint256.NewInt(10000))
		delegatorShare := new(uint256.Int).Sub(share, commission)
		v.Stake = new(uint256.Int).Add(v.Stake, commission)
		v.Stake = new(uint256.Int).Add(v.Stake, delegatorShare)
	}
}

// recomputeActiveSetLocked sorts validators by stake descending and
// activates the top params.ActiveValidatorCount that meet the minimum
// stake and are not jailed, matching recompute_active_set.
func (e *Engine) recomputeActiveSetLocked() {
	sort.SliceStable(e.Validators, func(i, j int) bool {
		return e.Validators[i].Stake.Cmp(e.Validators[j].Stake) > 0
	})
	for i, v := range e.Validators {
		eligible := uint64(i) < params.ActiveValidatorCount &&
			v.Stake.Cmp(params.MinValidatorStake) >= 0 &&
			e.jailedUntil[v.Address] == 0
		v.IsActive = eligible
	}
}

// leaderIndex computes SHA3-256(slot_be)[0:8] mod n, n > 0.
func leaderIndex(slot, n uint64) uint64 {
	h := crypto.SHA3_256(encodeSlot(slot))
	var idx uint64
	for _, b := range h[:8] {
		idx = idx<<8 | uint64(b)
	}
	return idx % n
}

func encodeSlot(slot uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[7-i] = byte(slot >> (8 * i))
	}
	return b
}

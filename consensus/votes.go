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

package consensus

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/types"
)

// VoteAggregator tallies per-block validator votes, mirroring the Rust
// VoteAggregator's block_hash -> validator -> signature map.
type VoteAggregator struct {
	mu    sync.Mutex
	votes map[types.Hash]map[types.Address][]byte
	// seen tracks, per block hash, the set of validators who have already
	// voted, so duplicate votes from the same validator for the same
	// block are rejected rather than silently overwriting the signature.
	seen map[types.Hash]mapset.Set[types.Address]
}

// NewVoteAggregator returns an empty aggregator.
func NewVoteAggregator() *VoteAggregator {
	return &VoteAggregator{
		votes: make(map[types.Hash]map[types.Address][]byte),
		seen:  make(map[types.Hash]mapset.Set[types.Address]),
	}
}

// AddVote records validator's signature over blockHash. A second vote
// from the same validator for the same block is a no-op: callers that
// need to detect and punish a changed vote should compare against the
// first-seen signature before calling AddVote again.
func (a *VoteAggregator) AddVote(blockHash types.Hash, validator types.Address, signature []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.votes[blockHash] == nil {
		a.votes[blockHash] = make(map[types.Address][]byte)
		a.seen[blockHash] = mapset.NewSet[types.Address]()
	}
	if a.seen[blockHash].Contains(validator) {
		return
	}
	a.seen[blockHash].Add(validator)
	a.votes[blockHash][validator] = signature
}

// StakeForBlock returns the sum of stake held by validators who have
// voted for blockHash, restricted to the given validator list.
func (a *VoteAggregator) StakeForBlock(blockHash types.Hash, validators []*ValidatorInfo) *uint256.Int {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := uint256.NewInt(0)
	blockVotes, ok := a.votes[blockHash]
	if !ok {
		return total
	}
	for _, v := range validators {
		if _, voted := blockVotes[v.Address]; voted {
			total.Add(total, v.Stake)
		}
	}
	return total
}

// HasVoted reports whether validator has already voted for blockHash.
func (a *VoteAggregator) HasVoted(blockHash types.Hash, validator types.Address) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	set, ok := a.seen[blockHash]
	return ok && set.Contains(validator)
}

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

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// pendingCommit is one height's in-progress finality vote, mirroring the
// Rust FinalityCommit.
type pendingCommit struct {
	blockHash  types.Hash
	height     uint64
	round      uint32
	signatures map[types.Address][]byte
}

// FinalityGadget is the BFT finalization layer, separate from
// VoteAggregator: it additionally tracks height/round so a validator
// voting for two different blocks at the same height/round is caught as
// equivocation rather than silently tallied, matching
// original_source/kortana-mainnet/src/consensus/bft.rs's FinalityGadget.
type FinalityGadget struct {
	mu sync.Mutex

	LastFinalizedHeight uint64
	LastFinalizedHash   types.Hash

	pending map[uint64]*pendingCommit
}

// NewFinalityGadget returns an empty gadget.
func NewFinalityGadget() *FinalityGadget {
	return &FinalityGadget{pending: make(map[uint64]*pendingCommit)}
}

// AddVote records a PreCommit vote for (blockHash, height, round) from
// validator, detects equivocation, and returns (finalized, error). A
// validator is already known to the set if it appears in validators;
// ErrUnknownValidator otherwise. ErrDuplicateVote is returned for any
// vote whose block hash or round differs from the commit already tracked
// at that height, whether or not this validator voted there before.
func (g *FinalityGadget) AddVote(blockHash types.Hash, height uint64, round uint32, validator types.Address, signature []byte, validators []*ValidatorInfo) (bool, error) {
	if !containsValidator(validators, validator) {
		return false, kerrors.ErrUnknownValidator
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	commit, ok := g.pending[height]
	if !ok {
		commit = &pendingCommit{
			blockHash:  blockHash,
			height:     height,
			round:      round,
			signatures: make(map[types.Address][]byte),
		}
		g.pending[height] = commit
	}

	// A vote for a different block hash or round at a height already
	// tracked is either equivocation (if this validator already voted
	// here) or simply a losing proposal at this height; either way it
	// cannot extend the tracked commit.
	if commit.blockHash != blockHash || commit.round != round {
		return false, kerrors.ErrDuplicateVote
	}

	commit.signatures[validator] = signature
	return g.checkFinalityLocked(height, validators), nil
}

// checkFinalityLocked finalizes height if its pending commit has cleared
// the two-thirds stake supermajority, matching check_finality.
func (g *FinalityGadget) checkFinalityLocked(height uint64, validators []*ValidatorInfo) bool {
	commit, ok := g.pending[height]
	if !ok {
		return false
	}

	total, committed := uint256.NewInt(0), uint256.NewInt(0)
	for _, v := range validators {
		if !v.IsActive {
			continue
		}
		total.Add(total, v.Stake)
		if _, voted := commit.signatures[v.Address]; voted {
			committed.Add(committed, v.Stake)
		}
	}
	if !isSuperMajority(committed, total) {
		return false
	}

	g.LastFinalizedHeight = commit.height
	g.LastFinalizedHash = commit.blockHash
	return true
}

func containsValidator(validators []*ValidatorInfo, addr types.Address) bool {
	for _, v := range validators {
		if v.Address == addr {
			return true
		}
	}
	return false
}

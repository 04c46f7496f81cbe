// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.

package consensus

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

func TestFinalityGadgetRejectsUnknownValidator(t *testing.T) {
	g := NewFinalityGadget()
	_, err := g.AddVote(types.Hash{0x01}, 1, 0, addrAt(9), nil, twoValidators())
	if !kerrors.Is(err, kerrors.ErrUnknownValidator) {
		t.Fatalf("got %v, want ErrUnknownValidator", err)
	}
}

func TestFinalityGadgetFinalizesOnSupermajority(t *testing.T) {
	validators := []*ValidatorInfo{
		{Address: addrAt(1), Stake: uint256.NewInt(34), IsActive: true},
		{Address: addrAt(2), Stake: uint256.NewInt(33), IsActive: true},
		{Address: addrAt(3), Stake: uint256.NewInt(33), IsActive: true},
	}
	g := NewFinalityGadget()
	hash := types.Hash{0xaa}

	finalized, err := g.AddVote(hash, 5, 0, addrAt(1), []byte("s1"), validators)
	if err != nil || finalized {
		t.Fatalf("finalized=%v err=%v, want false/nil after 34/100", finalized, err)
	}
	finalized, err = g.AddVote(hash, 5, 0, addrAt(2), []byte("s2"), validators)
	if err != nil || !finalized {
		t.Fatalf("finalized=%v err=%v, want true/nil after 67/100", finalized, err)
	}
	if g.LastFinalizedHeight != 5 || g.LastFinalizedHash != hash {
		t.Fatal("FinalityGadget did not record the finalized height/hash")
	}
}

func TestFinalityGadgetRejectsConflictingVote(t *testing.T) {
	validators := twoValidators()
	g := NewFinalityGadget()

	if _, err := g.AddVote(types.Hash{0x01}, 1, 0, addrAt(1), nil, validators); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	_, err := g.AddVote(types.Hash{0x02}, 1, 0, addrAt(2), nil, validators)
	if !kerrors.Is(err, kerrors.ErrDuplicateVote) {
		t.Fatalf("conflicting block hash at the same height/round: got %v, want ErrDuplicateVote", err)
	}
}

func TestVoteAggregatorIgnoresSecondVoteFromSameValidator(t *testing.T) {
	a := NewVoteAggregator()
	hash := types.Hash{0x01}
	validators := []*ValidatorInfo{{Address: addrAt(1), Stake: uint256.NewInt(10), IsActive: true}}

	a.AddVote(hash, addrAt(1), []byte("first"))
	a.AddVote(hash, addrAt(1), []byte("second"))

	if !a.HasVoted(hash, addrAt(1)) {
		t.Fatal("expected validator to be recorded as having voted")
	}
	if got := a.StakeForBlock(hash, validators); got.Cmp(uint256.NewInt(10)) != 0 {
		t.Fatalf("StakeForBlock = %s, want 10 (counted once)", got)
	}
}

// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.

package consensus

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/params"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

func addrAt(b byte) types.Address {
	var a types.Address
	a[0] = b
	return a
}

func twoValidators() []*ValidatorInfo {
	return []*ValidatorInfo{
		{Address: addrAt(1), Stake: uint256.NewInt(100), IsActive: true},
		{Address: addrAt(2), Stake: uint256.NewInt(100), IsActive: true},
	}
}

func TestLeaderElectionDeterministic(t *testing.T) {
	e := NewEngine(twoValidators())

	l1a, ok := e.Leader(1)
	if !ok {
		t.Fatal("expected a leader for slot 1")
	}
	l1b, _ := e.Leader(1)
	if l1a != l1b {
		t.Fatal("leader election is not deterministic across repeated calls")
	}
}

func TestLeaderElectionNoActiveValidators(t *testing.T) {
	e := NewEngine([]*ValidatorInfo{{Address: addrAt(1), Stake: uint256.NewInt(100), IsActive: false}})
	if _, ok := e.Leader(1); ok {
		t.Fatal("expected no leader when no validators are active")
	}
}

func TestIsSuperMajority(t *testing.T) {
	e := NewEngine(twoValidators())
	if e.IsSuperMajority(uint256.NewInt(100)) {
		t.Fatal("100/200 stake should not be a supermajority")
	}
	if !e.IsSuperMajority(uint256.NewInt(134)) {
		t.Fatal("134/200 stake should clear the two-thirds threshold")
	}
}

func TestProcessVoteFinalizesOnSupermajority(t *testing.T) {
	e := NewEngine([]*ValidatorInfo{
		{Address: addrAt(1), Stake: uint256.NewInt(34), IsActive: true},
		{Address: addrAt(2), Stake: uint256.NewInt(33), IsActive: true},
		{Address: addrAt(3), Stake: uint256.NewInt(33), IsActive: true},
	})
	hash := types.Hash{0xaa}

	e.ProcessVote(hash, addrAt(1), []byte("sig1"))
	if e.FinalizedHash == hash {
		t.Fatal("should not finalize on 34/100 stake")
	}
	e.ProcessVote(hash, addrAt(2), []byte("sig2"))
	if e.FinalizedHash != hash {
		t.Fatal("should finalize once 67/100 stake has voted")
	}
}

func TestSlashJailsAboveThreshold(t *testing.T) {
	e := NewEngine([]*ValidatorInfo{{Address: addrAt(1), Stake: uint256.NewInt(1000), IsActive: true}})

	if err := e.Slash(addrAt(1), SlashByzantine, 10); err != nil {
		t.Fatalf("Slash: %v", err)
	}
	v := e.findValidatorLocked(addrAt(1))
	if !v.Stake.IsZero() {
		t.Fatalf("Byzantine slash (10000 bps) should zero the stake, got %s", v.Stake)
	}
	if !e.IsJailed(addrAt(1)) {
		t.Fatal("Byzantine slash should jail the validator")
	}
	if v.IsActive {
		t.Fatal("jailed validator should be deactivated")
	}
}

func TestSlashBelowThresholdDoesNotJail(t *testing.T) {
	e := NewEngine([]*ValidatorInfo{{Address: addrAt(1), Stake: uint256.NewInt(1000), IsActive: true}})

	if err := e.Slash(addrAt(1), SlashDowntime, 10); err != nil {
		t.Fatalf("Slash: %v", err)
	}
	v := e.findValidatorLocked(addrAt(1))
	if v.Stake.Cmp(uint256.NewInt(990)) != 0 {
		t.Fatalf("Downtime slash (100 bps) of 1000 should leave 990, got %s", v.Stake)
	}
	if e.IsJailed(addrAt(1)) {
		t.Fatal("Downtime slash should not jail the validator")
	}
}

func TestSlashUnknownValidator(t *testing.T) {
	e := NewEngine(twoValidators())
	if err := e.Slash(addrAt(99), SlashDowntime, 1); !kerrors.Is(err, kerrors.ErrUnknownValidator) {
		t.Fatalf("Slash on unknown validator: got %v, want ErrUnknownValidator", err)
	}
}

func TestCheckUnjailReactivatesEligibleValidator(t *testing.T) {
	e := NewEngine([]*ValidatorInfo{{Address: addrAt(1), Stake: new(uint256.Int).Set(params.MinValidatorStake), IsActive: true}})
	e.Jail(addrAt(1), 100)

	e.CheckUnjail(addrAt(1), 50)
	if !e.IsJailed(addrAt(1)) {
		t.Fatal("should still be jailed before the jail-until slot")
	}

	e.CheckUnjail(addrAt(1), 100)
	if e.IsJailed(addrAt(1)) {
		t.Fatal("should be released once currentSlot reaches jail-until")
	}
	if v := e.findValidatorLocked(addrAt(1)); !v.IsActive {
		t.Fatal("validator meeting MinValidatorStake should reactivate on unjail")
	}
}

func TestCheckUnjailWithholdsUndercapitalizedValidator(t *testing.T) {
	e := NewEngine([]*ValidatorInfo{{Address: addrAt(1), Stake: uint256.NewInt(1), IsActive: true}})
	e.Jail(addrAt(1), 10)
	e.CheckUnjail(addrAt(1), 10)
	if v := e.findValidatorLocked(addrAt(1)); v.IsActive {
		t.Fatal("validator below MinValidatorStake should not reactivate")
	}
}

func TestAdvanceEpochRecomputesActiveSet(t *testing.T) {
	e := NewEngine([]*ValidatorInfo{
		{Address: addrAt(1), Stake: new(uint256.Int).Mul(params.MinValidatorStake, uint256.NewInt(2)), IsActive: true},
		{Address: addrAt(2), Stake: new(uint256.Int).Div(params.MinValidatorStake, uint256.NewInt(2)), IsActive: true},
	})

	e.AdvanceEpoch(params.BlocksPerEpoch)

	if v := e.findValidatorLocked(addrAt(1)); !v.IsActive {
		t.Fatal("validator above MinValidatorStake should remain active after epoch recompute")
	}
	if v := e.findValidatorLocked(addrAt(2)); v.IsActive {
		t.Fatal("validator below MinValidatorStake should be deactivated after epoch recompute")
	}
}

func TestAdvanceEpochNoOpOffBoundary(t *testing.T) {
	e := NewEngine(twoValidators())
	before := new(uint256.Int).Set(e.Validators[0].Stake)
	e.AdvanceEpoch(params.BlocksPerEpoch - 1)
	if e.Validators[0].Stake.Cmp(before) != 0 {
		t.Fatal("AdvanceEpoch should be a no-op off the epoch boundary")
	}
}

func TestRecordParticipationTracksMissedBlocks(t *testing.T) {
	e := NewEngine(twoValidators())
	e.RecordParticipation(addrAt(1))
	e.RecordParticipation(addrAt(1))

	nearing := e.ValidatorsNearingJail()
	if len(nearing) != 0 {
		t.Fatalf("2 missed blocks should not yet reach MaxMissedBlocksBeforeJail=%d", params.MaxMissedBlocksBeforeJail)
	}

	for i := uint64(0); i < params.MaxMissedBlocksBeforeJail; i++ {
		e.RecordParticipation(addrAt(1))
	}
	nearing = e.ValidatorsNearingJail()
	if len(nearing) != 1 || nearing[0] != addrAt(2) {
		t.Fatalf("expected validator 2 to be nearing jail, got %v", nearing)
	}
}

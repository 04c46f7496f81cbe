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
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/log"
	"github.com/kortanachain/kortana/params"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// SlashReason names why a validator's stake was reduced, mirroring the
// Rust SlashReason enum.
type SlashReason uint8

const (
	SlashDoubleProposal SlashReason = iota
	SlashEquivocation
	SlashDowntime
	SlashByzantine
)

// bps returns reason's basis-point penalty out of params.
func (r SlashReason) bps() uint64 {
	switch r {
	case SlashDoubleProposal:
		return params.SlashDoubleProposalBps
	case SlashEquivocation:
		return params.SlashEquivocationBps
	case SlashDowntime:
		return params.SlashDowntimeBps
	case SlashByzantine:
		return params.SlashByzantineBps
	default:
		return 0
	}
}

func (r SlashReason) String() string {
	switch r {
	case SlashDoubleProposal:
		return "double_proposal"
	case SlashEquivocation:
		return "equivocation"
	case SlashDowntime:
		return "downtime"
	case SlashByzantine:
		return "byzantine"
	default:
		return "unknown"
	}
}

// Slash reduces addr's stake by reason's basis-point penalty, records the
// incident, and jails the validator if the penalty meets
// params.JailThresholdBps, matching slash_validator.
func (e *Engine) Slash(addr types.Address, reason SlashReason, slot uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := e.findValidatorLocked(addr)
	if v == nil {
		return kerrors.ErrUnknownValidator
	}

	bps := reason.bps()
	amount := new(uint256.Int).Div(new(uint256.Int).Mul(v.Stake, uint256.NewInt(bps)), uint256.NewInt(10000))
	if amount.Cmp(v.Stake) > 0 {
		amount = v.Stake
	}
	v.Stake = new(uint256.Int).Sub(v.Stake, amount)

	e.slashHistory[addr] = append(e.slashHistory[addr], SlashRecord{Slot: slot, Reason: reason})
	log.Warn("consensus: validator slashed", "validator", addr, "reason", reason.String(), "amount", amount, "slot", slot)

	if bps >= params.JailThresholdBps {
		e.jailLocked(addr, slot+params.JailDurationSlots)
	}
	return nil
}

// Jail deactivates addr until untilSlot, matching jail_validator.
func (e *Engine) Jail(addr types.Address, untilSlot uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jailLocked(addr, untilSlot)
}

func (e *Engine) jailLocked(addr types.Address, untilSlot uint64) {
	e.jailedUntil[addr] = untilSlot
	if v := e.findValidatorLocked(addr); v != nil {
		v.IsActive = false
	}
	e.leaderCache.Purge()
}

// CheckUnjail releases addr from jail once currentSlot reaches its
// jail-until slot, reactivating it only if its stake still meets the
// minimum, matching check_unjail.
func (e *Engine) CheckUnjail(addr types.Address, currentSlot uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	until, jailed := e.jailedUntil[addr]
	if !jailed || currentSlot < until {
		return
	}
	delete(e.jailedUntil, addr)
	if v := e.findValidatorLocked(addr); v != nil && v.Stake.Cmp(params.MinValidatorStake) >= 0 {
		v.IsActive = true
	}
}

// IsJailed reports whether addr is currently jailed.
func (e *Engine) IsJailed(addr types.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, jailed := e.jailedUntil[addr]
	return jailed
}

// SlashHistory returns addr's recorded slashing incidents.
func (e *Engine) SlashHistory(addr types.Address) []SlashRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]SlashRecord(nil), e.slashHistory[addr]...)
}

func (e *Engine) findValidatorLocked(addr types.Address) *ValidatorInfo {
	for _, v := range e.Validators {
		if v.Address == addr {
			return v
		}
	}
	return nil
}

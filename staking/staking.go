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

// Package staking holds the delegation/unbonding ledger consulted by the
// state-transition processor's staking dispatch and matured-unbonding
// step. It owns no native balance itself: undelegated stake is locked
// until maturity, at which point the processor credits the delegator's
// account balance with the released amount.
package staking

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
	"github.com/kortanachain/kortana/params"
)

// Delegation records one delegator's stake behind one validator.
type Delegation struct {
	Delegator  types.Address
	Validator  types.Address
	Amount     *uint256.Int
	StartBlock uint64
}

// Unbonding is a delegation in the process of being withdrawn: the amount
// is already removed from the validator's delegated stake but not yet
// credited back to the delegator's spendable balance.
type Unbonding struct {
	Delegator   types.Address
	Validator   types.Address
	Amount      *uint256.Int
	ReleaseBlock uint64
}

// Released is one matured unbonding entry's payout, returned by
// ProcessMatured for the processor to credit against account balances.
type Released struct {
	Delegator types.Address
	Amount    *uint256.Int
}

// Store is the validator -> delegations ledger plus the pending unbonding
// queue. A single mutex protects it, matching the node's single-writer
// discipline: every mutation runs inside the processor's one mutator
// goroutine, but Store is still made safe for an RPC snapshot reader.
type Store struct {
	mu               sync.RWMutex
	delegations      map[types.Address][]*Delegation // validator -> delegations
	unbonding        []*Unbonding
	unbondingPeriod  uint64
}

// New returns an empty staking store with the given unbonding window.
func New(unbondingPeriodBlocks uint64) *Store {
	if unbondingPeriodBlocks == 0 {
		unbondingPeriodBlocks = params.UnbondingPeriodBlocks
	}
	return &Store{
		delegations:     make(map[types.Address][]*Delegation),
		unbondingPeriod: unbondingPeriodBlocks,
	}
}

// Delegate appends a new delegation of amount from delegator to validator,
// recorded at height. Delegating does not move native balance; the
// processor debits the delegator's account before calling this.
func (s *Store) Delegate(delegator, validator types.Address, amount *uint256.Int, height uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegations[validator] = append(s.delegations[validator], &Delegation{
		Delegator:  delegator,
		Validator:  validator,
		Amount:     new(uint256.Int).Set(amount),
		StartBlock: height,
	})
}

// Undelegate decrements delegator's existing stake behind validator by
// amount and enqueues an unbonding entry that matures at
// height+unbondingPeriod. It rejects if the delegator has no delegation of
// at least amount behind that validator.
func (s *Store) Undelegate(delegator, validator types.Address, amount *uint256.Int, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.delegations[validator]
	for _, d := range entries {
		if d.Delegator == delegator && d.Amount.Cmp(amount) >= 0 {
			d.Amount = new(uint256.Int).Sub(d.Amount, amount)
			s.unbonding = append(s.unbonding, &Unbonding{
				Delegator:    delegator,
				Validator:    validator,
				Amount:       new(uint256.Int).Set(amount),
				ReleaseBlock: height + s.unbondingPeriod,
			})
			return nil
		}
	}
	return kerrors.ErrInsufficientStake
}

// ProcessMatured removes every unbonding entry whose ReleaseBlock is at or
// before height (inclusive boundary) and returns the (delegator, amount)
// pairs the processor must credit back to spendable balance.
func (s *Store) ProcessMatured(height uint64) []Released {
	s.mu.Lock()
	defer s.mu.Unlock()

	var released []Released
	remaining := s.unbonding[:0]
	for _, u := range s.unbonding {
		if u.ReleaseBlock <= height {
			released = append(released, Released{Delegator: u.Delegator, Amount: u.Amount})
		} else {
			remaining = append(remaining, u)
		}
	}
	s.unbonding = remaining
	return released
}

// TotalDelegated returns the sum of all non-unbonded delegations behind
// validator, computed from the delegation ledger alone and independent of
// any ValidatorInfo.Stake bookkeeping.
func (s *Store) TotalDelegated(validator types.Address) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := uint256.NewInt(0)
	for _, d := range s.delegations[validator] {
		total = new(uint256.Int).Add(total, d.Amount)
	}
	return total
}

// Delegations returns a snapshot copy of the delegations behind validator.
func (s *Store) Delegations(validator types.Address) []*Delegation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Delegation, len(s.delegations[validator]))
	copy(out, s.delegations[validator])
	return out
}

// PendingUnbonding returns a snapshot copy of every unbonding entry not
// yet matured, for RPC/explorer read access.
func (s *Store) PendingUnbonding() []*Unbonding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Unbonding, len(s.unbonding))
	copy(out, s.unbonding)
	return out
}

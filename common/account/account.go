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

// Package account defines the per-address record committed into the state
// trie.
package account

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/types"
)

// StateAccount is the value stored at an address's leaf in the state trie.
type StateAccount struct {
	Nonce       uint64
	Balance     *uint256.Int
	IsContract  bool
	CodeHash    types.Hash // keccak256 of the runtime bytecode; zero for EOAs
	StorageRoot types.Hash // root of this account's storage sub-trie
}

// NewEOA returns a freshly created externally-owned account with zero
// balance and nonce.
func NewEOA() *StateAccount {
	return &StateAccount{Balance: uint256.NewInt(0)}
}

// Copy returns a deep copy safe to mutate independently of the receiver.
func (a *StateAccount) Copy() *StateAccount {
	cp := *a
	cp.Balance = new(uint256.Int).Set(a.Balance)
	return &cp
}

// Empty reports whether the account has the "never existed" shape used by
// state pruning and existence checks: zero nonce, zero balance, not a
// contract.
func (a *StateAccount) Empty() bool {
	return a.Nonce == 0 && (a.Balance == nil || a.Balance.IsZero()) && !a.IsContract
}

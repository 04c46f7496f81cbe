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

// Package txspool implements the bounded, fee-priority, deduplicated
// mempool: the (sender -> expected nonce) cache that NextNonce reads
// (admission does not check nonces), and the btree-backed priority queue
// itself.
package txspool

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/account"
	"github.com/kortanachain/kortana/common/types"
)

// ReadState is the account-ledger surface the mempool consults: the
// sender's current on-chain nonce and balance, read through a snapshot of
// committed state rather than the in-flight block being built.
type ReadState interface {
	GetNonce(addr types.Address) uint64
	GetBalance(addr types.Address) *uint256.Int
	State(addr types.Address) (*account.StateAccount, error)
}

// txNoncer caches the next expected nonce per sender so repeated NextNonce
// reads don't re-read committed state for the same account, mirroring the
// teacher's txNoncer pattern.
type txNoncer struct {
	fallback ReadState

	mu     sync.Mutex
	nonces map[types.Address]uint64
}

// newTxNoncer wraps db with an empty cache.
func newTxNoncer(db ReadState) *txNoncer {
	return &txNoncer{
		fallback: db,
		nonces:   make(map[types.Address]uint64),
	}
}

// get returns addr's cached nonce, falling back to and caching a read
// through the underlying state on a cache miss.
func (n *txNoncer) get(addr types.Address) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	if nonce, ok := n.nonces[addr]; ok {
		return nonce
	}
	nonce := n.fallback.GetNonce(addr)
	n.nonces[addr] = nonce
	return nonce
}

// set unconditionally overwrites addr's cached nonce.
func (n *txNoncer) set(addr types.Address, nonce uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nonces[addr] = nonce
}

// setIfLower overwrites addr's cached nonce only if nonce is lower than
// its current value: the cached nonce, or on a cache miss the nonce read
// through the underlying state.
func (n *txNoncer) setIfLower(addr types.Address, nonce uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.nonces[addr]; !ok {
		n.nonces[addr] = n.fallback.GetNonce(addr)
	}
	if n.nonces[addr] <= nonce {
		return
	}
	n.nonces[addr] = nonce
}

// setAll overwrites the cached nonce of every sender in all, leaving other
// cached entries as they are; used after a block lands to seed every
// affected sender's nonce from the newly committed state.
func (n *txNoncer) setAll(all map[types.Address]uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for addr, nonce := range all {
		n.nonces[addr] = nonce
	}
}

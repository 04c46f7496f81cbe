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

package txspool

import (
	"sync"

	"github.com/google/btree"

	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// btreeDegree is the B-tree's branching factor; 32 is the library's own
// suggested default for workloads like this one.
const btreeDegree = 32

// item is one pooled transaction plus the ordering key the priority index
// sorts by: gas price descending, arrival order ascending as the tie-break
// the spec allows.
type item struct {
	tx       *transaction.Transaction
	gasPrice *uint64
	arrival  uint64
}

// itemLess orders items so that iterating a btree.BTreeG ascending yields
// highest-gas-price-first, and for equal gas prices, earliest-arrival-first.
func itemLess(a, b *item) bool {
	ap, bp := *a.gasPrice, *b.gasPrice
	if ap != bp {
		return ap > bp
	}
	return a.arrival < b.arrival
}

// Pool is the bounded, deduplicated, fee-priority mempool: admission is
// idempotent per transaction hash, Select never mutates the pool, and
// Remove is the only way entries leave before capacity eviction (there is
// none — a full pool simply rejects further admission, matching spec
// §4.7's "rejects ... when at capacity").
type Pool struct {
	mu      sync.RWMutex
	maxSize int
	byHash  map[types.Hash]*item
	index   *btree.BTreeG[*item]
	noncer  *txNoncer
	arrival uint64
}

// New returns an empty pool bounded at maxSize entries. state backs the
// nonce cache that NextNonce reads; Add does not check nonces.
func New(maxSize int, state ReadState) *Pool {
	return &Pool{
		maxSize: maxSize,
		byHash:  make(map[types.Hash]*item),
		index:   btree.NewG(btreeDegree, itemLess),
		noncer:  newTxNoncer(state),
	}
}

// Add admits tx, returning whether it was newly admitted. Admission is
// idempotent: re-adding an already-known hash leaves the pool unchanged
// and returns false with ErrAlreadyKnown. A full pool rejects further
// admission with ErrMempoolFull.
func (p *Pool) Add(tx *transaction.Transaction) (bool, error) {
	hash := tx.Hash()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byHash[hash]; ok {
		return false, kerrors.ErrAlreadyKnown
	}
	if len(p.byHash) >= p.maxSize {
		return false, kerrors.ErrMempoolFull
	}

	gasPrice := tx.GasPrice.Uint64()
	it := &item{tx: tx, gasPrice: &gasPrice, arrival: p.arrival}
	p.arrival++

	p.byHash[hash] = it
	p.index.ReplaceOrInsert(it)
	return true, nil
}

// Remove evicts hash from the pool, if present. It is invoked by the
// block-production pipeline once a transaction lands in a committed block.
func (p *Pool) Remove(hash types.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()

	it, ok := p.byHash[hash]
	if !ok {
		return
	}
	delete(p.byHash, hash)
	p.index.Delete(it)
}

// Select returns the largest-fee-first ordered list of pending
// transactions whose cumulative gas limit does not exceed gasBudget. It
// does not remove anything from the pool; the caller removes entries
// individually once they are actually included in a block.
func (p *Pool) Select(gasBudget uint64) []*transaction.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var selected []*transaction.Transaction
	var totalGas uint64
	p.index.Ascend(func(it *item) bool {
		if totalGas+it.tx.GasLimit > gasBudget {
			return true
		}
		totalGas += it.tx.GasLimit
		selected = append(selected, it.tx)
		return true
	})
	return selected
}

// Get returns the pending transaction with the given hash, if any.
func (p *Pool) Get(hash types.Hash) (*transaction.Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	it, ok := p.byHash[hash]
	if !ok {
		return nil, false
	}
	return it.tx, true
}

// Len returns the number of pending transactions.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byHash)
}

// Pending returns every pending transaction, in no particular order — used
// by the RPC adapter's pending-transactions read method.
func (p *Pool) Pending() []*transaction.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*transaction.Transaction, 0, len(p.byHash))
	for _, it := range p.byHash {
		out = append(out, it.tx)
	}
	return out
}

// NextNonce returns the cached next-expected nonce for addr, consulting
// committed state on a cache miss.
func (p *Pool) NextNonce(addr types.Address) uint64 {
	return p.noncer.get(addr)
}

// SyncNonces seeds the noncer from a block's touched senders after that
// block commits, so subsequent NextNonce reads don't return stale nonces.
func (p *Pool) SyncNonces(touched map[types.Address]uint64) {
	p.noncer.setAll(touched)
}

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

package storage

import (
	"sync"

	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
	"github.com/kortanachain/kortana/modules/state"
)

// MemStore is the dev-profile Store: every table is an in-memory map
// guarded by one mutex, matching the single-writer discipline the rest of
// the node follows. It is never meant to survive a process restart; the
// on-disk KV wrapper that would is explicitly out of scope per spec §1.
type MemStore struct {
	mu sync.RWMutex

	blocksByHeight map[uint64]*block.Block
	blocksByHash   map[types.Hash]*block.Block

	txs       map[types.Hash]*transaction.Transaction
	txLocs    map[types.Hash]TxLocation
	receipts  map[types.Hash]*block.Receipt

	latestHeight uint64
	latestState  *state.StateDB
	haveState    bool

	addrIndex map[types.Address][]types.Hash
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{
		blocksByHeight: make(map[uint64]*block.Block),
		blocksByHash:   make(map[types.Hash]*block.Block),
		txs:            make(map[types.Hash]*transaction.Transaction),
		txLocs:         make(map[types.Hash]TxLocation),
		receipts:       make(map[types.Hash]*block.Receipt),
		addrIndex:      make(map[types.Address][]types.Hash),
	}
}

// PutBlock records blk under both its height and its hash.
func (m *MemStore) PutBlock(blk *block.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocksByHeight[blk.Header.Height] = blk
	m.blocksByHash[blk.Hash()] = blk
	return nil
}

// GetBlock returns the block committed at height.
func (m *MemStore) GetBlock(height uint64) (*block.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blk, ok := m.blocksByHeight[height]
	if !ok {
		return nil, kerrors.ErrKeyNotFound
	}
	return blk, nil
}

// GetBlockByHash returns the block whose header hashes to hash.
func (m *MemStore) GetBlockByHash(hash types.Hash) (*block.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blk, ok := m.blocksByHash[hash]
	if !ok {
		return nil, kerrors.ErrKeyNotFound
	}
	return blk, nil
}

// PutTransaction records tx by its own hash, independent of any block
// location it may later acquire.
func (m *MemStore) PutTransaction(tx *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[tx.Hash()] = tx
	return nil
}

// PutTransactionLocation records where hash landed once its block commits.
func (m *MemStore) PutTransactionLocation(hash types.Hash, height uint64, blockHash types.Hash, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txLocs[hash] = TxLocation{Height: height, BlockHash: blockHash, Index: index}
	return nil
}

// GetTransaction returns the transaction recorded under hash.
func (m *MemStore) GetTransaction(hash types.Hash) (*transaction.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.txs[hash]
	if !ok {
		return nil, kerrors.ErrKeyNotFound
	}
	return tx, nil
}

// GetTransactionLocation returns the block location recorded for hash.
func (m *MemStore) GetTransactionLocation(hash types.Hash) (TxLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.txLocs[hash]
	if !ok {
		return TxLocation{}, kerrors.ErrKeyNotFound
	}
	return loc, nil
}

// PutReceipt records a transaction's execution outcome, keyed by its
// transaction hash.
func (m *MemStore) PutReceipt(receipt *block.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[receipt.TxHash] = receipt
	return nil
}

// GetReceipt returns the receipt recorded for hash.
func (m *MemStore) GetReceipt(hash types.Hash) (*block.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.receipts[hash]
	if !ok {
		return nil, kerrors.ErrKeyNotFound
	}
	return r, nil
}

// PutState records the ledger snapshot at height as the new chain tip. A
// lower or equal height than one already recorded is accepted but does not
// move the tip backward, matching a height-keyed idempotent write.
func (m *MemStore) PutState(height uint64, st *state.StateDB) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveState || height >= m.latestHeight {
		m.latestHeight = height
		m.latestState = st
		m.haveState = true
	}
	return nil
}

// GetLatestState returns the most recently committed (height, state) pair.
func (m *MemStore) GetLatestState() (uint64, *state.StateDB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.haveState {
		return 0, nil, kerrors.ErrKeyNotFound
	}
	return m.latestHeight, m.latestState, nil
}

// PutIndex appends txHash to addr's explorer-query history.
func (m *MemStore) PutIndex(addr types.Address, txHash types.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addrIndex[addr] = append(m.addrIndex[addr], txHash)
	return nil
}

// GetAddressHistory returns every transaction hash recorded against addr,
// in insertion order.
func (m *MemStore) GetAddressHistory(addr types.Address) ([]types.Hash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Hash(nil), m.addrIndex[addr]...), nil
}

var _ Store = (*MemStore)(nil)

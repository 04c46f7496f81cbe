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

// Package storage declares the durable persistence contract the core
// consumes but never implements: the production on-disk key/value wrapper
// is an external collaborator per spec §1. This package carries only the
// narrow interface and an in-memory reference implementation so the core
// is runnable and testable standalone, the same role the teacher's
// modules/rawdb plays behind ChainReader/ChainWriter, but without an
// on-disk backend.
package storage

import (
	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/modules/state"
)

// =============================================================================
// Chain Data Interfaces
// =============================================================================

// BlockReader provides read-only access to committed blocks.
type BlockReader interface {
	GetBlock(height uint64) (*block.Block, error)
	GetBlockByHash(hash types.Hash) (*block.Block, error)
}

// BlockWriter appends a committed block. Writes are idempotent and keyed by
// height: re-putting the same height overwrites rather than duplicating.
type BlockWriter interface {
	PutBlock(blk *block.Block) error
}

// =============================================================================
// Transaction & Receipt Interfaces
// =============================================================================

// TxLocation pinpoints a transaction's position within a committed block,
// the payload put_transaction_location records.
type TxLocation struct {
	Height    uint64
	BlockHash types.Hash
	Index     int
}

// TransactionReader resolves a transaction hash to its canonical content
// and the block it was included in.
type TransactionReader interface {
	GetTransaction(hash types.Hash) (*transaction.Transaction, error)
	GetTransactionLocation(hash types.Hash) (TxLocation, error)
}

// TransactionWriter records a transaction and, separately, where it landed.
// The two are split exactly as spec §6 lists them: a wallet can submit a
// transaction the mempool tracks long before it has a location.
type TransactionWriter interface {
	PutTransaction(tx *transaction.Transaction) error
	PutTransactionLocation(hash types.Hash, height uint64, blockHash types.Hash, index int) error
}

// ReceiptReader resolves a transaction hash to its execution outcome.
type ReceiptReader interface {
	GetReceipt(hash types.Hash) (*block.Receipt, error)
}

// ReceiptWriter records one transaction's receipt, keyed by its tx hash.
type ReceiptWriter interface {
	PutReceipt(receipt *block.Receipt) error
}

// =============================================================================
// State Snapshot Interfaces
// =============================================================================

// StateReader exposes the most recently committed state snapshot, the pair
// the block-production pipeline reads on startup to resume at chain tip.
type StateReader interface {
	GetLatestState() (height uint64, st *state.StateDB, err error)
}

// StateWriter records a state snapshot at height. The reference
// implementation keeps the *state.StateDB pointer itself rather than
// serializing it — a real on-disk backend would instead persist the
// account/storage/code entries the StateDB's trie commits to.
type StateWriter interface {
	PutState(height uint64, st *state.StateDB) error
}

// =============================================================================
// Address Index Interfaces
// =============================================================================

// AddressIndexReader answers the explorer-style "every transaction this
// address ever touched" query.
type AddressIndexReader interface {
	GetAddressHistory(addr types.Address) ([]types.Hash, error)
}

// AddressIndexWriter appends one transaction hash to an address's history.
type AddressIndexWriter interface {
	PutIndex(addr types.Address, txHash types.Hash) error
}

// Store is the full durable-storage contract the core depends on: put/get
// for blocks, transactions, receipts, state snapshots, and the address
// index, exactly as spec §6 enumerates it.
type Store interface {
	BlockReader
	BlockWriter
	TransactionReader
	TransactionWriter
	ReceiptReader
	ReceiptWriter
	StateReader
	StateWriter
	AddressIndexReader
	AddressIndexWriter
}

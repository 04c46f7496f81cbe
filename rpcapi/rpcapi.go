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

// Package rpcapi implements the read methods and the single write method
// spec §6 lists, over the same interfaces the processor and state expose.
// The JSON-RPC transport itself (HTTP/WS framing, method dispatch by
// string name) is the external collaborator per spec §1; this package is
// the method set a transport adapter would register, named to mirror
// widely-deployed JSON-RPC conventions so standard wallets work unchanged.
package rpcapi

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/consensus"
	"github.com/kortanachain/kortana/internal/txspool"
	"github.com/kortanachain/kortana/modules/state"
	"github.com/kortanachain/kortana/params"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
	"github.com/kortanachain/kortana/storage"
)

// API is the read-mostly query surface plus the single transaction-submit
// write method, backed by the node's state, mempool, store, and consensus
// engine. Every method is safe to call concurrently with block production:
// state reads observe whatever the single mutator goroutine last
// committed, matching spec §5's "RPC reads MAY observe a consistent
// snapshot" contract.
type API struct {
	state   *state.StateDB
	pool    *txspool.Pool
	store   storage.Store
	engine  *consensus.Engine
	baseFee func() *uint256.Int
}

// New builds the RPC method set over the node's live components. baseFee
// is a callback rather than a captured pointer so the API always reads
// the fee market's current value, even after a block updates it.
func New(st *state.StateDB, pool *txspool.Pool, store storage.Store, engine *consensus.Engine, baseFee func() *uint256.Int) *API {
	return &API{state: st, pool: pool, store: store, engine: engine, baseFee: baseFee}
}

// GetBalance mirrors eth_getBalance.
func (a *API) GetBalance(addr types.Address) (*uint256.Int, error) {
	return a.state.GetBalance(addr)
}

// GetTransactionCount mirrors eth_getTransactionCount, returning the
// account's committed nonce (not the mempool-projected next nonce; a
// caller that wants the next usable nonce for a new submission should
// consult PendingNonce).
func (a *API) GetTransactionCount(addr types.Address) (uint64, error) {
	return a.state.GetNonce(addr)
}

// PendingNonce returns the next nonce the mempool expects from addr,
// accounting for its own pending transactions.
func (a *API) PendingNonce(addr types.Address) uint64 {
	return a.pool.NextNonce(addr)
}

// GetCode mirrors eth_getCode.
func (a *API) GetCode(addr types.Address) ([]byte, error) {
	acc, err := a.state.ReadAccount(addr)
	if err != nil {
		return nil, err
	}
	if !acc.IsContract {
		return nil, nil
	}
	return a.state.ReadCode(acc.CodeHash)
}

// GetBlockByNumber mirrors eth_getBlockByNumber.
func (a *API) GetBlockByNumber(height uint64) (*block.Block, error) {
	return a.store.GetBlock(height)
}

// GetBlockByHash mirrors eth_getBlockByHash.
func (a *API) GetBlockByHash(hash types.Hash) (*block.Block, error) {
	return a.store.GetBlockByHash(hash)
}

// GetTransactionByHash mirrors eth_getTransactionByHash, checking the
// mempool before the durable store so a just-submitted, not-yet-included
// transaction is still visible.
func (a *API) GetTransactionByHash(hash types.Hash) (*transaction.Transaction, error) {
	if tx, ok := a.pool.Get(hash); ok {
		return tx, nil
	}
	return a.store.GetTransaction(hash)
}

// GetTransactionReceipt mirrors eth_getTransactionReceipt.
func (a *API) GetTransactionReceipt(hash types.Hash) (*block.Receipt, error) {
	return a.store.GetReceipt(hash)
}

// ChainID mirrors eth_chainId.
func (a *API) ChainID() uint64 {
	return params.ChainID
}

// GasPrice mirrors eth_gasPrice: a wallet-facing suggested price, here the
// current base fee (no priority-fee estimation heuristic is implemented).
func (a *API) GasPrice() *uint256.Int {
	return a.baseFee()
}

// BaseFee returns the fee market's current base fee directly.
func (a *API) BaseFee() *uint256.Int {
	return a.baseFee()
}

// ValidatorInfo is the RPC-facing projection of one validator's state,
// trimmed to the fields an explorer or wallet needs.
type ValidatorInfo struct {
	Address      types.Address
	Stake        *uint256.Int
	IsActive     bool
	Commission   uint16
	MissedBlocks uint64
}

// GetValidatorSet returns every validator the consensus engine tracks,
// active or not.
func (a *API) GetValidatorSet() []ValidatorInfo {
	out := make([]ValidatorInfo, 0, len(a.engine.Validators))
	for _, v := range a.engine.Validators {
		out = append(out, ValidatorInfo{
			Address:      v.Address,
			Stake:        v.Stake,
			IsActive:     v.IsActive,
			Commission:   v.CommissionBps,
			MissedBlocks: v.MissedBlocks,
		})
	}
	return out
}

// GetPendingTransactions returns every transaction currently sitting in
// the mempool, in no particular order.
func (a *API) GetPendingTransactions() []*transaction.Transaction {
	return a.pool.Pending()
}

// GetAddressHistory mirrors a blockscout-style explorer query over the
// durable address index.
func (a *API) GetAddressHistory(addr types.Address) ([]types.Hash, error) {
	return a.store.GetAddressHistory(addr)
}

// SendRawTransaction mirrors eth_sendRawTransaction: it decodes raw via
// the ingress layer's three accepted wire formats, recovering the sender,
// then admits the normalized transaction into the mempool. It is the
// core's only write method; everything else here is read-only.
func (a *API) SendRawTransaction(raw []byte) (types.Hash, error) {
	tx, err := transaction.DecodeTransaction(raw, params.ChainID)
	if err != nil {
		return types.Hash{}, err
	}
	admitted, err := a.pool.Add(tx)
	if err != nil {
		return types.Hash{}, err
	}
	if !admitted {
		return types.Hash{}, kerrors.ErrAlreadyKnown
	}
	return tx.Hash(), nil
}

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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/modules/state"
)

func testHeader(height uint64) *block.Header {
	return &block.Header{
		Height:  height,
		BaseFee: uint256.NewInt(1_000_000_000),
	}
}

func TestMemStoreBlockRoundTrip(t *testing.T) {
	store := NewMemStore()
	blk := &block.Block{Header: testHeader(7)}

	require.NoError(t, store.PutBlock(blk))

	byHeight, err := store.GetBlock(7)
	require.NoError(t, err)
	require.Equal(t, blk.Hash(), byHeight.Hash())

	byHash, err := store.GetBlockByHash(blk.Hash())
	require.NoError(t, err)
	require.Equal(t, blk.Hash(), byHash.Hash())

	_, err = store.GetBlock(8)
	require.Error(t, err)
}

func TestMemStoreTransactionAndLocation(t *testing.T) {
	store := NewMemStore()
	tx := &transaction.Transaction{
		Nonce:    1,
		Value:    uint256.NewInt(0),
		GasLimit: 21000,
		GasPrice: uint256.NewInt(1_000_000_000),
	}

	require.NoError(t, store.PutTransaction(tx))
	require.NoError(t, store.PutTransactionLocation(tx.Hash(), 3, types.Hash{9}, 1))

	got, err := store.GetTransaction(tx.Hash())
	require.NoError(t, err)
	require.Equal(t, tx.Hash(), got.Hash())

	loc, err := store.GetTransactionLocation(tx.Hash())
	require.NoError(t, err)
	require.Equal(t, uint64(3), loc.Height)
	require.Equal(t, 1, loc.Index)
}

func TestMemStoreLatestState(t *testing.T) {
	store := NewMemStore()

	_, _, err := store.GetLatestState()
	require.Error(t, err)

	st1 := state.New()
	require.NoError(t, store.PutState(5, st1))
	height, got, err := store.GetLatestState()
	require.NoError(t, err)
	require.Equal(t, uint64(5), height)
	require.Same(t, st1, got)

	// A lower height does not move the recorded tip backward.
	st0 := state.New()
	require.NoError(t, store.PutState(2, st0))
	height, got, err = store.GetLatestState()
	require.NoError(t, err)
	require.Equal(t, uint64(5), height)
	require.Same(t, st1, got)
}

func TestMemStoreAddressIndex(t *testing.T) {
	store := NewMemStore()
	addr := types.Address{1, 2, 3}

	require.NoError(t, store.PutIndex(addr, types.Hash{1}))
	require.NoError(t, store.PutIndex(addr, types.Hash{2}))

	hist, err := store.GetAddressHistory(addr)
	require.NoError(t, err)
	require.Equal(t, []types.Hash{{1}, {2}}, hist)

	empty, err := store.GetAddressHistory(types.Address{9})
	require.NoError(t, err)
	require.Empty(t, empty)
}

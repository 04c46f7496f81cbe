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

package rpcapi

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/kortanachain/kortana/common/account"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/consensus"
	"github.com/kortanachain/kortana/internal/txspool"
	"github.com/kortanachain/kortana/modules/state"
	"github.com/kortanachain/kortana/params"
	"github.com/kortanachain/kortana/processor"
	"github.com/kortanachain/kortana/storage"
)

func newTestAPI(t *testing.T) (*API, types.Address) {
	t.Helper()

	st := state.New()
	addr := types.Address{0xAA}
	require.NoError(t, st.WriteAccount(addr, &account.StateAccount{
		Nonce:   3,
		Balance: uint256.NewInt(500),
	}))

	pool := txspool.New(10, processor.NewLedgerAdapter(st))
	store := storage.NewMemStore()
	engine := consensus.NewEngine([]*consensus.ValidatorInfo{
		{Address: addr, Stake: uint256.NewInt(1000), IsActive: true},
	})
	baseFee := uint256.NewInt(params.MinGasPrice)

	api := New(st, pool, store, engine, func() *uint256.Int { return baseFee })
	return api, addr
}

func TestGetBalanceAndNonce(t *testing.T) {
	api, addr := newTestAPI(t)

	bal, err := api.GetBalance(addr)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(500), bal)

	nonce, err := api.GetTransactionCount(addr)
	require.NoError(t, err)
	require.Equal(t, uint64(3), nonce)

	require.Equal(t, uint64(3), api.PendingNonce(addr))
}

func TestChainIDAndGasPrice(t *testing.T) {
	api, _ := newTestAPI(t)
	require.Equal(t, params.ChainID, api.ChainID())
	require.Equal(t, uint256.NewInt(params.MinGasPrice), api.GasPrice())
	require.Equal(t, uint256.NewInt(params.MinGasPrice), api.BaseFee())
}

func TestGetValidatorSet(t *testing.T) {
	api, addr := newTestAPI(t)
	validators := api.GetValidatorSet()
	require.Len(t, validators, 1)
	require.Equal(t, addr, validators[0].Address)
	require.True(t, validators[0].IsActive)
}

func TestSendRawTransactionUnknownEnvelope(t *testing.T) {
	api, _ := newTestAPI(t)
	_, err := api.SendRawTransaction([]byte{0xff})
	require.Error(t, err)
}

func TestGetPendingTransactionsEmpty(t *testing.T) {
	api, _ := newTestAPI(t)
	require.Empty(t, api.GetPendingTransactions())
}

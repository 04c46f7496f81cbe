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

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/kortanachain/kortana/common/account"
	"github.com/kortanachain/kortana/conf"
	"github.com/kortanachain/kortana/consensus"
	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/gossip"
	"github.com/kortanachain/kortana/storage"
)

func newTestPipeline(t *testing.T) (*Pipeline, *crypto.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := conf.DefaultChainConfig()
	cfg.BlockTimeSeconds = 0 // ticked manually via produceBlock in tests

	validators := []*consensus.ValidatorInfo{
		{Address: key.Address(), Stake: uint256.NewInt(cfg.MinValidatorStake), IsActive: true},
	}
	net := gossip.NewLoopback()
	t.Cleanup(net.Close)
	store := storage.NewMemStore()

	p := New(cfg, validators, net, store, key)

	require.NoError(t, p.state.WriteAccount(key.Address(), &account.StateAccount{
		Balance: uint256.NewInt(0).SetUint64(1_000_000_000_000),
	}))

	return p, key
}

func TestProduceBlockCommitsEmptyBlock(t *testing.T) {
	p, _ := newTestPipeline(t)

	blk, err := p.produceBlock(1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), blk.Header.Height)
	require.Equal(t, uint64(1), p.Height())

	got, err := p.store.GetBlock(1)
	require.NoError(t, err)
	require.Equal(t, blk.Hash(), got.Hash())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	p, _ := newTestPipeline(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
}

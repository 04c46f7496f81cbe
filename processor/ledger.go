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

// Package processor implements the state-transition function: the
// nine-step order spec §4.6 defines, grounded on
// original_source/kortana-mainnet/src/core/processor.rs's
// BlockProcessor::process_transaction and validate_block.
package processor

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/account"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/internal/vm"
	"github.com/kortanachain/kortana/modules/state"
	"github.com/kortanachain/kortana/quorlin"
)

// ibsBridge adapts *state.IntraBlockState to vm.IntraBlockState and
// quorlin.State: the three packages each declare their own Log/State
// shape rather than sharing one (vm.Log, state.Log, block.Log are
// structurally identical but nominally distinct Go types), so a call
// frame's AddLog needs this one conversion point instead of forcing the
// state package to import vm.
type ibsBridge struct {
	*state.IntraBlockState
}

func (b ibsBridge) AddLog(l vm.Log) {
	b.IntraBlockState.AddLog(state.Log{Address: l.Address, Topics: l.Topics, Data: l.Data})
}

var (
	_ vm.IntraBlockState  = ibsBridge{}
	_ quorlin.State       = ibsBridge{}
)

// LedgerAdapter makes *state.StateDB satisfy txspool.ReadState: StateDB's
// ReadAccount never actually fails for a well-formed trie (an unseen
// address reads back as a fresh EOA), so the error is only ever non-nil
// on a corrupt encoding, which the mempool treats as "unknown, assume
// zero" the same way an absent account does.
type LedgerAdapter struct {
	db *state.StateDB
}

// NewLedgerAdapter wraps db for consumers that need the narrower
// nonce/balance-only read surface, e.g. the mempool.
func NewLedgerAdapter(db *state.StateDB) *LedgerAdapter {
	return &LedgerAdapter{db: db}
}

func (a *LedgerAdapter) GetNonce(addr types.Address) uint64 {
	n, err := a.db.GetNonce(addr)
	if err != nil {
		return 0
	}
	return n
}

func (a *LedgerAdapter) GetBalance(addr types.Address) *uint256.Int {
	bal, err := a.db.GetBalance(addr)
	if err != nil {
		return uint256.NewInt(0)
	}
	return bal
}

func (a *LedgerAdapter) State(addr types.Address) (*account.StateAccount, error) {
	return a.db.ReadAccount(addr)
}

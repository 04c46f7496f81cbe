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

// Package evmtypes holds the context structs the EVM subset reads
// environment opcodes (COINBASE, TIMESTAMP, CHAINID, ...) from, trimmed to
// the fields this VM subset actually exposes — no blob-gas or PREVRANDAO
// fields, since neither EIP-4844 nor EIP-4399 are in scope here.
package evmtypes

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/types"
)

// BlockContext carries the block-scoped environment values the interpreter
// reads for COINBASE, NUMBER, TIMESTAMP, GASLIMIT and BASEFEE, plus the
// BLOCKHASH lookup function.
type BlockContext struct {
	GetHash func(n uint64) types.Hash

	Coinbase    types.Address
	GasLimit    uint64
	BlockNumber uint64
	Time        uint64
	BaseFee     *uint256.Int
}

// TxContext carries the transaction-scoped environment values the
// interpreter reads for ORIGIN and GASPRICE.
type TxContext struct {
	TxHash   types.Hash
	Origin   types.Address
	GasPrice *uint256.Int
}

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

package vm

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/types"
)

// ContractRef is anything that can act as a message caller or callee: an
// externally-owned account or another contract mid-execution.
type ContractRef interface {
	Address() types.Address
}

// AccountRef adapts a bare address into a ContractRef, the shape an EOA
// initiating a top-level call uses.
type AccountRef types.Address

// Address returns the underlying address.
func (a AccountRef) Address() types.Address { return types.Address(a) }

// Contract is the running execution context for one call frame: its code,
// the calling convention it was entered with, and the gas meter the
// interpreter debits as it executes.
type Contract struct {
	CallerAddress types.Address
	Address       types.Address
	Code          []byte
	CodeHash      types.Hash
	Input         []byte
	Value         *uint256.Int
	Gas           uint64

	// ReadOnly marks this frame (or an ancestor) as a STATICCALL: any
	// state-mutating opcode must fail rather than execute.
	ReadOnly bool

	jumpdests map[uint64]bool
}

// NewContract builds a call frame for code running as addr, called by
// caller with the given input and gas budget.
func NewContract(caller, addr types.Address, value *uint256.Int, gas uint64, code []byte, input []byte) *Contract {
	return &Contract{
		CallerAddress: caller,
		Address:       addr,
		Code:          code,
		Input:         input,
		Value:         value,
		Gas:           gas,
		jumpdests:     analyzeJumpdests(code),
	}
}

// UseGas debits amount from the remaining gas, reporting false (without
// mutating) if the meter cannot pay.
func (c *Contract) UseGas(amount uint64) bool {
	if c.Gas < amount {
		return false
	}
	c.Gas -= amount
	return true
}

// validJumpdest reports whether dest is a JUMPDEST reachable by JUMP/JUMPI
// — i.e. not a byte that falls inside a PUSH's immediate argument.
func (c *Contract) validJumpdest(dest uint64) bool {
	return c.jumpdests[dest]
}

// analyzeJumpdests scans code once and records every JUMPDEST opcode
// position that isn't inside a PUSH immediate, matching the reference
// EVM's jump-destination analysis.
func analyzeJumpdests(code []byte) map[uint64]bool {
	dests := make(map[uint64]bool)
	for pc := uint64(0); pc < uint64(len(code)); pc++ {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			dests[pc] = true
			continue
		}
		if op >= PUSH1 && op <= PUSH32 {
			pc += uint64(op - PUSH1 + 1)
		}
	}
	return dests
}

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

// Package quorlin implements the chain's secondary, coarse-grained
// execution engine: an 8-byte integer stack machine with named globals,
// grounded on original_source's vm/quorlin.rs QuorlinExecutor but with a
// binary opcode stream in place of that prototype's serde_json encoding —
// JSON-encoded bytecode was an artifact of the Rust prototype, not a wire
// format worth freezing for this chain.
package quorlin

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// OpCode is a single Quorlin instruction byte.
type OpCode byte

const (
	OpPush OpCode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpLt
	OpGt
	OpAnd
	OpOr
	OpXor
	OpNot
	OpLoadLocal
	OpStoreLocal
	OpLoadGlobal
	OpStoreGlobal
	OpEmit
	OpJump
	OpJumpIf
	OpDup
	OpSwap
	OpAddress
	OpBalance
	OpBlockHeight
	OpTimestamp
	OpReturn
	OpRevert
)

// GasPerOp is the flat gas unit every instruction consumes, matching
// original_source's `gas_remaining -= 10` per opcode.
const GasPerOp uint64 = 10

// State is the ledger surface Quorlin execution needs: global storage
// keyed by Keccak256(name) in the executing contract's 32-byte storage
// space, and balance/account queries scoped to the contract address.
type State interface {
	GetBalance(addr types.Address) *uint256.Int
	GetState(addr types.Address, key types.Hash) types.Hash
	SetState(addr types.Address, key, value types.Hash)
}

// BlockContext carries the header-derived environment Timestamp and
// BlockHeight read from — never the wall clock, so replay is deterministic.
type BlockContext struct {
	Height uint64
	Time   uint64
}

// Emitted is one Emit(name) event, the Quorlin analogue of an EVM log.
type Emitted struct {
	Name  string
	Value uint64
}

// Executor runs one Quorlin call frame: its 8-byte integer stack, locals,
// and gas meter.
type Executor struct {
	Address types.Address
	Gas     uint64

	stack  []uint64
	locals map[uint16]uint64
	logs   []Emitted
}

// NewExecutor builds an executor for a call frame at addr with the given
// gas budget.
func NewExecutor(addr types.Address, gas uint64) *Executor {
	return &Executor{Address: addr, Gas: gas, locals: make(map[uint16]uint64)}
}

// Logs returns the Emit events recorded during Run.
func (e *Executor) Logs() []Emitted { return e.logs }

// Run decodes and executes bytecode against state and blockCtx, returning
// the Return opcode's value as an 8-byte big-endian buffer (nil if the
// program falls off the end without returning).
func (e *Executor) Run(bytecode []byte, state State, blockCtx BlockContext) ([]byte, error) {
	pc := 0
	for pc < len(bytecode) {
		if e.Gas < GasPerOp {
			return nil, kerrors.ErrOutOfGas
		}
		op := OpCode(bytecode[pc])
		pc++

		switch op {
		case OpPush:
			v, n, err := readUint64(bytecode, pc)
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			e.push(v)
			pc += n

		case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpEq, OpLt, OpGt, OpAnd, OpOr, OpXor:
			b, err := e.pop()
			if err != nil {
				return nil, err
			}
			a, err := e.pop()
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			e.push(binaryOp(op, a, b))

		case OpNot:
			a, err := e.pop()
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			e.push(^a)

		case OpLoadLocal:
			idx, n, err := readUint16(bytecode, pc)
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			e.push(e.locals[idx])
			pc += n

		case OpStoreLocal:
			idx, n, err := readUint16(bytecode, pc)
			if err != nil {
				return nil, err
			}
			v, err := e.pop()
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			e.locals[idx] = v
			pc += n

		case OpLoadGlobal:
			name, n, err := readString(bytecode, pc)
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			slot := state.GetState(e.Address, crypto.Keccak256([]byte(name)))
			e.push(slotToUint64(slot))
			pc += n

		case OpStoreGlobal:
			name, n, err := readString(bytecode, pc)
			if err != nil {
				return nil, err
			}
			v, err := e.pop()
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			state.SetState(e.Address, crypto.Keccak256([]byte(name)), uint64ToSlot(v))
			pc += n

		case OpEmit:
			name, n, err := readString(bytecode, pc)
			if err != nil {
				return nil, err
			}
			v, err := e.pop()
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			e.logs = append(e.logs, Emitted{Name: name, Value: v})
			pc += n

		case OpJump:
			target, n, err := readUint32(bytecode, pc)
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			if int(target) > len(bytecode) {
				return nil, kerrors.ErrInvalidMemoryAccess
			}
			pc = int(target)
			_ = n

		case OpJumpIf:
			target, n, err := readUint32(bytecode, pc)
			if err != nil {
				return nil, err
			}
			cond, err := e.pop()
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			if cond != 0 {
				if int(target) > len(bytecode) {
					return nil, kerrors.ErrInvalidMemoryAccess
				}
				pc = int(target)
			} else {
				pc += n
			}

		case OpDup:
			v, err := e.peek()
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			e.push(v)

		case OpSwap:
			if len(e.stack) < 2 {
				return nil, kerrors.ErrStackUnderflow
			}
			e.Gas -= GasPerOp
			top := len(e.stack) - 1
			e.stack[top], e.stack[top-1] = e.stack[top-1], e.stack[top]

		case OpAddress:
			e.Gas -= GasPerOp
			e.push(addressToUint64(e.Address))

		case OpBalance:
			e.Gas -= GasPerOp
			bal := state.GetBalance(e.Address)
			e.push(bal.Uint64())

		case OpBlockHeight:
			e.Gas -= GasPerOp
			e.push(blockCtx.Height)

		case OpTimestamp:
			e.Gas -= GasPerOp
			e.push(blockCtx.Time)

		case OpReturn:
			v, err := e.pop()
			if err != nil {
				return nil, err
			}
			e.Gas -= GasPerOp
			var out [8]byte
			binary.BigEndian.PutUint64(out[:], v)
			return out[:], nil

		case OpRevert:
			e.Gas -= GasPerOp
			return nil, kerrors.ErrExecutionReverted

		default:
			return nil, kerrors.ErrInvalidOpcode
		}
	}
	return nil, nil
}

func (e *Executor) push(v uint64) { e.stack = append(e.stack, v) }

func (e *Executor) pop() (uint64, error) {
	if len(e.stack) == 0 {
		return 0, kerrors.ErrStackUnderflow
	}
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v, nil
}

func (e *Executor) peek() (uint64, error) {
	if len(e.stack) == 0 {
		return 0, kerrors.ErrStackUnderflow
	}
	return e.stack[len(e.stack)-1], nil
}

func binaryOp(op OpCode, a, b uint64) uint64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		if b == 0 {
			return 0
		}
		return a / b
	case OpMod:
		if b == 0 {
			return 0
		}
		return a % b
	case OpEq:
		return boolToUint64(a == b)
	case OpLt:
		return boolToUint64(a < b)
	case OpGt:
		return boolToUint64(a > b)
	case OpAnd:
		return a & b
	case OpOr:
		return a | b
	case OpXor:
		return a ^ b
	default:
		return 0
	}
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func slotToUint64(h types.Hash) uint64 {
	b := h.Bytes()
	return binary.BigEndian.Uint64(b[24:32])
}

func uint64ToSlot(v uint64) types.Hash {
	var buf [32]byte
	binary.BigEndian.PutUint64(buf[24:], v)
	return types.BytesToHash(buf[:])
}

func addressToUint64(addr types.Address) uint64 {
	b := addr.Bytes()
	var v uint64
	for _, c := range b[16:24] {
		v = (v << 8) | uint64(c)
	}
	return v
}

func readUint64(code []byte, pc int) (uint64, int, error) {
	if pc+8 > len(code) {
		return 0, 0, kerrors.ErrInvalidMemoryAccess
	}
	return binary.BigEndian.Uint64(code[pc : pc+8]), 8, nil
}

func readUint32(code []byte, pc int) (uint32, int, error) {
	if pc+4 > len(code) {
		return 0, 0, kerrors.ErrInvalidMemoryAccess
	}
	return binary.BigEndian.Uint32(code[pc : pc+4]), 4, nil
}

func readUint16(code []byte, pc int) (uint16, int, error) {
	if pc+2 > len(code) {
		return 0, 0, kerrors.ErrInvalidMemoryAccess
	}
	return binary.BigEndian.Uint16(code[pc : pc+2]), 2, nil
}

func readString(code []byte, pc int) (string, int, error) {
	length, n, err := readUint16(code, pc)
	if err != nil {
		return "", 0, err
	}
	start := pc + n
	end := start + int(length)
	if end > len(code) {
		return "", 0, kerrors.ErrInvalidMemoryAccess
	}
	return string(code[start:end]), n + int(length), nil
}

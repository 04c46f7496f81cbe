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

	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/internal/vm/stack"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// execBinary handles the two-operand arithmetic, comparison and bitwise
// opcodes. The top of stack is the left operand for SUB and DIV, matching
// the reference EVM's pop order.
func (evm *EVM) execBinary(op OpCode, c *Contract, st *stack.Stack, pc uint64) ([]byte, uint64, bool, error) {
	if !requireStack(st, 2) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	gas := GasFastestStep
	if op == MUL || op == DIV || op == MOD {
		gas = GasFastStep
	}
	if !c.UseGas(gas) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}

	a := st.Pop()
	b := st.Pop()
	result := new(uint256.Int)
	switch op {
	case ADD:
		result.Add(&a, &b)
	case SUB:
		result.Sub(&a, &b)
	case MUL:
		result.Mul(&a, &b)
	case DIV:
		result.Div(&a, &b)
	case MOD:
		result.Mod(&a, &b)
	case LT:
		setBool(result, a.Lt(&b))
	case GT:
		setBool(result, a.Gt(&b))
	case SLT:
		setBool(result, a.Slt(&b))
	case EQ:
		setBool(result, a.Eq(&b))
	case AND:
		result.And(&a, &b)
	case OR:
		result.Or(&a, &b)
	case XOR:
		result.Xor(&a, &b)
	case SHL:
		shiftLeftOrRight(result, &a, &b, true)
	case SHR:
		shiftLeftOrRight(result, &a, &b, false)
	}
	st.Push(result)
	return nil, pc + 1, false, nil
}

// shiftLeftOrRight implements SHL/SHR: shift is the top-of-stack operand,
// value the one below it. A shift of 256 or more always yields zero.
func shiftLeftOrRight(result, shift, value *uint256.Int, left bool) {
	if shift.Cmp(uint256.NewInt(256)) >= 0 {
		result.Clear()
		return
	}
	n := uint(shift.Uint64())
	if left {
		result.Lsh(value, n)
	} else {
		result.Rsh(value, n)
	}
}

func setBool(z *uint256.Int, b bool) {
	if b {
		z.SetOne()
	} else {
		z.Clear()
	}
}

// execUnary handles ISZERO and NOT, the subset's single-operand opcodes.
func (evm *EVM) execUnary(op OpCode, c *Contract, st *stack.Stack, pc uint64) ([]byte, uint64, bool, error) {
	if !requireStack(st, 1) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	if !c.UseGas(GasFastestStep) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	a := st.Pop()
	result := new(uint256.Int)
	switch op {
	case ISZERO:
		setBool(result, a.IsZero())
	case NOT:
		result.Not(&a)
	}
	st.Push(result)
	return nil, pc + 1, false, nil
}

// execExp computes base**exponent mod 2**256, billed the per-byte-of-
// exponent surcharge the reference gas schedule requires so large
// exponents cannot be used to buy cheap computation.
func (evm *EVM) execExp(c *Contract, st *stack.Stack, pc uint64) ([]byte, uint64, bool, error) {
	if !requireStack(st, 2) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	base := st.Pop()
	exponent := st.Pop()

	expByteLen := uint64((exponent.BitLen() + 7) / 8)
	if !c.UseGas(GasSlowStep + GasExpByte*expByteLen) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}

	result := new(uint256.Int).Exp(&base, &exponent)
	st.Push(result)
	return nil, pc + 1, false, nil
}

// execSha3 hashes a memory region with Keccak-256, the EVM-compatible
// domain's SHA3 opcode (kept distinct from the SHA3-256 the trie and
// address derivation use).
func (evm *EVM) execSha3(c *Contract, st *stack.Stack, mem *Memory, pc uint64) ([]byte, uint64, bool, error) {
	if !requireStack(st, 2) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	offsetW := st.Pop()
	sizeW := st.Pop()
	offset, size := offsetW.Uint64(), sizeW.Uint64()

	expansion := memoryExpansionGas(uint64(mem.Len()), offset, size)
	if !c.UseGas(GasSha3+GasSha3Word*wordCount(size)+expansion) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}

	mem.Resize(offset + size)
	hash := crypto.Keccak256(mem.Get(offset, size))
	st.Push(new(uint256.Int).SetBytes(hash.Bytes()))
	return nil, pc + 1, false, nil
}

// execCalldataload reads one 32-byte word from the call's input data,
// zero-padding past its end.
func (evm *EVM) execCalldataload(c *Contract, st *stack.Stack, pc uint64) ([]byte, uint64, bool, error) {
	if !requireStack(st, 1) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	if !c.UseGas(GasFastestStep) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	offset := st.Pop().Uint64()

	var buf [32]byte
	if offset < uint64(len(c.Input)) {
		end := offset + 32
		if end > uint64(len(c.Input)) {
			end = uint64(len(c.Input))
		}
		copy(buf[:end-offset], c.Input[offset:end])
	}
	st.Push(new(uint256.Int).SetBytes(buf[:]))
	return nil, pc + 1, false, nil
}

// execCodecopy copies a slice of the running contract's own code into
// memory, used by deployment init code to return its runtime bytecode.
func (evm *EVM) execCodecopy(c *Contract, st *stack.Stack, mem *Memory, pc uint64) ([]byte, uint64, bool, error) {
	if !requireStack(st, 3) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	destOffset := st.Pop().Uint64()
	offset := st.Pop().Uint64()
	size := st.Pop().Uint64()

	expansion := memoryExpansionGas(uint64(mem.Len()), destOffset, size)
	if !c.UseGas(GasFastestStep+GasMemoryWord*wordCount(size)+expansion) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}

	buf := make([]byte, size)
	if offset < uint64(len(c.Code)) {
		end := offset + size
		if end > uint64(len(c.Code)) {
			end = uint64(len(c.Code))
		}
		copy(buf, c.Code[offset:end])
	}
	mem.Set(destOffset, size, buf)
	return nil, pc + 1, false, nil
}

func (evm *EVM) execMload(c *Contract, st *stack.Stack, mem *Memory, pc uint64) ([]byte, uint64, bool, error) {
	if !requireStack(st, 1) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	offset := st.Pop().Uint64()
	expansion := memoryExpansionGas(uint64(mem.Len()), offset, 32)
	if !c.UseGas(GasFastestStep + expansion) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	mem.Resize(offset + 32)
	st.Push(new(uint256.Int).SetBytes(mem.Get(offset, 32)))
	return nil, pc + 1, false, nil
}

func (evm *EVM) execMstore(c *Contract, st *stack.Stack, mem *Memory, pc uint64) ([]byte, uint64, bool, error) {
	if !requireStack(st, 2) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	offset := st.Pop().Uint64()
	val := st.Pop()
	expansion := memoryExpansionGas(uint64(mem.Len()), offset, 32)
	if !c.UseGas(GasFastestStep + expansion) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	word := val.Bytes32()
	mem.Set(offset, 32, word[:])
	return nil, pc + 1, false, nil
}

// execLog records a LOG0-LOG4 event against the call's address, gated by
// the same write-protection STATICCALL enforces on SSTORE.
func (evm *EVM) execLog(op OpCode, c *Contract, st *stack.Stack, mem *Memory, pc uint64) ([]byte, uint64, bool, error) {
	if c.ReadOnly {
		return nil, 0, false, kerrors.ErrWriteProtection
	}
	n := int(op - LOG0)
	if !requireStack(st, n+2) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	offset := st.Pop().Uint64()
	size := st.Pop().Uint64()

	topics := make([]types.Hash, n)
	for i := 0; i < n; i++ {
		w := st.Pop()
		b := w.Bytes32()
		topics[i] = types.BytesToHash(b[:])
	}

	expansion := memoryExpansionGas(uint64(mem.Len()), offset, size)
	gas := GasLog + GasLogTopic*uint64(n) + GasLogData*size + expansion
	if !c.UseGas(gas) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	mem.Resize(offset + size)
	evm.state.AddLog(Log{Address: c.Address, Topics: topics, Data: mem.Get(offset, size)})
	return nil, pc + 1, false, nil
}

// execCreateOp implements the CREATE opcode: a nested deployment billed
// out of the running contract's own gas and balance, address-derived from
// the creator's current nonce rather than the top-level transaction's.
func (evm *EVM) execCreateOp(c *Contract, st *stack.Stack, mem *Memory, pc uint64) ([]byte, uint64, bool, error) {
	if c.ReadOnly {
		return nil, 0, false, kerrors.ErrWriteProtection
	}
	if !requireStack(st, 3) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	value := st.Pop()
	offset := st.Pop().Uint64()
	size := st.Pop().Uint64()

	expansion := memoryExpansionGas(uint64(mem.Len()), offset, size)
	if !c.UseGas(GasCreate + expansion) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	mem.Resize(offset + size)
	initCode := mem.Get(offset, size)

	if !value.IsZero() && evm.state.GetBalance(c.Address).Lt(&value) {
		st.Push(uint256.NewInt(0))
		return nil, pc + 1, false, nil
	}

	nonce := evm.state.GetNonce(c.Address)
	evm.state.SetNonce(c.Address, nonce+1)
	if !value.IsZero() {
		evm.state.SubBalance(c.Address, &value)
	}

	_, contractAddr, leftover, err := evm.Create(AccountRef(c.Address), initCode, c.Gas, &value, nonce)
	c.Gas = leftover
	if err != nil {
		if !value.IsZero() {
			evm.state.AddBalance(c.Address, &value)
		}
		st.Push(uint256.NewInt(0))
		return nil, pc + 1, false, nil
	}
	if !value.IsZero() {
		evm.state.AddBalance(contractAddr, &value)
	}
	st.Push(addressWord(contractAddr))
	return nil, pc + 1, false, nil
}

// execReturnOrRevert implements RETURN and REVERT: both halt execution and
// hand a memory region back as the call's output, REVERT additionally
// signaling run to surface it as ErrExecutionReverted instead of a halt.
func (evm *EVM) execReturnOrRevert(c *Contract, st *stack.Stack, mem *Memory, isRevert bool) ([]byte, uint64, bool, error) {
	if !requireStack(st, 2) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	offset := st.Pop().Uint64()
	size := st.Pop().Uint64()

	expansion := memoryExpansionGas(uint64(mem.Len()), offset, size)
	if !c.UseGas(expansion) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	mem.Resize(offset + size)
	data := mem.Get(offset, size)
	if isRevert {
		return data, 0, false, errRevert
	}
	return data, 0, true, nil
}

// execStaticcall runs a nested read-only call, forwarding a bounded slice
// of the caller's remaining gas and refusing the callee any path to a
// state mutation (enforced on Contract.ReadOnly down the call stack).
func (evm *EVM) execStaticcall(c *Contract, st *stack.Stack, mem *Memory, pc uint64) ([]byte, uint64, bool, error) {
	if !requireStack(st, 6) {
		return nil, 0, false, kerrors.ErrStackUnderflow
	}
	gasWanted := st.Pop().Uint64()
	addr := wordToAddress(st.Pop())
	argsOffset := st.Pop().Uint64()
	argsSize := st.Pop().Uint64()
	retOffset := st.Pop().Uint64()
	retSize := st.Pop().Uint64()

	argsExpansion := memoryExpansionGas(uint64(mem.Len()), argsOffset, argsSize)
	if !c.UseGas(GasBalance + argsExpansion) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	mem.Resize(argsOffset + argsSize)
	input := mem.Get(argsOffset, argsSize)

	callGas := gasWanted
	if callGas > c.Gas {
		callGas = c.Gas
	}
	if !c.UseGas(callGas) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}

	ret, leftover, err := evm.Call(AccountRef(c.Address), addr, input, callGas, nil, true)
	c.Gas += leftover

	retExpansion := memoryExpansionGas(uint64(mem.Len()), retOffset, retSize)
	if !c.UseGas(retExpansion) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	mem.Resize(retOffset + retSize)
	buf := make([]byte, retSize)
	copy(buf, ret)
	mem.Set(retOffset, retSize, buf)

	if err != nil {
		st.Push(uint256.NewInt(0))
	} else {
		st.Push(uint256.NewInt(1))
	}
	return nil, pc + 1, false, nil
}

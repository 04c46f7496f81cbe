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
	"github.com/kortanachain/kortana/internal/vm/stack"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// errRevert is the internal sentinel execute uses to signal a REVERT,
// distinct from a hard execution failure, so run can still hand back the
// revert buffer to the caller instead of discarding it.
var errRevert = kerrors.New("vm: revert")

// run executes contract's code to completion, returning its RETURN/REVERT
// buffer (nil for plain STOP) and any execution error. Any error other
// than a deliberate REVERT consumes all remaining gas, matching the
// reference EVM's fail-closed behavior.
func (evm *EVM) run(contract *Contract) ([]byte, error) {
	st := stack.New()
	defer stack.ReturnNormalStack(st)
	mem := NewMemory()

	pc := uint64(0)
	code := contract.Code

	for {
		if pc >= uint64(len(code)) {
			return nil, nil
		}
		op := OpCode(code[pc])

		ret, nextPC, halt, err := evm.execute(op, contract, st, mem, code, pc)
		if err != nil {
			if err == errRevert {
				return ret, kerrors.ErrExecutionReverted
			}
			contract.Gas = 0
			return nil, err
		}
		if halt {
			return ret, nil
		}
		pc = nextPC
	}
}

// execute dispatches a single instruction, returning its return buffer
// (only meaningful when halt is true), the program counter to resume at,
// whether execution should stop, and any error.
func (evm *EVM) execute(op OpCode, c *Contract, st *stack.Stack, mem *Memory, code []byte, pc uint64) (ret []byte, nextPC uint64, halt bool, err error) {
	switch {
	case op >= PUSH1 && op <= PUSH32:
		n := uint64(op - PUSH1 + 1)
		if !c.UseGas(GasFastestStep) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		if st.Len() >= stack.MaxDepth {
			return nil, 0, false, kerrors.ErrStackOverflow
		}
		var buf [32]byte
		end := pc + 1 + n
		if end > uint64(len(code)) {
			end = uint64(len(code))
		}
		copy(buf[32-n:], code[pc+1:end])
		st.Push(new(uint256.Int).SetBytes(buf[:]))
		return nil, pc + 1 + n, false, nil

	case op >= DUP1 && op <= DUP16:
		n := int(op - DUP1 + 1)
		if !requireStack(st, n) {
			return nil, 0, false, kerrors.ErrStackUnderflow
		}
		if !c.UseGas(GasFastestStep) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		if st.Len() >= stack.MaxDepth {
			return nil, 0, false, kerrors.ErrStackOverflow
		}
		st.Dup(n)
		return nil, pc + 1, false, nil

	case op >= SWAP1 && op <= SWAP16:
		n := int(op - SWAP1 + 1)
		if !requireStack(st, n+1) {
			return nil, 0, false, kerrors.ErrStackUnderflow
		}
		if !c.UseGas(GasFastestStep) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		st.Swap(n)
		return nil, pc + 1, false, nil

	case op >= LOG0 && op <= LOG4:
		return evm.execLog(op, c, st, mem, pc)
	}

	switch op {
	case STOP:
		return nil, 0, true, nil

	case ADD, SUB, MUL, DIV, MOD, LT, GT, SLT, EQ, AND, OR, XOR, SHL, SHR:
		return evm.execBinary(op, c, st, pc)

	case ISZERO, NOT:
		return evm.execUnary(op, c, st, pc)

	case EXP:
		return evm.execExp(c, st, pc)

	case SHA3:
		return evm.execSha3(c, st, mem, pc)

	case ADDRESS:
		return pushGas(c, st, GasQuickStep, addressWord(c.Address), pc)
	case BALANCE:
		if !requireStack(st, 1) {
			return nil, 0, false, kerrors.ErrStackUnderflow
		}
		addr := wordToAddress(st.Pop())
		if !c.UseGas(GasBalance) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		st.Push(evm.state.GetBalance(addr))
		return nil, pc + 1, false, nil
	case CALLER:
		return pushGas(c, st, GasQuickStep, addressWord(c.CallerAddress), pc)
	case CALLVALUE:
		v := c.Value
		if v == nil {
			v = uint256.NewInt(0)
		}
		return pushGas(c, st, GasQuickStep, v, pc)
	case CALLDATALOAD:
		return evm.execCalldataload(c, st, pc)
	case CALLDATASIZE:
		return pushGas(c, st, GasQuickStep, uint256.NewInt(uint64(len(c.Input))), pc)
	case CODESIZE:
		return pushGas(c, st, GasQuickStep, uint256.NewInt(uint64(len(c.Code))), pc)
	case CODECOPY:
		return evm.execCodecopy(c, st, mem, pc)
	case CHAINID:
		return pushGas(c, st, GasQuickStep, uint256.NewInt(evm.chainID), pc)
	case COINBASE:
		return pushGas(c, st, GasQuickStep, addressWord(evm.blockCtx.Coinbase), pc)
	case TIMESTAMP:
		return pushGas(c, st, GasQuickStep, uint256.NewInt(evm.blockCtx.Time), pc)
	case NUMBER:
		return pushGas(c, st, GasQuickStep, uint256.NewInt(evm.blockCtx.BlockNumber), pc)
	case GASLIMIT:
		return pushGas(c, st, GasQuickStep, uint256.NewInt(evm.blockCtx.GasLimit), pc)
	case BASEFEE:
		bf := evm.blockCtx.BaseFee
		if bf == nil {
			bf = uint256.NewInt(0)
		}
		return pushGas(c, st, GasQuickStep, bf, pc)

	case POP:
		if !requireStack(st, 1) {
			return nil, 0, false, kerrors.ErrStackUnderflow
		}
		if !c.UseGas(GasQuickStep) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		st.Pop()
		return nil, pc + 1, false, nil

	case MLOAD:
		return evm.execMload(c, st, mem, pc)
	case MSTORE:
		return evm.execMstore(c, st, mem, pc)

	case SLOAD:
		if !requireStack(st, 1) {
			return nil, 0, false, kerrors.ErrStackUnderflow
		}
		key := st.Pop()
		if !c.UseGas(GasSload) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		kb := key.Bytes32()
		v := evm.state.GetState(c.Address, types.BytesToHash(kb[:]))
		st.Push(new(uint256.Int).SetBytes(v.Bytes()))
		return nil, pc + 1, false, nil

	case SSTORE:
		if c.ReadOnly {
			return nil, 0, false, kerrors.ErrWriteProtection
		}
		if !requireStack(st, 2) {
			return nil, 0, false, kerrors.ErrStackUnderflow
		}
		key := st.Pop()
		val := st.Pop()
		if !c.UseGas(GasSstore) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		kb := key.Bytes32()
		vb := val.Bytes32()
		evm.state.SetState(c.Address, types.BytesToHash(kb[:]), types.BytesToHash(vb[:]))
		return nil, pc + 1, false, nil

	case JUMP:
		if !requireStack(st, 1) {
			return nil, 0, false, kerrors.ErrStackUnderflow
		}
		dest := st.Pop()
		if !c.UseGas(GasMidStep) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		d := dest.Uint64()
		if !c.validJumpdest(d) {
			return nil, 0, false, kerrors.ErrInvalidOpcode
		}
		return nil, d, false, nil

	case JUMPI:
		if !requireStack(st, 2) {
			return nil, 0, false, kerrors.ErrStackUnderflow
		}
		dest := st.Pop()
		cond := st.Pop()
		if !c.UseGas(GasSlowStep) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		if cond.IsZero() {
			return nil, pc + 1, false, nil
		}
		d := dest.Uint64()
		if !c.validJumpdest(d) {
			return nil, 0, false, kerrors.ErrInvalidOpcode
		}
		return nil, d, false, nil

	case JUMPDEST:
		if !c.UseGas(1) {
			return nil, 0, false, kerrors.ErrOutOfGas
		}
		return nil, pc + 1, false, nil

	case CREATE:
		return evm.execCreateOp(c, st, mem, pc)

	case RETURN:
		return evm.execReturnOrRevert(c, st, mem, false)
	case REVERT:
		return evm.execReturnOrRevert(c, st, mem, true)

	case STATICCALL:
		return evm.execStaticcall(c, st, mem, pc)
	}

	return nil, 0, false, kerrors.ErrInvalidOpcode
}

func requireStack(st *stack.Stack, n int) bool {
	return st.Len() >= n
}

func pushGas(c *Contract, st *stack.Stack, gas uint64, v *uint256.Int, pc uint64) ([]byte, uint64, bool, error) {
	if !c.UseGas(gas) {
		return nil, 0, false, kerrors.ErrOutOfGas
	}
	if st.Len() >= stack.MaxDepth {
		return nil, 0, false, kerrors.ErrStackOverflow
	}
	st.Push(v)
	return nil, pc + 1, false, nil
}

func addressWord(addr types.Address) *uint256.Int {
	word := addr.EVMWord()
	return new(uint256.Int).SetBytes(word[:])
}

func wordToAddress(w uint256.Int) types.Address {
	word := w.Bytes32()
	var core [types.AddressCoreLength]byte
	copy(core[:], word[12:])
	return types.AddressFromEVM(core)
}

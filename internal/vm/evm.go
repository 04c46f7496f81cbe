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

// Package vm implements the EVM-compatible execution subset: a 1024-deep
// 256-bit stack, write-grown byte memory, a gas meter, and the opcode
// families a minimal smart-contract chain needs, plus the precompile
// registry at addresses 1-9.
package vm

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/internal/vm/evmtypes"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
	"github.com/kortanachain/kortana/params"
)

// Config toggles optional interpreter behavior.
type Config struct {
	// Debug is not read by this subset's interpreter; it is kept for
	// parity with the teacher's Config shape.
	Debug bool
}

// EVM is one execution context: the chain/block/tx environment plus the
// state accessor every opcode and precompile reads and writes through.
type EVM struct {
	chainID  uint64
	blockCtx evmtypes.BlockContext
	txCtx    evmtypes.TxContext
	state    IntraBlockState
	depth    int
	config   Config
}

// Log is an execution event emitted by LOG0-LOG4, mirrored into a
// block.Log by the caller that owns the receipt being built.
type Log struct {
	Address types.Address
	Topics  []types.Hash
	Data    []byte
}

// IntraBlockState is the state surface the EVM subset needs — satisfied by
// *modules/state.IntraBlockState.
type IntraBlockState interface {
	GetBalance(addr types.Address) *uint256.Int
	AddBalance(addr types.Address, amount *uint256.Int)
	SubBalance(addr types.Address, amount *uint256.Int)
	GetNonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)
	GetCode(addr types.Address) []byte
	GetCodeSize(addr types.Address) int
	SetCode(addr types.Address, code []byte) error
	GetState(addr types.Address, key types.Hash) types.Hash
	SetState(addr types.Address, key, value types.Hash)
	CreateAccount(addr types.Address)
	AddLog(log Log)
}

// NewEVM builds an execution context for one transaction.
func NewEVM(blockCtx evmtypes.BlockContext, txCtx evmtypes.TxContext, state IntraBlockState, chainID uint64, config Config) *EVM {
	return &EVM{chainID: chainID, blockCtx: blockCtx, txCtx: txCtx, state: state, config: config}
}

// Call executes the code at addr as a message call from caller, optionally
// read-only (STATICCALL). value is carried purely for the callee's
// CALLVALUE and must be nil/zero for a static call; the caller is
// responsible for actually moving value between balances, since the
// processor has already carved it out of the sender's balance as part of
// the transaction's upfront cost by the time Call runs.
func (evm *EVM) Call(caller ContractRef, addr types.Address, input []byte, gas uint64, value *uint256.Int, readOnly bool) (ret []byte, leftOverGas uint64, err error) {
	if evm.depth > params.MaxCallDepth {
		return nil, gas, kerrors.ErrDepthLimit
	}
	if readOnly && value != nil && !value.IsZero() {
		return nil, gas, kerrors.ErrWriteProtection
	}

	code := evm.state.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller.Address(), addr, value, gas, code, input)
	contract.ReadOnly = readOnly

	evm.depth++
	ret, err = evm.run(contract)
	evm.depth--
	return ret, contract.Gas, err
}

// Create deploys code as a new contract owned by caller, derived at the
// address DeriveContractAddress(caller, nonce) implies. For a top-level
// deployment the processor passes the nonce the transaction itself
// carries, per this chain's fixed pre-increment convention (recorded
// consistently at receipt emission and replay); the CREATE opcode passes
// the creating contract's current nonce.
func (evm *EVM) Create(caller ContractRef, initCode []byte, gas uint64, value *uint256.Int, nonce uint64) (ret []byte, contractAddr types.Address, leftOverGas uint64, err error) {
	if evm.depth > params.MaxCallDepth {
		return nil, types.Address{}, gas, kerrors.ErrDepthLimit
	}

	contractAddr = crypto.DeriveContractAddress(caller.Address(), nonce)
	if evm.state.GetCodeSize(contractAddr) != 0 {
		return nil, contractAddr, gas, kerrors.ErrContractAddressCollision
	}

	evm.state.CreateAccount(contractAddr)

	contract := NewContract(caller.Address(), contractAddr, value, gas, initCode, nil)

	evm.depth++
	ret, err = evm.run(contract)
	evm.depth--
	if err != nil {
		return ret, contractAddr, contract.Gas, err
	}

	if len(ret) > params.MaxCodeSize {
		return ret, contractAddr, contract.Gas, kerrors.Errorf("deployed code size %d exceeds maximum %d", len(ret), params.MaxCodeSize)
	}
	if err := evm.state.SetCode(contractAddr, ret); err != nil {
		return ret, contractAddr, contract.Gas, err
	}
	return ret, contractAddr, contract.Gas, nil
}

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

package processor

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/kortanachain/kortana/common/account"
	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/modules/state"
	"github.com/kortanachain/kortana/params"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
	"github.com/kortanachain/kortana/staking"
)

func newTestProcessor(t *testing.T) (*Processor, types.Address) {
	t.Helper()
	db := state.New()
	stakingStore := staking.New(params.UnbondingPeriodBlocks)
	p := New(db, stakingStore, uint256.NewInt(params.MinGasPrice))

	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	faucet := priv.Address()

	acc := account.NewEOA()
	acc.Balance = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(26))
	require.NoError(t, db.WriteAccount(faucet, acc))
	return p, faucet
}

func testHeader(height uint64) *block.Header {
	return &block.Header{
		Height:   height,
		GasLimit: 30_000_000,
		BaseFee:  uint256.NewInt(params.MinGasPrice),
	}
}

func newAddress(t *testing.T) types.Address {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	return priv.Address()
}

// Scenario: a plain value transfer from a funded faucet to a fresh
// address debits exactly value + gas_used*price from the sender and
// credits value to the recipient.
func TestProcessTransaction_PlainTransfer(t *testing.T) {
	p, faucet := newTestProcessor(t)
	recipient := newAddress(t)

	value := uint256.NewInt(1_000_000)
	tx := &transaction.Transaction{
		Nonce:    0,
		From:     faucet,
		To:       recipient,
		Value:    value,
		GasLimit: 21000,
		GasPrice: uint256.NewInt(1),
		ChainID:  params.ChainID,
	}

	senderBefore, err := p.State.GetBalance(faucet)
	require.NoError(t, err)

	receipt, err := p.ProcessTransaction(tx, testHeader(1))
	require.NoError(t, err)
	require.Equal(t, uint64(1), receipt.Status)
	require.Equal(t, uint64(21000), receipt.GasUsed)

	senderAfter, err := p.State.GetBalance(faucet)
	require.NoError(t, err)
	recipientBalance, err := p.State.GetBalance(recipient)
	require.NoError(t, err)

	wantSpent := new(uint256.Int).Add(value, uint256.NewInt(21000))
	wantSenderAfter := new(uint256.Int).Sub(senderBefore, wantSpent)
	require.Equal(t, wantSenderAfter.String(), senderAfter.String())
	require.Equal(t, value.String(), recipientBalance.String())

	nonce, err := p.State.GetNonce(faucet)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)
}

// Scenario: resubmitting a transaction whose nonce has already been
// consumed is rejected and leaves state untouched.
func TestProcessTransaction_NonceReplay(t *testing.T) {
	p, faucet := newTestProcessor(t)
	recipient := newAddress(t)

	tx := &transaction.Transaction{
		Nonce:    0,
		From:     faucet,
		To:       recipient,
		Value:    uint256.NewInt(100),
		GasLimit: 21000,
		GasPrice: uint256.NewInt(1),
		ChainID:  params.ChainID,
	}

	_, err := p.ProcessTransaction(tx, testHeader(1))
	require.NoError(t, err)

	balanceAfterFirst, err := p.State.GetBalance(faucet)
	require.NoError(t, err)

	replay := &transaction.Transaction{
		Nonce:    0,
		From:     faucet,
		To:       recipient,
		Value:    uint256.NewInt(100),
		GasLimit: 21000,
		GasPrice: uint256.NewInt(1),
		ChainID:  params.ChainID,
	}
	_, err = p.ProcessTransaction(replay, testHeader(2))
	require.Error(t, err)
	require.True(t, kerrors.Is(err, kerrors.ErrNonceTooLow))

	balanceAfterReplay, err := p.State.GetBalance(faucet)
	require.NoError(t, err)
	require.Equal(t, balanceAfterFirst.String(), balanceAfterReplay.String())
}

// Scenario: deploying a minimal contract that stores 42 at slot 0 and
// returns it succeeds, derives the expected contract address, and leaves
// the value exactly where it belongs.
func TestProcessTransaction_MinimalDeploy(t *testing.T) {
	p, faucet := newTestProcessor(t)

	// PUSH1 0x2a PUSH1 0x00 MSTORE PUSH1 0x20 PUSH1 0x00 RETURN
	code := []byte{0x60, 0x2a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	tx := &transaction.Transaction{
		Nonce:    0,
		From:     faucet,
		To:       types.ZeroAddress,
		Value:    uint256.NewInt(0),
		GasLimit: 500000,
		GasPrice: uint256.NewInt(1),
		Data:     code,
		VMType:   transaction.VMTypeEVM,
		ChainID:  params.ChainID,
	}

	receipt, err := p.ProcessTransaction(tx, testHeader(1))
	require.NoError(t, err)
	require.Equal(t, uint64(1), receipt.Status)

	wantAddr := crypto.DeriveContractAddress(faucet, 0)
	require.Equal(t, wantAddr, receipt.ContractAddress)

	acc, err := p.State.ReadAccount(wantAddr)
	require.NoError(t, err)
	require.True(t, acc.IsContract)

	code2, err := p.State.ReadCode(acc.CodeHash)
	require.NoError(t, err)
	var want [32]byte
	want[31] = 0x2a
	require.Equal(t, want[:], code2)
}

// Scenario: a deployment whose init code reverts leaves the sender's
// value untouched (refunded) and produces no contract.
func TestProcessTransaction_DeployRevert(t *testing.T) {
	p, faucet := newTestProcessor(t)

	// PUSH1 0x00 PUSH1 0x00 REVERT
	code := []byte{0x60, 0x00, 0x60, 0x00, 0xfd}
	value := uint256.NewInt(500)
	tx := &transaction.Transaction{
		Nonce:    0,
		From:     faucet,
		To:       types.ZeroAddress,
		Value:    value,
		GasLimit: 500000,
		GasPrice: uint256.NewInt(1),
		Data:     code,
		VMType:   transaction.VMTypeEVM,
		ChainID:  params.ChainID,
	}

	senderBefore, err := p.State.GetBalance(faucet)
	require.NoError(t, err)

	receipt, err := p.ProcessTransaction(tx, testHeader(1))
	require.NoError(t, err)
	require.Equal(t, uint64(0), receipt.Status)

	// A REVERT refunds whatever gas the init code didn't spend; this
	// five-byte program burns only a handful of gas on top of the
	// deployment's intrinsic cost, nowhere near the 500000 limit.
	require.Less(t, receipt.GasUsed, tx.IntrinsicGas(params.TxGasCall, params.TxGasContractCreation, params.TxDataNonZeroGas, params.TxDataZeroGas)+1000)

	senderAfter, err := p.State.GetBalance(faucet)
	require.NoError(t, err)
	wantSpent := new(uint256.Int).Mul(uint256.NewInt(receipt.GasUsed), tx.GasPrice)
	wantSenderAfter := new(uint256.Int).Sub(senderBefore, wantSpent)
	require.Equal(t, wantSenderAfter.String(), senderAfter.String())

	deployAddr := crypto.DeriveContractAddress(faucet, 0)
	deployed, err := p.State.ReadAccount(deployAddr)
	require.NoError(t, err)
	require.False(t, deployed.IsContract)
}

// Scenario: a deployment that runs out of gas consumes the entire limit,
// unlike a deliberate REVERT.
func TestProcessTransaction_DeployOutOfGas(t *testing.T) {
	p, faucet := newTestProcessor(t)

	// An unbounded loop (JUMPDEST at pc 0, JUMP back to it) that never
	// halts on its own; the gas meter is the only thing that stops it.
	code := []byte{0x5b, 0x60, 0x00, 0x56}
	tx := &transaction.Transaction{
		Nonce:    0,
		From:     faucet,
		To:       types.ZeroAddress,
		Value:    uint256.NewInt(0),
		GasLimit: 100000,
		GasPrice: uint256.NewInt(1),
		Data:     code,
		VMType:   transaction.VMTypeEVM,
		ChainID:  params.ChainID,
	}

	receipt, err := p.ProcessTransaction(tx, testHeader(1))
	require.NoError(t, err)
	require.Equal(t, uint64(0), receipt.Status)
	require.Equal(t, tx.GasLimit, receipt.GasUsed)
}

// Scenario: deploying a mapping-style storage contract and then calling it
// writes to a Keccak256-derived slot and advances the state root, matching
// the owner-balance layout spec §8's fourth scenario describes.
func TestProcessTransaction_StorageWrite(t *testing.T) {
	p, faucet := newTestProcessor(t)

	// Init code: CODECOPY the 20-byte runtime below into memory and RETURN
	// it, the standard constructor-returns-runtime-code shape.
	//
	// Runtime code, given calldata = owner(32) ++ value(32):
	//   storage[keccak256(owner)] = value
	runtime := []byte{
		0x60, 0x20, 0x35, // PUSH1 0x20 CALLDATALOAD      ; value
		0x60, 0x00, 0x35, // PUSH1 0x00 CALLDATALOAD      ; owner
		0x60, 0x00, 0x52, // PUSH1 0x00 MSTORE            ; mem[0:32] = owner
		0x60, 0x20, 0x60, 0x00, 0x20, // PUSH1 0x20 PUSH1 0x00 SHA3 ; keccak256(mem[0:32])
		0x55,             // SSTORE                       ; storage[hash] = value
		0x60, 0x00, 0x60, 0x00, 0xf3, // PUSH1 0x00 PUSH1 0x00 RETURN
	}
	init := []byte{
		0x60, byte(len(runtime)), // PUSH1 <len(runtime)>
		0x60, 0x0c, // PUSH1 0x0c   ; offset of runtime within this code
		0x60, 0x00, // PUSH1 0x00   ; destOffset
		0x39,       // CODECOPY
		0x60, byte(len(runtime)), // PUSH1 <len(runtime)>
		0x60, 0x00, // PUSH1 0x00
		0xf3, // RETURN
	}
	require.Len(t, init, 0x0c)
	code := append(append([]byte{}, init...), runtime...)

	deployTx := &transaction.Transaction{
		Nonce:    0,
		From:     faucet,
		To:       types.ZeroAddress,
		Value:    uint256.NewInt(0),
		GasLimit: 500000,
		GasPrice: uint256.NewInt(1),
		Data:     code,
		VMType:   transaction.VMTypeEVM,
		ChainID:  params.ChainID,
	}
	receipt, err := p.ProcessTransaction(deployTx, testHeader(1))
	require.NoError(t, err)
	require.Equal(t, uint64(1), receipt.Status)
	contractAddr := receipt.ContractAddress

	rootAfterDeploy := p.State.Root()

	owner := uint256.NewInt(0xABCDEF).Bytes32()
	value := uint256.NewInt(777).Bytes32()
	callData := append(append([]byte{}, owner[:]...), value[:]...)

	callTx := &transaction.Transaction{
		Nonce:    1,
		From:     faucet,
		To:       contractAddr,
		Value:    uint256.NewInt(0),
		GasLimit: 200000,
		GasPrice: uint256.NewInt(1),
		Data:     callData,
		VMType:   transaction.VMTypeEVM,
		ChainID:  params.ChainID,
	}
	receipt, err = p.ProcessTransaction(callTx, testHeader(2))
	require.NoError(t, err)
	require.Equal(t, uint64(1), receipt.Status)

	rootAfterCall := p.State.Root()
	require.NotEqual(t, rootAfterDeploy, rootAfterCall)

	slot := crypto.Keccak256(owner[:])
	stored, err := p.State.ReadStorage(contractAddr, slot)
	require.NoError(t, err)
	require.Equal(t, value[:], stored.Bytes())
}

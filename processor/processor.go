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
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/feemarket"
	"github.com/kortanachain/kortana/internal/vm"
	"github.com/kortanachain/kortana/internal/vm/evmtypes"
	"github.com/kortanachain/kortana/internal/vm/precompiles"
	"github.com/kortanachain/kortana/log"
	"github.com/kortanachain/kortana/modules/state"
	"github.com/kortanachain/kortana/params"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
	"github.com/kortanachain/kortana/quorlin"
	"github.com/kortanachain/kortana/staking"
)

// stakingDelegate and stakingUndelegate are the Quorlin-free calling
// convention the staking contract address uses: Data[0] selects the
// operation, Data[1:25] is the target validator's 24-byte address. Any
// other shape is treated as a failed call, never a crash, matching
// processor.rs's is_staking branch.
const (
	stakingDelegate   = 1
	stakingUndelegate = 2

	stakingOpGasUsed = 50000
	intrinsicOnlyGas = params.TxGasCall
)

// Processor applies transactions against State, the single mutator of
// the ledger for one node — exactly one Processor instance is expected to
// be live per chain tip, matching the node's single-writer discipline.
type Processor struct {
	State      *state.StateDB
	Staking    *staking.Store
	FeeMarket  *uint256.Int
	stakingAddr types.Address
}

// New builds a processor over db and the staking ledger, with the fee
// market's current base fee.
func New(db *state.StateDB, stakingStore *staking.Store, baseFee *uint256.Int) *Processor {
	return &Processor{
		State:       db,
		Staking:     stakingStore,
		FeeMarket:   baseFee,
		stakingAddr: types.AddressFromEVM(params.StakingContractAddress),
	}
}

// ProcessTransaction applies tx against p.State under header's
// environment and returns the resulting receipt. It never returns an
// execution failure as a Go error — only protocol-level rejections
// (wrong chain, bad nonce, insufficient funds, gas limit below the
// intrinsic floor) do, matching process_transaction's early returns. A
// reverted call or failed deployment is reported via Receipt.Status == 0.
func (p *Processor) ProcessTransaction(tx *transaction.Transaction, header *block.Header) (*block.Receipt, error) {
	// Step 1: chain ID check.
	if tx.ChainID != params.ChainID {
		return nil, kerrors.Wrapf(kerrors.ErrWrongChainID, "expected %d, got %d", params.ChainID, tx.ChainID)
	}

	// Step 2: matured unbonding credit, run ahead of every transaction so
	// a delegator's balance is current before this tx's own balance checks.
	for _, released := range p.Staking.ProcessMatured(header.Height) {
		acc, err := p.State.ReadAccount(released.Delegator)
		if err != nil {
			return nil, err
		}
		acc.Balance = new(uint256.Int).Add(acc.Balance, released.Amount)
		if err := p.State.WriteAccount(released.Delegator, acc); err != nil {
			return nil, err
		}
	}

	sender, err := p.State.ReadAccount(tx.From)
	if err != nil {
		return nil, err
	}

	// Step 3: nonce check.
	if sender.Nonce != tx.Nonce {
		return nil, kerrors.Wrapf(kerrors.ErrNonceTooLow, "account %s expected nonce %d, got %d", tx.From, sender.Nonce, tx.Nonce)
	}

	// Step 4: balance check against the full upfront cost.
	totalCost := totalCost(tx)
	if sender.Balance.Cmp(totalCost) < 0 {
		return nil, kerrors.Wrapf(kerrors.ErrInsufficientFunds, "account %s has %s, needs %s", tx.From, sender.Balance, totalCost)
	}

	// Step 5: debit upfront cost and bump the nonce before dispatch, so
	// contract-address derivation below uses the nonce the sender held
	// for this transaction (Open Question (b)'s resolution).
	sender.Balance = new(uint256.Int).Sub(sender.Balance, totalCost)
	sender.Nonce++
	if err := p.State.WriteAccount(tx.From, sender); err != nil {
		return nil, err
	}

	isDeployment := tx.IsDeployment()
	isStaking := tx.To == p.stakingAddr

	// Step 6: intrinsic gas check.
	intrinsicGas := tx.IntrinsicGas(params.TxGasCall, params.TxGasContractCreation, params.TxDataNonZeroGas, params.TxDataZeroGas)
	if tx.GasLimit < intrinsicGas {
		return nil, kerrors.Wrapf(kerrors.ErrIntrinsicGas, "gas limit %d below intrinsic cost %d", tx.GasLimit, intrinsicGas)
	}

	// Step 7/8: dispatch priority (staking -> precompiles -> VM) and
	// deployment/call handling.
	var (
		status          uint64
		gasUsed         uint64
		contractAddr    types.Address
		logs            []block.Log
	)
	switch {
	case isStaking:
		status, gasUsed = p.dispatchStaking(tx, header.Height)
	case precompiles.IsReserved(tx.To):
		status, gasUsed = p.dispatchPrecompile(tx)
	default:
		status, gasUsed, contractAddr, logs = p.dispatchVM(tx, header, isDeployment)
	}

	// Step 9: gas refund, reverting the value transfer if the call failed.
	var refund *uint256.Int
	if tx.GasLimit >= gasUsed {
		unused := tx.GasLimit - gasUsed
		refund = new(uint256.Int).Mul(uint256.NewInt(unused), tx.GasPrice)
	} else {
		refund = uint256.NewInt(0)
	}
	if status == 0 && !tx.Value.IsZero() && !isStaking {
		refund = new(uint256.Int).Add(refund, tx.Value)
	}
	if !refund.IsZero() {
		sender, err = p.State.ReadAccount(tx.From)
		if err != nil {
			return nil, err
		}
		sender.Balance = new(uint256.Int).Add(sender.Balance, refund)
		if err := p.State.WriteAccount(tx.From, sender); err != nil {
			return nil, err
		}
	}

	receipt := &block.Receipt{
		TxHash:          tx.Hash(),
		Status:          status,
		GasUsed:         gasUsed,
		ContractAddress: contractAddr,
		Logs:            logs,
		Bloom:           block.LogsBloom(logs),
	}
	return receipt, nil
}

// totalCost returns value + gas_limit*gas_price, the upfront amount a
// sender must be able to cover before a transaction is admitted.
func totalCost(tx *transaction.Transaction) *uint256.Int {
	cost := new(uint256.Int).Mul(uint256.NewInt(tx.GasLimit), tx.GasPrice)
	return cost.Add(cost, tx.Value)
}

// dispatchStaking runs the primitive delegate/undelegate calling
// convention, matching process_transaction's is_staking branch. An
// unrecognized data shape or a failed undelegate is reported as a failed
// call, not a crash.
func (p *Processor) dispatchStaking(tx *transaction.Transaction, height uint64) (status uint64, gasUsed uint64) {
	if len(tx.Data) == 0 {
		return 0, intrinsicOnlyGas
	}
	if len(tx.Data) < 25 {
		return 0, intrinsicOnlyGas
	}

	var validatorBytes [24]byte
	copy(validatorBytes[:], tx.Data[1:25])
	validator, err := types.AddressFromBytes(validatorBytes[:])
	if err != nil {
		return 0, intrinsicOnlyGas
	}

	switch tx.Data[0] {
	case stakingDelegate:
		p.Staking.Delegate(tx.From, validator, tx.Value, height)
		return 1, stakingOpGasUsed
	case stakingUndelegate:
		if err := p.Staking.Undelegate(tx.From, validator, tx.Value, height); err != nil {
			return 0, stakingOpGasUsed
		}
		return 1, stakingOpGasUsed
	default:
		return 0, intrinsicOnlyGas
	}
}

// precompileGas is the flat gas cost a precompile call is billed,
// matching process_transaction's "static cost for precompile" comment.
const precompileGas uint64 = 500

// dispatchPrecompile runs a reserved-address native call ahead of VM
// dispatch. Slots 5-9 are reserved but unimplemented and always fail.
func (p *Processor) dispatchPrecompile(tx *transaction.Transaction) (status uint64, gasUsed uint64) {
	impl, ok := precompiles.Lookup(tx.To)
	if !ok {
		return 0, precompileGas
	}
	if _, err := impl.Run(tx.Data); err != nil {
		return 0, precompileGas
	}
	return 1, precompileGas
}

// dispatchVM runs the transaction's payload through the execution engine
// its VMType selects, handling deployment and regular-call shapes
// separately as process_transaction does.
func (p *Processor) dispatchVM(tx *transaction.Transaction, header *block.Header, isDeployment bool) (status uint64, gasUsed uint64, contractAddr types.Address, logs []block.Log) {
	intrinsicGas := tx.IntrinsicGas(params.TxGasCall, params.TxGasContractCreation, params.TxDataNonZeroGas, params.TxDataZeroGas)

	switch tx.VMType {
	case transaction.VMTypeEVM:
		return p.dispatchEVM(tx, header, isDeployment, intrinsicGas)
	case transaction.VMTypeQuorlin:
		return p.dispatchQuorlin(tx, header, isDeployment, intrinsicGas)
	default:
		return p.dispatchTransfer(tx, intrinsicGas)
	}
}

// dispatchTransfer handles VMTypeNone: a plain value transfer to a
// non-contract recipient, billed at intrinsic gas plus a per-byte data
// surcharge (process_transaction's fallback branch for a non-contract To).
func (p *Processor) dispatchTransfer(tx *transaction.Transaction, intrinsicGas uint64) (uint64, uint64, types.Address, []block.Log) {
	gasUsed := intrinsicGas + uint64(len(tx.Data))*params.TxDataNonZeroGas
	if gasUsed > tx.GasLimit {
		return 0, tx.GasLimit, types.Address{}, nil
	}
	if !tx.Value.IsZero() {
		recipient, err := p.State.ReadAccount(tx.To)
		if err != nil {
			return 0, tx.GasLimit, types.Address{}, nil
		}
		recipient.Balance = new(uint256.Int).Add(recipient.Balance, tx.Value)
		if err := p.State.WriteAccount(tx.To, recipient); err != nil {
			return 0, tx.GasLimit, types.Address{}, nil
		}
	}
	return 1, gasUsed, types.Address{}, nil
}

// evmFailureGas is the gas a failed Call/Create consumes: a deliberate
// REVERT refunds leftover (the interpreter preserves contract.Gas for it),
// while every other error (OutOfGas, stack over/underflow, depth limit,
// write protection, ...) consumes the entire limit, matching spec §7's
// split between Revert and the fail-closed error kinds.
func evmFailureGas(gasLimit, leftover uint64, err error) uint64 {
	if kerrors.Is(err, kerrors.ErrExecutionReverted) {
		return gasLimit - leftover
	}
	return gasLimit
}

// dispatchEVM runs either a CREATE (tx.To is the zero address) or a CALL
// against the EVM subset.
func (p *Processor) dispatchEVM(tx *transaction.Transaction, header *block.Header, isDeployment bool, intrinsicGas uint64) (uint64, uint64, types.Address, []block.Log) {
	blockCtx := evmtypes.BlockContext{
		GetHash:     func(uint64) types.Hash { return types.Hash{} },
		Coinbase:    header.Proposer,
		GasLimit:    header.GasLimit,
		BlockNumber: header.Height,
		Time:        header.Timestamp,
		BaseFee:     p.FeeMarket,
	}
	txCtx := evmtypes.TxContext{TxHash: tx.Hash(), Origin: tx.From, GasPrice: tx.GasPrice}
	ibs := ibsBridge{state.NewIntraBlockState(p.State)}
	evm := vm.NewEVM(blockCtx, txCtx, ibs, tx.ChainID, vm.Config{})

	caller := vm.AccountRef(tx.From)
	gas := tx.GasLimit - intrinsicGas
	snapshot := ibs.Snapshot()

	if isDeployment {
		_, contractAddr, leftover, err := evm.Create(caller, tx.Data, gas, tx.Value, tx.Nonce)
		if err != nil {
			log.Debug("processor: evm deployment failed", "tx", tx.Hash(), "err", err)
			_ = ibs.RevertToSnapshot(snapshot)
			return 0, evmFailureGas(tx.GasLimit, leftover, err), types.Address{}, nil
		}
		// The upfront debit in step 5 already carved tx.Value out of the
		// sender's balance; credit it to the freshly deployed contract only
		// now that deployment has actually succeeded.
		if !tx.Value.IsZero() {
			acc, err := p.State.ReadAccount(contractAddr)
			if err == nil {
				acc.Balance = new(uint256.Int).Add(acc.Balance, tx.Value)
				_ = p.State.WriteAccount(contractAddr, acc)
			}
		}
		return 1, tx.GasLimit - leftover, contractAddr, bridgeLogs(ibs.Logs())
	}

	toAccount, err := p.State.ReadAccount(tx.To)
	if err != nil {
		return 0, intrinsicGas, types.Address{}, nil
	}
	if !toAccount.IsContract {
		return p.dispatchTransfer(tx, intrinsicGas)
	}
	_, leftover, err := evm.Call(caller, tx.To, tx.Data, gas, tx.Value, false)
	if err != nil {
		log.Debug("processor: evm call failed", "tx", tx.Hash(), "err", err)
		_ = ibs.RevertToSnapshot(snapshot)
		return 0, evmFailureGas(tx.GasLimit, leftover, err), types.Address{}, nil
	}
	if !tx.Value.IsZero() {
		recipient, err := p.State.ReadAccount(tx.To)
		if err == nil {
			recipient.Balance = new(uint256.Int).Add(recipient.Balance, tx.Value)
			_ = p.State.WriteAccount(tx.To, recipient)
		}
	}
	return 1, tx.GasLimit - leftover, types.Address{}, bridgeLogs(ibs.Logs())
}

// dispatchQuorlin runs either a deployment or call against the auxiliary
// stack VM, storing the original bytecode as "code" on deployment exactly
// as original_source/.../quorlin.rs does (no separate init/runtime split).
func (p *Processor) dispatchQuorlin(tx *transaction.Transaction, header *block.Header, isDeployment bool, intrinsicGas uint64) (uint64, uint64, types.Address, []block.Log) {
	blockCtx := quorlin.BlockContext{Height: header.Height, Time: header.Timestamp}
	gas := tx.GasLimit - intrinsicGas

	if isDeployment {
		contractAddr := crypto.DeriveContractAddress(tx.From, tx.Nonce)
		ibs := ibsBridge{state.NewIntraBlockState(p.State)}
		snapshot := ibs.Snapshot()
		executor := quorlin.NewExecutor(contractAddr, gas)
		if _, err := executor.Run(tx.Data, ibs, blockCtx); err != nil {
			_ = ibs.RevertToSnapshot(snapshot)
			return 0, tx.GasLimit, types.Address{}, nil
		}
		codeHash, err := p.State.WriteCode(tx.Data)
		if err != nil {
			return 0, tx.GasLimit, types.Address{}, nil
		}
		acc, err := p.State.ReadAccount(contractAddr)
		if err != nil {
			return 0, tx.GasLimit, types.Address{}, nil
		}
		acc.IsContract = true
		acc.CodeHash = codeHash
		if err := p.State.WriteAccount(contractAddr, acc); err != nil {
			return 0, tx.GasLimit, types.Address{}, nil
		}
		return 1, tx.GasLimit - executor.Gas, contractAddr, nil
	}

	toAccount, err := p.State.ReadAccount(tx.To)
	if err != nil || !toAccount.IsContract {
		return 0, intrinsicGas, types.Address{}, nil
	}
	code, err := p.State.ReadCode(toAccount.CodeHash)
	if err != nil {
		return 0, intrinsicGas, types.Address{}, nil
	}
	ibs := ibsBridge{state.NewIntraBlockState(p.State)}
	snapshot := ibs.Snapshot()
	executor := quorlin.NewExecutor(tx.To, gas)
	if _, err := executor.Run(code, ibs, blockCtx); err != nil {
		_ = ibs.RevertToSnapshot(snapshot)
		return 0, tx.GasLimit, types.Address{}, nil
	}
	return 1, tx.GasLimit - executor.Gas, types.Address{}, nil
}

func bridgeLogs(vmLogs []vm.Log) []block.Log {
	if len(vmLogs) == 0 {
		return nil
	}
	out := make([]block.Log, len(vmLogs))
	for i, l := range vmLogs {
		out[i] = block.Log{Address: l.Address, Topics: l.Topics, Data: l.Data}
	}
	return out
}

// ValidateBlock replays every transaction in blk against p.State in
// order, checking the base fee, VRF presence, and transactions root
// before processing, matching validate_block.
func (p *Processor) ValidateBlock(blk *block.Block) ([]*block.Receipt, error) {
	if blk.Header.BaseFee.Cmp(p.FeeMarket) != 0 {
		return nil, kerrors.New("incorrect base fee in block header")
	}
	if blk.Header.VRFOutput.IsZero() {
		return nil, kerrors.New("missing VRF output in header")
	}
	if block.ComputeTransactionsRoot(blk.Transactions) != blk.Header.TransactionsRoot {
		return nil, kerrors.New("invalid transactions root")
	}

	receipts := make([]*block.Receipt, 0, len(blk.Transactions))
	var cumulativeGas uint64
	for _, tx := range blk.Transactions {
		if !feemarket.ValidateGasPrice(tx.GasPrice, p.FeeMarket) {
			return nil, kerrors.Wrapf(kerrors.ErrGasLimitReached, "transaction gas price %s below base fee %s", tx.GasPrice, p.FeeMarket)
		}
		receipt, err := p.ProcessTransaction(tx, blk.Header)
		if err != nil {
			return nil, kerrors.Wrap(err, "transaction failed")
		}
		cumulativeGas += receipt.GasUsed
		receipt.CumulativeGasUsed = cumulativeGas
		receipts = append(receipts, receipt)
	}

	if block.ComputeReceiptsRoot(receipts) != blk.Header.ReceiptsRoot {
		return nil, kerrors.New("invalid receipts root")
	}
	return receipts, nil
}

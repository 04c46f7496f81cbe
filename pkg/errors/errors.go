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

// Package errors centralizes the sentinel errors shared across the Kortana
// node so callers can errors.Is against a stable value instead of matching
// strings.
package errors

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// =====================
// Address & Crypto Errors
// =====================

var (
	// ErrInvalidAddress is returned when an address fails checksum or length validation.
	ErrInvalidAddress = stderrors.New("invalid address")

	// ErrInvalidSignature is returned when an ECDSA signature fails verification.
	ErrInvalidSignature = stderrors.New("invalid signature")

	// ErrSenderRecovery is returned when the sender cannot be recovered from a signature.
	ErrSenderRecovery = stderrors.New("could not recover sender from signature")
)

// =====================
// Transaction Errors
// =====================

var (
	// ErrNonceTooLow is returned if the nonce of a transaction is lower than the
	// one present in the account's state.
	ErrNonceTooLow = stderrors.New("nonce too low")

	// ErrNonceTooHigh is returned if the nonce of a transaction is higher than the
	// next one expected for the account.
	ErrNonceTooHigh = stderrors.New("nonce too high")

	// ErrInsufficientFunds is returned if the total cost of a transaction
	// (value + gas_limit*gas_price) exceeds the sender's balance.
	ErrInsufficientFunds = stderrors.New("insufficient funds for gas * price + value")

	// ErrIntrinsicGas is returned if the gas limit is below the intrinsic cost
	// of the transaction's kind and payload.
	ErrIntrinsicGas = stderrors.New("intrinsic gas too low")

	// ErrGasLimitReached is returned when a transaction would exceed the block's
	// remaining gas budget.
	ErrGasLimitReached = stderrors.New("gas limit reached")

	// ErrWrongChainID is returned when a transaction's chain ID does not match
	// the node's configured chain ID.
	ErrWrongChainID = stderrors.New("wrong chain id")

	// ErrUnsupportedVMType is returned for a transaction targeting an unknown
	// execution engine.
	ErrUnsupportedVMType = stderrors.New("unsupported vm type")

	// ErrMalformedTransaction is returned when RLP decoding of a transaction fails.
	ErrMalformedTransaction = stderrors.New("malformed transaction encoding")

	// ErrUnsupportedTxEnvelope is returned when ingress decoding recognizes
	// neither the native, legacy Ethereum, nor EIP-1559 typed wire format.
	ErrUnsupportedTxEnvelope = stderrors.New("unsupported transaction envelope")
)

// =====================
// Mempool Errors
// =====================

var (
	// ErrMempoolFull is returned when a bounded mempool is at capacity;
	// admission does not evict a lower-priority entry to make room.
	ErrMempoolFull = stderrors.New("mempool is full")

	// ErrAlreadyKnown is returned when a transaction hash is already tracked.
	ErrAlreadyKnown = stderrors.New("transaction already known")
)

// =====================
// State & Trie Errors
// =====================

var (
	// ErrAccountNotFound is returned when an address has no account record.
	ErrAccountNotFound = stderrors.New("account not found")

	// ErrCodeNotFound is returned when looking up bytecode by a hash that was
	// never stored.
	ErrCodeNotFound = stderrors.New("code not found")

	// ErrNoSnapshot is returned when RevertToSnapshot references an id that
	// was never taken, or was already reverted past.
	ErrNoSnapshot = stderrors.New("no such state snapshot")
)

// =====================
// VM Errors
// =====================

var (
	// ErrOutOfGas is returned when an execution engine exhausts its gas budget.
	ErrOutOfGas = stderrors.New("out of gas")

	// ErrStackOverflow is returned when a VM's operand stack exceeds its bound.
	ErrStackOverflow = stderrors.New("stack overflow")

	// ErrStackUnderflow is returned when an opcode needs more operands than
	// are on the stack.
	ErrStackUnderflow = stderrors.New("stack underflow")

	// ErrInvalidOpcode is returned when the interpreter encounters a byte that
	// does not map to a known opcode.
	ErrInvalidOpcode = stderrors.New("invalid opcode")

	// ErrInvalidMemoryAccess is returned when an opcode's operand addresses
	// memory, a jump target, or a bytecode offset outside its valid range.
	ErrInvalidMemoryAccess = stderrors.New("invalid memory access")

	// ErrExecutionReverted is returned when a contract explicitly reverts via
	// the REVERT opcode.
	ErrExecutionReverted = stderrors.New("execution reverted")

	// ErrDepthLimit is returned when nested calls exceed the maximum call depth.
	ErrDepthLimit = stderrors.New("max call depth exceeded")

	// ErrWriteProtection is returned when a state-mutating opcode executes
	// inside a STATICCALL.
	ErrWriteProtection = stderrors.New("write protection")

	// ErrContractAddressCollision is returned when CREATE targets an address
	// that already has code.
	ErrContractAddressCollision = stderrors.New("contract address collision")
)

// =====================
// Consensus Errors
// =====================

var (
	// ErrUnknownValidator is returned when a vote or slash targets an
	// address absent from the validator set.
	ErrUnknownValidator = stderrors.New("unknown validator")

	// ErrValidatorJailed is returned when a jailed validator attempts to
	// propose or vote.
	ErrValidatorJailed = stderrors.New("validator is jailed")

	// ErrNotLeader is returned when a block is proposed by a validator other
	// than the slot's elected leader.
	ErrNotLeader = stderrors.New("proposer is not the elected leader for this slot")

	// ErrInsufficientStakeForFinality is returned when attempting to finalize
	// a block without the required two-thirds supermajority.
	ErrInsufficientStakeForFinality = stderrors.New("insufficient signed stake for finality")

	// ErrDuplicateVote is returned when a validator casts a second vote for
	// the same slot.
	ErrDuplicateVote = stderrors.New("duplicate vote")
)

// =====================
// Staking Errors
// =====================

var (
	// ErrInsufficientStake is returned when an undelegate amount exceeds the
	// delegator's staked balance.
	ErrInsufficientStake = stderrors.New("insufficient staked balance")

	// ErrUnbondingNotMatured is returned when attempting to release unbonding
	// funds before their release block.
	ErrUnbondingNotMatured = stderrors.New("unbonding request has not matured")
)

// =====================
// Storage Errors
// =====================

var (
	// ErrKeyNotFound is returned by a storage.Store when a key is absent.
	ErrKeyNotFound = stderrors.New("storage: key not found")
)

// =====================
// Helper Functions
// =====================

// Wrap wraps an error with additional context, attaching a stack trace the
// first time an error is wrapped.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}

// Errorf formats according to a format specifier and returns the string as
// a value that satisfies error.
func Errorf(format string, a ...interface{}) error {
	return errors.Errorf(format, a...)
}

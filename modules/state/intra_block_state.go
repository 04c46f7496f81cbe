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

package state

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/account"
	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// Log is an execution event emitted by LOG0-LOG4.
type Log struct {
	Address types.Address
	Topics  []types.Hash
	Data    []byte
}

// journalEntry undoes one mutation performed against an IntraBlockState.
type journalEntry func(s *IntraBlockState)

// IntraBlockState is the per-transaction view over the ledger trimmed to
// what the EVM subset and Quorlin VM need: balance/nonce/code mutation,
// storage access, refund accounting, and snapshot/revert for REVERT and
// failed calls. It is intentionally smaller than the teacher's StateDB
// interface: no self-destruct, no EIP-2930 access lists, no EIP-1153
// transient storage — none of those are in the spec's minimal EVM subset.
type IntraBlockState struct {
	db      *StateDB
	journal []journalEntry
	refund  uint64
	logs    []Log
}

// NewIntraBlockState wraps db for one transaction's execution.
func NewIntraBlockState(db *StateDB) *IntraBlockState {
	return &IntraBlockState{db: db}
}

func (s *IntraBlockState) account(addr types.Address) *account.StateAccount {
	acc, err := s.db.ReadAccount(addr)
	if err != nil {
		return account.NewEOA()
	}
	return acc
}

// CreateAccount marks addr as a contract account if it is not already one.
func (s *IntraBlockState) CreateAccount(addr types.Address) {
	acc := s.account(addr)
	wasContract := acc.IsContract
	acc.IsContract = true
	_ = s.db.WriteAccount(addr, acc)
	s.journal = append(s.journal, func(s *IntraBlockState) {
		acc := s.account(addr)
		acc.IsContract = wasContract
		_ = s.db.WriteAccount(addr, acc)
	})
}

// Exist reports whether addr has ever been written (a non-empty account).
func (s *IntraBlockState) Exist(addr types.Address) bool {
	return !s.account(addr).Empty()
}

// GetBalance returns addr's balance.
func (s *IntraBlockState) GetBalance(addr types.Address) *uint256.Int {
	return s.account(addr).Balance
}

// AddBalance credits amount to addr, journaling the reverse debit.
func (s *IntraBlockState) AddBalance(addr types.Address, amount *uint256.Int) {
	acc := s.account(addr)
	acc.Balance = new(uint256.Int).Add(acc.Balance, amount)
	_ = s.db.WriteAccount(addr, acc)
	s.journal = append(s.journal, func(s *IntraBlockState) {
		acc := s.account(addr)
		acc.Balance = new(uint256.Int).Sub(acc.Balance, amount)
		_ = s.db.WriteAccount(addr, acc)
	})
}

// SubBalance debits amount from addr, journaling the reverse credit.
// Callers are responsible for checking sufficiency before calling.
func (s *IntraBlockState) SubBalance(addr types.Address, amount *uint256.Int) {
	acc := s.account(addr)
	acc.Balance = new(uint256.Int).Sub(acc.Balance, amount)
	_ = s.db.WriteAccount(addr, acc)
	s.journal = append(s.journal, func(s *IntraBlockState) {
		acc := s.account(addr)
		acc.Balance = new(uint256.Int).Add(acc.Balance, amount)
		_ = s.db.WriteAccount(addr, acc)
	})
}

// GetNonce returns addr's nonce.
func (s *IntraBlockState) GetNonce(addr types.Address) uint64 {
	return s.account(addr).Nonce
}

// SetNonce sets addr's nonce, journaling the reverse assignment.
func (s *IntraBlockState) SetNonce(addr types.Address, nonce uint64) {
	acc := s.account(addr)
	old := acc.Nonce
	acc.Nonce = nonce
	_ = s.db.WriteAccount(addr, acc)
	s.journal = append(s.journal, func(s *IntraBlockState) {
		acc := s.account(addr)
		acc.Nonce = old
		_ = s.db.WriteAccount(addr, acc)
	})
}

// GetCodeHash returns addr's code hash, or the zero hash for an EOA.
func (s *IntraBlockState) GetCodeHash(addr types.Address) types.Hash {
	return s.account(addr).CodeHash
}

// GetCode returns addr's bytecode, or nil for an EOA.
func (s *IntraBlockState) GetCode(addr types.Address) []byte {
	acc := s.account(addr)
	if acc.CodeHash.IsZero() {
		return nil
	}
	code, err := s.db.ReadCode(acc.CodeHash)
	if err != nil {
		return nil
	}
	return code
}

// GetCodeSize returns the length of addr's bytecode.
func (s *IntraBlockState) GetCodeSize(addr types.Address) int {
	return len(s.GetCode(addr))
}

// SetCode installs code as addr's runtime bytecode and marks it a
// contract, journaling the reverse assignment.
func (s *IntraBlockState) SetCode(addr types.Address, code []byte) error {
	hash, err := s.db.WriteCode(code)
	if err != nil {
		return err
	}
	acc := s.account(addr)
	oldHash := acc.CodeHash
	wasContract := acc.IsContract
	acc.CodeHash = hash
	acc.IsContract = true
	_ = s.db.WriteAccount(addr, acc)
	s.journal = append(s.journal, func(s *IntraBlockState) {
		acc := s.account(addr)
		acc.CodeHash = oldHash
		acc.IsContract = wasContract
		_ = s.db.WriteAccount(addr, acc)
	})
	return nil
}

// GetState reads a storage slot.
func (s *IntraBlockState) GetState(addr types.Address, key types.Hash) types.Hash {
	v, err := s.db.ReadStorage(addr, key)
	if err != nil {
		return types.Hash{}
	}
	return v
}

// SetState writes a storage slot, journaling the reverse write.
func (s *IntraBlockState) SetState(addr types.Address, key, value types.Hash) {
	old := s.GetState(addr, key)
	_ = s.db.WriteStorage(addr, key, value)
	s.journal = append(s.journal, func(s *IntraBlockState) {
		_ = s.db.WriteStorage(addr, key, old)
	})
}

// AddRefund increases the pending gas refund.
func (s *IntraBlockState) AddRefund(amount uint64) {
	old := s.refund
	s.refund += amount
	s.journal = append(s.journal, func(s *IntraBlockState) { s.refund = old })
}

// SubRefund decreases the pending gas refund, floored at zero.
func (s *IntraBlockState) SubRefund(amount uint64) {
	old := s.refund
	if amount > s.refund {
		s.refund = 0
	} else {
		s.refund -= amount
	}
	s.journal = append(s.journal, func(s *IntraBlockState) { s.refund = old })
}

// GetRefund returns the accumulated gas refund.
func (s *IntraBlockState) GetRefund() uint64 {
	return s.refund
}

// AddLog records an execution log, journaling its removal.
func (s *IntraBlockState) AddLog(log Log) {
	s.logs = append(s.logs, log)
	s.journal = append(s.journal, func(s *IntraBlockState) {
		s.logs = s.logs[:len(s.logs)-1]
	})
}

// Logs returns the logs emitted so far.
func (s *IntraBlockState) Logs() []Log {
	return s.logs
}

// Snapshot returns an id that RevertToSnapshot can later roll back to.
func (s *IntraBlockState) Snapshot() int {
	return len(s.journal)
}

// RevertToSnapshot undoes every mutation recorded after id was taken.
func (s *IntraBlockState) RevertToSnapshot(id int) error {
	if id > len(s.journal) {
		return kerrors.ErrNoSnapshot
	}
	for i := len(s.journal) - 1; i >= id; i-- {
		s.journal[i](s)
	}
	s.journal = s.journal[:id]
	return nil
}

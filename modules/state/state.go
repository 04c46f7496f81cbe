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

// Package state holds the account ledger and per-account storage, committed
// through a Merkle-Patricia trie. It replaces the teacher's erigon-backed
// kv.RwDB implementation with a trie-backed in-memory store sized for a
// single-writer node.
package state

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/account"
	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
	"github.com/kortanachain/kortana/trie"
)

// StateReader is the read half of the account/storage/code ledger.
type StateReader interface {
	ReadAccount(addr types.Address) (*account.StateAccount, error)
	ReadStorage(addr types.Address, key types.Hash) (types.Hash, error)
	ReadCode(codeHash types.Hash) ([]byte, error)
}

// StateWriter is the write half of the ledger.
type StateWriter interface {
	WriteAccount(addr types.Address, acc *account.StateAccount) error
	WriteStorage(addr types.Address, key, value types.Hash) error
	WriteCode(code []byte) (types.Hash, error)
	DeleteAccount(addr types.Address) error
}

// StateDB is the trie-backed ledger implementation used by the processor
// and the VM's IntraBlockState wrapper.
type StateDB struct {
	accounts *trie.Trie
	storage  map[types.Address]*trie.Trie
	code     map[types.Hash][]byte
}

// New returns an empty ledger.
func New() *StateDB {
	return &StateDB{
		accounts: trie.New(),
		storage:  make(map[types.Address]*trie.Trie),
		code:     make(map[types.Hash][]byte),
	}
}

// Root returns the global state commitment: the account trie's root hash.
// Each account's own StorageRoot is folded in because it is part of the
// encoded account value stored at the account trie's leaf.
func (s *StateDB) Root() types.Hash {
	return s.accounts.Hash()
}

// ReadAccount returns the account at addr, or a fresh EOA shape if none
// exists yet — mirroring the "every address has an implicit zero-balance
// account" convention used throughout the transition processor.
func (s *StateDB) ReadAccount(addr types.Address) (*account.StateAccount, error) {
	raw, ok := s.accounts.Get(addr.Bytes())
	if !ok {
		return account.NewEOA(), nil
	}
	return decodeAccount(raw)
}

// WriteAccount commits acc at addr, updating the account trie.
func (s *StateDB) WriteAccount(addr types.Address, acc *account.StateAccount) error {
	s.accounts.Insert(addr.Bytes(), encodeAccount(acc))
	return nil
}

// DeleteAccount removes addr's entry by writing the empty-account shape;
// the trie has no explicit delete, so an emptied account collapses to the
// same encoding an never-seen address would read back as.
func (s *StateDB) DeleteAccount(addr types.Address) error {
	return s.WriteAccount(addr, account.NewEOA())
}

// ReadStorage reads a single storage slot for addr.
func (s *StateDB) ReadStorage(addr types.Address, key types.Hash) (types.Hash, error) {
	st, ok := s.storage[addr]
	if !ok {
		return types.Hash{}, nil
	}
	raw, ok := st.Get(key.Bytes())
	if !ok {
		return types.Hash{}, nil
	}
	return types.BytesToHash(raw), nil
}

// WriteStorage sets a single storage slot for addr and updates that
// account's StorageRoot to reflect the change.
func (s *StateDB) WriteStorage(addr types.Address, key, value types.Hash) error {
	st, ok := s.storage[addr]
	if !ok {
		st = trie.New()
		s.storage[addr] = st
	}
	st.Insert(key.Bytes(), value.Bytes())

	acc, err := s.ReadAccount(addr)
	if err != nil {
		return err
	}
	acc.StorageRoot = st.Hash()
	return s.WriteAccount(addr, acc)
}

// ReadCode returns the bytecode stored under codeHash.
func (s *StateDB) ReadCode(codeHash types.Hash) ([]byte, error) {
	code, ok := s.code[codeHash]
	if !ok {
		return nil, kerrors.ErrCodeNotFound
	}
	return code, nil
}

// WriteCode stores code content-addressed by its Keccak-256 hash and
// returns that hash.
func (s *StateDB) WriteCode(code []byte) (types.Hash, error) {
	h := crypto.Keccak256(code)
	s.code[h] = append([]byte(nil), code...)
	return h, nil
}

// GetBalance is a convenience accessor over ReadAccount for callers (the
// mempool's nonce tracker, the fee market) that only need one field.
func (s *StateDB) GetBalance(addr types.Address) (*uint256.Int, error) {
	acc, err := s.ReadAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance, nil
}

// GetNonce is a convenience accessor over ReadAccount.
func (s *StateDB) GetNonce(addr types.Address) (uint64, error) {
	acc, err := s.ReadAccount(addr)
	if err != nil {
		return 0, err
	}
	return acc.Nonce, nil
}

var (
	_ StateReader = (*StateDB)(nil)
	_ StateWriter = (*StateDB)(nil)
)

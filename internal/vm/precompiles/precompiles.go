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

// Package precompiles implements the reserved-address native primitives
// the processor routes to ahead of VM dispatch (spec step 7's "precompile
// addresses 1-9" priority tier), grounded on original_source's
// vm/precompiles.rs get_precompile lookup.
package precompiles

import (
	"crypto/sha256"

	"golang.org/x/crypto/sha3"

	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// Precompile is a native contract keyed by a reserved 20-byte address.
// It runs for a fixed gas cost regardless of input size, and its error is
// treated by the processor exactly like a failed call — never a crash.
type Precompile interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// addressAt returns the 20-byte EVM-style precompile address for id
// (1-9), i.e. 19 zero bytes followed by id.
func addressAt(id byte) types.Address {
	var core [types.AddressCoreLength]byte
	core[types.AddressCoreLength-1] = id
	return types.AddressFromEVM(core)
}

var registry = map[types.Address]Precompile{
	addressAt(1): ecrecover{},
	addressAt(2): sha256hash{},
	addressAt(3): ripemd160Shaped{},
	addressAt(4): identity{},
}

// unimplemented covers addresses 5-9 (MODEXP, the BN256 pairing family):
// routed as a deliberate failed call rather than silently falling through
// to VM dispatch.
var unimplemented = map[types.Address]bool{
	addressAt(5): true,
	addressAt(6): true,
	addressAt(7): true,
	addressAt(8): true,
	addressAt(9): true,
}

// Lookup returns the precompile registered at addr, or nil if addr is not
// a reserved precompile address.
func Lookup(addr types.Address) (Precompile, bool) {
	p, ok := registry[addr]
	return p, ok
}

// IsReserved reports whether addr names any of the nine reserved
// precompile slots, implemented or not — used by the processor to route
// even the unimplemented slots to a failed call instead of VM execution.
func IsReserved(addr types.Address) bool {
	if _, ok := registry[addr]; ok {
		return true
	}
	return unimplemented[addr]
}

// ecrecover is precompile 1: recovers the signer address from a signature.
// This is the Open Question (d) placeholder. It performs a secp256k1
// recovery through crypto.RecoverSender, but passes input[63] to it as v
// unchanged and returns this chain's derived address, so it does not
// reproduce Ethereum's ECRECOVER calldata convention or result, and must
// not be treated as a security boundary for any bridge.
type ecrecover struct{}

func (ecrecover) RequiredGas([]byte) uint64 { return 3000 }

func (ecrecover) Run(input []byte) ([]byte, error) {
	if len(input) < 128 {
		return nil, kerrors.ErrInvalidMemoryAccess
	}
	var digest types.Hash
	copy(digest[:], input[0:32])
	var r, s [32]byte
	copy(r[:], input[64:96])
	copy(s[:], input[96:128])
	v := input[63]

	addr, err := crypto.RecoverSender(digest, r, s, v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 32)
	copy(out[32-types.AddressCoreLength:], addr.EVM()[:])
	return out, nil
}

// sha256hash is precompile 2.
type sha256hash struct{}

func (sha256hash) RequiredGas(input []byte) uint64 {
	return 60 + 12*uint64((len(input)+31)/32)
}

func (sha256hash) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// ripemd160Shaped is precompile 3: RIPEMD-160 shaped output (20 bytes,
// right-aligned in a 32-byte word) but backed by truncated SHA3-256, since
// no ripemd160 dependency exists anywhere in the retrieval pack.
type ripemd160Shaped struct{}

func (ripemd160Shaped) RequiredGas(input []byte) uint64 {
	return 600 + 120*uint64((len(input)+31)/32)
}

func (ripemd160Shaped) Run(input []byte) ([]byte, error) {
	h := sha3.Sum256(input)
	out := make([]byte, 32)
	copy(out[12:], h[:20])
	return out, nil
}

// identity is precompile 4: returns its input unchanged.
type identity struct{}

func (identity) RequiredGas(input []byte) uint64 {
	return 15 + 3*uint64((len(input)+31)/32)
}

func (identity) Run(input []byte) ([]byte, error) {
	return append([]byte(nil), input...), nil
}

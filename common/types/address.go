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

package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// AddressLength is the width in bytes of a checksummed Kortana address:
// a 20-byte core plus a 4-byte checksum.
const AddressLength = 24

// AddressCoreLength is the width of the core (non-checksum) portion, and
// also the width of a bare EVM-style address.
const AddressCoreLength = 20

// Address is a 24-byte checksummed account address:
// SHA3-256(pubkey)[0:20] concatenated with Keccak256(core)[0:4].
//
// The all-zero address is reserved for contract deployment and always
// passes checksum validation regardless of its (absent) checksum.
type Address [AddressLength]byte

// ZeroAddress is the reserved contract-deployment address.
var ZeroAddress = Address{}

// AddressFromPubkey derives a checksummed address from a public key.
func AddressFromPubkey(pubkey []byte) Address {
	digest := sha3.Sum256(pubkey)

	var addr Address
	copy(addr[:AddressCoreLength], digest[:AddressCoreLength])
	checksum := addressChecksum(addr[:AddressCoreLength])
	copy(addr[AddressCoreLength:], checksum[:])
	return addr
}

// AddressFromBytes validates and wraps a 24-byte address. The all-zero
// address is accepted unconditionally.
func AddressFromBytes(b [AddressLength]byte) (Address, error) {
	if b == (Address{}) {
		return Address{}, nil
	}
	want := addressChecksum(b[:AddressCoreLength])
	if !equal4(b[AddressCoreLength:], want[:]) {
		return Address{}, fmt.Errorf("types: %w", errInvalidChecksum)
	}
	return Address(b), nil
}

// AddressFromEVM rehydrates a 20-byte EVM-style address into the 24-byte
// checksummed form by recomputing its checksum.
func AddressFromEVM(evm [AddressCoreLength]byte) Address {
	var addr Address
	copy(addr[:AddressCoreLength], evm[:])
	checksum := addressChecksum(evm[:])
	copy(addr[AddressCoreLength:], checksum[:])
	return addr
}

// EVM returns the 20-byte core, dropping the checksum — the form used by
// the EVM subset's address space.
func (a Address) EVM() [AddressCoreLength]byte {
	var evm [AddressCoreLength]byte
	copy(evm[:], a[:AddressCoreLength])
	return evm
}

// EVMWord left-pads the 20-byte core into a 32-byte word, as the EVM's
// stack represents addresses.
func (a Address) EVMWord() [32]byte {
	var word [32]byte
	copy(word[12:], a[:AddressCoreLength])
	return word
}

// IsZero reports whether a is the reserved deployment address.
func (a Address) IsZero() bool { return a == Address{} }

// Bytes returns a copy of the address's 24 bytes.
func (a Address) Bytes() []byte { return append([]byte(nil), a[:]...) }

// Hex returns the "kn:0x"-prefixed lowercase hex encoding.
func (a Address) Hex() string { return "kn:0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := AddressFromHex(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AddressFromHex parses "kn:0x...", "kn...", "0x...", or bare hex, accepting
// either the 20-byte EVM form or the full 24-byte checksummed form.
func AddressFromHex(s string) (Address, error) {
	s = strings.TrimPrefix(s, "kn:")
	s = strings.TrimPrefix(s, "kn")
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")

	raw, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("types: invalid address hex: %w", err)
	}

	switch len(raw) {
	case AddressCoreLength:
		var evm [AddressCoreLength]byte
		copy(evm[:], raw)
		return AddressFromEVM(evm), nil
	case AddressLength:
		var b [AddressLength]byte
		copy(b[:], raw)
		return AddressFromBytes(b)
	default:
		return Address{}, fmt.Errorf("types: invalid address length %d, want %d or %d", len(raw), AddressCoreLength, AddressLength)
	}
}

func addressChecksum(core []byte) [4]byte {
	digest := keccak256(core)
	var checksum [4]byte
	copy(checksum[:], digest[:4])
	return checksum
}

func keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func equal4(a, b []byte) bool {
	if len(a) != 4 || len(b) != 4 {
		return false
	}
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2] && a[3] == b[3]
}

var errInvalidChecksum = fmt.Errorf("invalid address checksum")

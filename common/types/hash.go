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

// Package types defines the wire-level value types shared across the node:
// the 32-byte digest and the 24-byte checksummed account address.
package types

import (
	"encoding/hex"
	"fmt"
)

// HashLength is the width in bytes of a digest produced by either of the
// node's two hash domains (Keccak-256 and SHA3-256).
const HashLength = 32

// Hash is a 32-byte digest. The same type represents both the transaction
// hash domain (Keccak-256 of the unsigned encoding) and the trie/address domain
// (SHA3-256); callers must not mix the two for the same artifact.
type Hash [HashLength]byte

// BytesToHash right-aligns b within a Hash, truncating from the left if b
// is longer than HashLength.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Bytes returns a copy of the hash's bytes.
func (h Hash) Bytes() []byte { return h[:] }

// IsZero reports whether every byte of the hash is zero.
func (h Hash) IsZero() bool { return h == Hash{} }

// Hex returns the "0x"-prefixed lowercase hex encoding.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	decoded, err := decodeHexPrefixed(string(text))
	if err != nil {
		return err
	}
	if len(decoded) != HashLength {
		return fmt.Errorf("types: invalid hash length %d, want %d", len(decoded), HashLength)
	}
	copy(h[:], decoded)
	return nil
}

// HexToHash parses a "0x"-prefixed (or bare) hex string into a Hash.
func HexToHash(s string) (Hash, error) {
	var h Hash
	if err := h.UnmarshalText([]byte(s)); err != nil {
		return Hash{}, err
	}
	return h, nil
}

func decodeHexPrefixed(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

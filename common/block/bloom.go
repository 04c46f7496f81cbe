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

package block

import "github.com/kortanachain/kortana/common/crypto"

const (
	// BloomByteLength is the number of bytes in a receipt log bloom filter.
	BloomByteLength = 256
	// BloomBitLength is the number of bits in a receipt log bloom filter.
	BloomBitLength = BloomByteLength * 8
)

// Bloom is a 2048-bit log bloom filter over a receipt's emitted log
// addresses and topics, letting a light client rule out a receipt without
// fetching its full log list.
type Bloom [BloomByteLength]byte

// BytesToBloom right-aligns b into a Bloom, truncating from the left if b
// is longer than BloomByteLength.
func BytesToBloom(b []byte) Bloom {
	var bloom Bloom
	bloom.SetBytes(b)
	return bloom
}

// SetBytes right-aligns b's bytes into the receiver, matching the teacher's
// big-endian, left-padded convention for fixed-size byte arrays.
func (b *Bloom) SetBytes(d []byte) {
	if len(d) > BloomByteLength {
		d = d[len(d)-BloomByteLength:]
	}
	copy(b[BloomByteLength-len(d):], d)
}

// Bytes returns the bloom filter's raw bytes.
func (b Bloom) Bytes() []byte {
	return b[:]
}

// Add ORs the three-bit index derived from data into the bloom filter, the
// standard Ethereum-style bloom construction: each of the low 11 bits of
// three non-overlapping 2-byte windows of Keccak256(data) sets one bit.
func (b *Bloom) Add(data []byte) {
	h := crypto.Keccak256(data)
	for i := 0; i < 6; i += 2 {
		bit := (uint(h[i])<<8 | uint(h[i+1])) & (BloomBitLength - 1)
		byteIdx := BloomByteLength - 1 - bit/8
		b[byteIdx] |= 1 << (bit % 8)
	}
}

// Test reports whether every bit data would set is already set — a
// possible (not certain) membership check.
func (b Bloom) Test(data []byte) bool {
	var probe Bloom
	probe.Add(data)
	for i := range b {
		if probe[i]&b[i] != probe[i] {
			return false
		}
	}
	return true
}

// LogsBloom computes the bloom filter covering every address and topic in
// logs, for embedding into a Receipt.
func LogsBloom(logs []Log) Bloom {
	var b Bloom
	for _, l := range logs {
		b.Add(l.Address.Bytes())
		for _, t := range l.Topics {
			b.Add(t.Bytes())
		}
	}
	return b
}

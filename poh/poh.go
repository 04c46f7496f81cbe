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

// Package poh implements the optional Proof-of-History hash-chain ticker,
// grounded on original_source's kortana-blockchain-rust PohGenerator: a
// verifiable delay in the form of a repeatedly re-hashed value, letting a
// header's poh_hash/poh_sequence fields attest to elapsed ticks between
// blocks. It is an adjunct, not a consensus requirement — a node that never
// configures a Generator produces headers with a zero PohHash, exactly as
// spec §1 allows.
package poh

import (
	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/types"
)

// Entry is one link in the hash chain: the hash produced by this tick and
// its position since the chain's genesis seed.
type Entry struct {
	Hash     types.Hash
	Sequence uint64
}

// Generator advances a SHA3-256 hash chain one link at a time. It is not
// safe for concurrent use; callers serialize Tick the same way the
// pipeline serializes every other mutation of block-production state.
type Generator struct {
	lastHash types.Hash
	sequence uint64
}

// NewGenerator seeds a chain from a genesis seed, matching
// PohGenerator::new's SHA3-256(seed) starting hash.
func NewGenerator(seed []byte) *Generator {
	return &Generator{lastHash: crypto.SHA3_256(seed)}
}

// Tick advances the chain by one link. With txHash nil it reproduces
// PohGenerator::tick (SHA3-256 of the last hash alone); with a non-nil
// txHash it reproduces hash_transaction, folding a transaction's hash
// into the chain so a PoH sequence can also attest to when a transaction
// was observed relative to other ticks.
func (g *Generator) Tick(txHash []byte) Entry {
	if len(txHash) == 0 {
		g.lastHash = crypto.SHA3_256(g.lastHash.Bytes())
	} else {
		g.lastHash = crypto.SHA3_256(g.lastHash.Bytes(), txHash)
	}
	g.sequence++
	return Entry{Hash: g.lastHash, Sequence: g.sequence}
}

// Verify replays a sequence of ticks from startHash, reporting whether
// each entry's hash is exactly SHA3-256 of the one before it. It only
// verifies the plain tick chain (no transaction folding), matching the
// Rust verify function's own documented limitation.
func Verify(startHash types.Hash, entries []Entry) bool {
	current := startHash
	for _, entry := range entries {
		current = crypto.SHA3_256(current.Bytes())
		if current != entry.Hash {
			return false
		}
	}
	return true
}

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

package poh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kortanachain/kortana/common/crypto"
)

func TestGeneratorTickAdvancesSequenceAndHash(t *testing.T) {
	gen := NewGenerator([]byte("genesis"))

	tick1 := gen.Tick(nil)
	tick2 := gen.Tick(nil)

	require.NotEqual(t, tick1.Hash, tick2.Hash)
	require.Equal(t, uint64(1), tick1.Sequence)
	require.Equal(t, uint64(2), tick2.Sequence)
}

func TestGeneratorTickWithTransactionDiffersFromPlainTick(t *testing.T) {
	gen := NewGenerator([]byte("genesis"))
	plain := NewGenerator([]byte("genesis"))

	withTx := gen.Tick([]byte("some tx hash"))
	bare := plain.Tick(nil)

	require.NotEqual(t, withTx.Hash, bare.Hash)
}

func TestVerifyAcceptsGenuineChain(t *testing.T) {
	seed := []byte("genesis")
	start := crypto.SHA3_256(seed)
	gen := NewGenerator(seed)

	var entries []Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, gen.Tick(nil))
	}

	require.True(t, Verify(start, entries))
}

func TestVerifyRejectsTamperedEntry(t *testing.T) {
	seed := []byte("genesis")
	start := crypto.SHA3_256(seed)
	gen := NewGenerator(seed)

	entries := []Entry{gen.Tick(nil), gen.Tick(nil)}
	entries[1].Hash[0] ^= 0xFF

	require.False(t, Verify(start, entries))
}

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

// Package gossip declares the P2P transport contract the core consumes but
// never implements: the gossip layer itself is an external collaborator
// per spec §1. This package carries the narrow Network interface plus an
// in-process loopback implementation for single-node topologies and tests.
package gossip

import (
	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
)

// Commit is the wire shape of a BFT PreCommit/Commit vote, the fifth typed
// gossip message spec §6 names.
type Commit struct {
	BlockHash types.Hash
	Height    uint64
	Round     uint32
	Validator types.Address
	Signature []byte
}

// SyncRequest asks a peer for the canonical blocks in [Start, End].
type SyncRequest struct {
	Start uint64
	End   uint64
}

// SyncResponse answers a SyncRequest with the blocks a peer has for that
// range, in ascending height order.
type SyncResponse struct {
	Blocks []*block.Block
}

// Network is the gossip transport the core depends on: it pushes NewBlock
// and NewTransaction outbound, and consumes all five message kinds
// inbound. Never blocks the caller — an implementation backed by a real
// transport must drop or spill to a bounded queue under backpressure,
// matching spec §5's "gossip handlers must not block" rule.
type Network interface {
	// BroadcastBlock announces a newly produced or newly accepted block.
	BroadcastBlock(blk *block.Block)
	// BroadcastTransaction announces a transaction newly admitted to the
	// local mempool.
	BroadcastTransaction(tx *transaction.Transaction)
	// RequestSync asks peers for a height range during catch-up.
	RequestSync(req SyncRequest)
	// BroadcastCommit announces a BFT PreCommit/Commit vote this node cast.
	BroadcastCommit(c Commit)

	// Inbound returns the channel the pipeline's ingress task drains.
	// Every inbound message arrives on this single channel, tagged by its
	// concrete type (*block.Block, *transaction.Transaction, SyncRequest,
	// SyncResponse, Commit) so one consumer goroutine can type-switch on
	// it, mirroring the single gossip-ingress-consumer task spec §5 names.
	Inbound() <-chan interface{}

	// Close releases the network's resources. Further sends after Close
	// are no-ops.
	Close()
}

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

package gossip

import (
	"sync"

	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/log"
)

// loopbackQueueSize bounds the inbound channel: a slow consumer sees
// sends start dropping rather than the network blocking, matching spec
// §5's backpressure rule for a single-node topology.
const loopbackQueueSize = 1024

// Loopback is an in-process Network: every broadcast it's given is also
// delivered to its own Inbound channel, the shape a single-node or
// same-process multi-node test topology needs without a real transport.
type Loopback struct {
	mu     sync.Mutex
	closed bool
	inbound chan interface{}
}

// NewLoopback returns a Network that echoes every outbound send back to
// Inbound().
func NewLoopback() *Loopback {
	return &Loopback{inbound: make(chan interface{}, loopbackQueueSize)}
}

func (l *Loopback) deliver(msg interface{}) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return
	}
	select {
	case l.inbound <- msg:
	default:
		log.Warn("gossip: loopback inbound queue full, dropping message")
	}
}

// BroadcastBlock implements Network.
func (l *Loopback) BroadcastBlock(blk *block.Block) { l.deliver(blk) }

// BroadcastTransaction implements Network.
func (l *Loopback) BroadcastTransaction(tx *transaction.Transaction) { l.deliver(tx) }

// RequestSync implements Network.
func (l *Loopback) RequestSync(req SyncRequest) { l.deliver(req) }

// BroadcastCommit implements Network.
func (l *Loopback) BroadcastCommit(c Commit) { l.deliver(c) }

// Inbound implements Network.
func (l *Loopback) Inbound() <-chan interface{} { return l.inbound }

// Close implements Network.
func (l *Loopback) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.inbound)
}

var _ Network = (*Loopback)(nil)

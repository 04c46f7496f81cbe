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

// Package block defines the header, block and receipt types shared by the
// transition processor, consensus engine and storage layer.
package block

import (
	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/encoding"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
)

// crypto256 is the header/receipt/Merkle hash domain: Keccak-256, kept
// separate from the trie's SHA3-256 domain per the dual-hash-domain split
// used throughout this module.
func crypto256(data []byte) types.Hash {
	return crypto.Keccak256(data)
}

// Header carries everything that commits to a block's identity. Field order
// here is the same order hashed into the header hash and the same order the
// wire format serializes in — changing it changes consensus.
type Header struct {
	Version          uint32
	Height           uint64
	Slot             uint64
	Timestamp        uint64
	ParentHash       types.Hash
	StateRoot        types.Hash
	TransactionsRoot types.Hash
	ReceiptsRoot     types.Hash
	PohHash          types.Hash // zero when PoH ticking is disabled
	PohSequence      uint64
	Proposer         types.Address
	GasUsed          uint64
	GasLimit         uint64
	BaseFee          *uint256.Int
	VRFOutput        types.Hash
}

// Hash returns the header's domain-separated commitment: a Keccak-256 over
// every field in struct-declaration order, the same order §3 of the
// transition model fixes as the header's canonical encoding.
func (h *Header) Hash() types.Hash {
	return crypto256(h.encode())
}

func (h *Header) encode() []byte {
	var buf []byte
	buf = encoding.EncodeUint64(buf, uint64(h.Version))
	buf = encoding.EncodeUint64(buf, h.Height)
	buf = encoding.EncodeUint64(buf, h.Slot)
	buf = encoding.EncodeUint64(buf, h.Timestamp)
	buf = encoding.EncodeBytes(buf, h.ParentHash.Bytes())
	buf = encoding.EncodeBytes(buf, h.StateRoot.Bytes())
	buf = encoding.EncodeBytes(buf, h.TransactionsRoot.Bytes())
	buf = encoding.EncodeBytes(buf, h.ReceiptsRoot.Bytes())
	buf = encoding.EncodeBytes(buf, h.PohHash.Bytes())
	buf = encoding.EncodeUint64(buf, h.PohSequence)
	buf = encoding.EncodeBytes(buf, h.Proposer.Bytes())
	buf = encoding.EncodeUint64(buf, h.GasUsed)
	buf = encoding.EncodeUint64(buf, h.GasLimit)
	if h.BaseFee != nil {
		buf = encoding.EncodeBytes(buf, h.BaseFee.Bytes())
	} else {
		buf = encoding.EncodeBytes(buf, nil)
	}
	buf = encoding.EncodeBytes(buf, h.VRFOutput.Bytes())
	return encoding.EncodeList(nil, buf)
}

// Block is a header plus its ordered transactions and the proposer's
// signature over the header hash.
type Block struct {
	Header       *Header
	Transactions []*transaction.Transaction
	Signature    []byte
}

// Hash returns the block's identity: its header hash.
func (b *Block) Hash() types.Hash {
	return b.Header.Hash()
}

// ComputeTransactionsRoot returns the binary Merkle root over the
// transaction hashes, duplicating the last leaf on an odd count at every
// level — the same rule ReceiptsRoot uses.
func ComputeTransactionsRoot(txs []*transaction.Transaction) types.Hash {
	leaves := make([]types.Hash, len(txs))
	for i, tx := range txs {
		leaves[i] = tx.Hash()
	}
	return merkleRoot(leaves)
}

// Receipt records the outcome of applying one transaction: whether it
// succeeded, how much gas it consumed, and any logs it emitted.
type Receipt struct {
	TxHash            types.Hash
	Status            uint64 // 1 = success, 0 = failure
	GasUsed           uint64
	CumulativeGasUsed uint64
	ContractAddress   types.Address // set only on a successful deployment
	Logs              []Log
	Bloom             Bloom
}

// Log is an execution event emitted by LOG0-LOG4 and recorded on the
// receipt that produced it.
type Log struct {
	Address types.Address
	Topics  []types.Hash
	Data    []byte
}

// Hash returns a domain-separated commitment over the receipt's outcome
// fields, used as a Merkle leaf in ComputeReceiptsRoot.
func (r *Receipt) Hash() types.Hash {
	var buf []byte
	buf = encoding.EncodeBytes(buf, r.TxHash.Bytes())
	buf = encoding.EncodeUint64(buf, r.Status)
	buf = encoding.EncodeUint64(buf, r.GasUsed)
	buf = encoding.EncodeUint64(buf, r.CumulativeGasUsed)
	buf = encoding.EncodeBytes(buf, r.ContractAddress.Bytes())
	buf = encoding.EncodeBytes(buf, r.Bloom.Bytes())
	return crypto256(encoding.EncodeList(nil, buf))
}

// ComputeReceiptsRoot returns the binary Merkle root over receipt hashes.
func ComputeReceiptsRoot(receipts []*Receipt) types.Hash {
	leaves := make([]types.Hash, len(receipts))
	for i, r := range receipts {
		leaves[i] = r.Hash()
	}
	return merkleRoot(leaves)
}

// merkleRoot folds leaves pairwise, duplicating the final leaf at any level
// with an odd number of nodes, until a single root hash remains. An empty
// leaf set roots to the zero hash.
func merkleRoot(leaves []types.Hash) types.Hash {
	if len(leaves) == 0 {
		return types.Hash{}
	}
	level := leaves
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]types.Hash, len(level)/2)
		for i := 0; i < len(next); i++ {
			next[i] = crypto256(append(append([]byte(nil), level[2*i].Bytes()...), level[2*i+1].Bytes()...))
		}
		level = next
	}
	return level[0]
}

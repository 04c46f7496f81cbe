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

package transaction

import (
	"sync"

	"github.com/holiman/uint256"
)

// TxPool provides pooled Transaction objects to reduce allocations during
// high-throughput ingress decoding.
var TxPool = &sync.Pool{
	New: func() interface{} {
		return &Transaction{
			Value:    new(uint256.Int),
			GasPrice: new(uint256.Int),
		}
	},
}

// GetPooledTx gets a Transaction from the pool.
func GetPooledTx() *Transaction {
	return TxPool.Get().(*Transaction)
}

// PutPooledTx returns a Transaction to the pool after clearing it.
func PutPooledTx(tx *Transaction) {
	if tx == nil {
		return
	}
	tx.Nonce = 0
	tx.From = [24]byte{}
	tx.To = [24]byte{}
	tx.Value.Clear()
	tx.GasLimit = 0
	tx.GasPrice.Clear()
	tx.GasTipCap = nil
	tx.Data = nil
	tx.VMType = VMTypeNone
	tx.ChainID = 0
	tx.R, tx.S = [32]byte{}, [32]byte{}
	tx.V = 0
	tx.cachedHash = nil
	TxPool.Put(tx)
}

// Uint256Pool reduces per-transaction allocations for uint256 scratch values.
var Uint256Pool = &sync.Pool{
	New: func() interface{} {
		return new(uint256.Int)
	},
}

// GetUint256 gets a uint256.Int from the pool.
func GetUint256() *uint256.Int {
	return Uint256Pool.Get().(*uint256.Int)
}

// PutUint256 returns a uint256.Int to the pool.
func PutUint256(v *uint256.Int) {
	if v != nil {
		v.Clear()
		Uint256Pool.Put(v)
	}
}

// ByteBufferPool holds temporary byte buffers used during serialization.
var ByteBufferPool = &sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 256)
		return &b
	},
}

// GetByteBuffer gets a byte buffer from the pool.
func GetByteBuffer() *[]byte {
	return ByteBufferPool.Get().(*[]byte)
}

// PutByteBuffer returns a byte buffer to the pool.
func PutByteBuffer(b *[]byte) {
	if b != nil {
		*b = (*b)[:0]
		ByteBufferPool.Put(b)
	}
}

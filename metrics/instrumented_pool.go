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

package metrics

import (
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/internal/txspool"
)

// InstrumentedPool wraps a *txspool.Pool, recording admission outcomes and
// the pool's current size without touching txspool itself.
type InstrumentedPool struct {
	*txspool.Pool
	collectors *Collectors
}

// WrapPool returns pool instrumented with collectors.
func WrapPool(pool *txspool.Pool, collectors *Collectors) *InstrumentedPool {
	return &InstrumentedPool{Pool: pool, collectors: collectors}
}

// Add delegates to the wrapped pool, recording a rejection reason on
// failure and the pool's new size either way.
func (w *InstrumentedPool) Add(tx *transaction.Transaction) (bool, error) {
	admitted, err := w.Pool.Add(tx)
	if err != nil {
		w.collectors.ObserveMempoolRejection(err.Error())
	}
	w.collectors.SetMempoolSize(w.Pool.Len())
	return admitted, err
}

// Remove delegates to the wrapped pool and refreshes the size gauge.
func (w *InstrumentedPool) Remove(hash types.Hash) {
	w.Pool.Remove(hash)
	w.collectors.SetMempoolSize(w.Pool.Len())
}

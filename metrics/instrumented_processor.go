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
	"time"

	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/processor"
)

// InstrumentedProcessor wraps a *processor.Processor, timing each
// transaction application and recording its outcome, without touching the
// processor package.
type InstrumentedProcessor struct {
	*processor.Processor
	collectors *Collectors
}

// WrapProcessor returns p instrumented with collectors.
func WrapProcessor(p *processor.Processor, collectors *Collectors) *InstrumentedProcessor {
	return &InstrumentedProcessor{Processor: p, collectors: collectors}
}

// ProcessTransaction delegates to the wrapped processor, timing the call
// and recording the receipt's status and gas usage on success.
func (w *InstrumentedProcessor) ProcessTransaction(tx *transaction.Transaction, header *block.Header) (*block.Receipt, error) {
	start := time.Now()
	receipt, err := w.Processor.ProcessTransaction(tx, header)
	if err != nil {
		return receipt, err
	}
	w.collectors.ObserveTransaction(receipt.Status, receipt.GasUsed, time.Since(start))
	return receipt, nil
}

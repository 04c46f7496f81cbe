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
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/consensus"
)

// InstrumentedEngine wraps a *consensus.Engine, recording metrics around
// the calls the pipeline makes without changing consensus package code at
// all — the same wrap-don't-modify shape the teacher uses for its
// consensus engine instrumentation.
type InstrumentedEngine struct {
	*consensus.Engine
	collectors *Collectors
}

// WrapEngine returns e instrumented with collectors. Passing a nil
// collectors still works: every Collectors method is a no-op on nil.
func WrapEngine(e *consensus.Engine, collectors *Collectors) *InstrumentedEngine {
	return &InstrumentedEngine{Engine: e, collectors: collectors}
}

// ProcessVote delegates to the wrapped engine and records the vote.
func (w *InstrumentedEngine) ProcessVote(blockHash types.Hash, validator types.Address, signature []byte) {
	w.Engine.ProcessVote(blockHash, validator, signature)
	w.collectors.ObserveVote()
	w.collectors.SetFinalizedHeight(w.Engine.FinalizedHeight)
}

// AdvanceEpoch delegates to the wrapped engine and refreshes the active
// validator count gauge afterward. Jailing through the embedded engine's
// Slash also deactivates validators; the gauge is not refreshed for that.
func (w *InstrumentedEngine) AdvanceEpoch(height uint64) {
	w.Engine.AdvanceEpoch(height)
	active := 0
	for _, v := range w.Engine.Validators {
		if v.IsActive {
			active++
		}
	}
	w.collectors.SetActiveValidators(active)
}

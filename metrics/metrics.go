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

// Package metrics collects the node's Prometheus instrumentation.
// Components are never modified to call into this package directly;
// instead each hot path gets a thin Instrumented* wrapper (see
// instrumented_engine.go, instrumented_pool.go, instrumented_processor.go)
// that records observations around a delegated call, the same
// wrap-don't-modify shape the teacher's consensus engine wrappers use.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors bundles every metric the node exports. A nil *Collectors is
// valid everywhere an Instrumented* wrapper accepts one: every recording
// method below is a no-op on a nil receiver, so metrics can be wired in
// only when conf.MetricsConfig.Enable is true without branching at every
// call site.
type Collectors struct {
	TransactionsProcessed *prometheus.CounterVec
	GasUsedTotal          prometheus.Counter
	BlocksProduced        prometheus.Counter
	BlockProductionTime   prometheus.Histogram
	TransactionExecTime   prometheus.Histogram

	MempoolSize      prometheus.Gauge
	MempoolRejected  *prometheus.CounterVec

	ValidatorActiveCount prometheus.Gauge
	FinalizedHeight      prometheus.Gauge
	VotesProcessed       prometheus.Counter
}

// NewCollectors registers every collector against reg and returns the
// bundle. Passing a fresh prometheus.NewRegistry() keeps tests isolated
// from the global default registry. cmd/kortana does not construct a
// Collectors.
func NewCollectors(reg *prometheus.Registry) *Collectors {
	c := &Collectors{
		TransactionsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kortana",
			Subsystem: "processor",
			Name:      "transactions_processed_total",
			Help:      "Transactions processed, labeled by outcome status.",
		}, []string{"status"}),
		GasUsedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kortana",
			Subsystem: "processor",
			Name:      "gas_used_total",
			Help:      "Cumulative gas consumed across all processed transactions.",
		}),
		BlocksProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kortana",
			Subsystem: "pipeline",
			Name:      "blocks_produced_total",
			Help:      "Blocks this node has proposed.",
		}),
		BlockProductionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kortana",
			Subsystem: "pipeline",
			Name:      "block_production_seconds",
			Help:      "Wall-clock time spent assembling and committing a block.",
			Buckets:   prometheus.DefBuckets,
		}),
		TransactionExecTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kortana",
			Subsystem: "processor",
			Name:      "transaction_exec_seconds",
			Help:      "Time spent applying a single transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
		MempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kortana",
			Subsystem: "mempool",
			Name:      "size",
			Help:      "Transactions currently pending in the mempool.",
		}),
		MempoolRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kortana",
			Subsystem: "mempool",
			Name:      "rejected_total",
			Help:      "Transactions rejected on admission, labeled by reason.",
		}, []string{"reason"}),
		ValidatorActiveCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kortana",
			Subsystem: "consensus",
			Name:      "active_validators",
			Help:      "Validators currently active and unjailed.",
		}),
		FinalizedHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kortana",
			Subsystem: "consensus",
			Name:      "finalized_height",
			Help:      "Highest block height this node considers finalized.",
		}),
		VotesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kortana",
			Subsystem: "consensus",
			Name:      "votes_processed_total",
			Help:      "BFT votes this node has recorded.",
		}),
	}

	reg.MustRegister(
		c.TransactionsProcessed,
		c.GasUsedTotal,
		c.BlocksProduced,
		c.BlockProductionTime,
		c.TransactionExecTime,
		c.MempoolSize,
		c.MempoolRejected,
		c.ValidatorActiveCount,
		c.FinalizedHeight,
		c.VotesProcessed,
	)
	return c
}

// ObserveTransaction records one transaction's outcome and execution time.
func (c *Collectors) ObserveTransaction(status uint64, gasUsed uint64, dur time.Duration) {
	if c == nil {
		return
	}
	c.TransactionsProcessed.WithLabelValues(strconv.FormatUint(status, 10)).Inc()
	c.GasUsedTotal.Add(float64(gasUsed))
	c.TransactionExecTime.Observe(dur.Seconds())
}

// ObserveBlockProduced records one successfully produced block.
func (c *Collectors) ObserveBlockProduced(dur time.Duration) {
	if c == nil {
		return
	}
	c.BlocksProduced.Inc()
	c.BlockProductionTime.Observe(dur.Seconds())
}

// ObserveMempoolRejection records an admission rejection, labeled by its
// error reason (kerrors.ErrAlreadyKnown, kerrors.ErrMempoolFull, ...).
func (c *Collectors) ObserveMempoolRejection(reason string) {
	if c == nil {
		return
	}
	c.MempoolRejected.WithLabelValues(reason).Inc()
}

// SetMempoolSize reports the mempool's current length.
func (c *Collectors) SetMempoolSize(n int) {
	if c == nil {
		return
	}
	c.MempoolSize.Set(float64(n))
}

// SetActiveValidators reports the consensus engine's current active set size.
func (c *Collectors) SetActiveValidators(n int) {
	if c == nil {
		return
	}
	c.ValidatorActiveCount.Set(float64(n))
}

// SetFinalizedHeight reports the consensus engine's finalized height.
func (c *Collectors) SetFinalizedHeight(height uint64) {
	if c == nil {
		return
	}
	c.FinalizedHeight.Set(float64(height))
}

// ObserveVote records one BFT vote processed.
func (c *Collectors) ObserveVote() {
	if c == nil {
		return
	}
	c.VotesProcessed.Inc()
}

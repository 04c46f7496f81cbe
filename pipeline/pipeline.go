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

// Package pipeline wires state, the mempool, the fee market and the
// consensus engine behind one mutex-protected context object, driven by
// an errgroup running the node's cooperative task set: a block-production
// ticker, a gossip ingress consumer, a sync probe, and the RPC read
// surface. CPU-bound phases (transaction execution, hashing, trie writes)
// always run synchronously inside the single mutator goroutine's critical
// section; nothing yields mid-phase.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"github.com/kortanachain/kortana/common/block"
	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/transaction"
	"github.com/kortanachain/kortana/common/types"
	"github.com/kortanachain/kortana/conf"
	"github.com/kortanachain/kortana/consensus"
	"github.com/kortanachain/kortana/feemarket"
	"github.com/kortanachain/kortana/gossip"
	"github.com/kortanachain/kortana/internal/txspool"
	"github.com/kortanachain/kortana/log"
	"github.com/kortanachain/kortana/modules/state"
	"github.com/kortanachain/kortana/poh"
	"github.com/kortanachain/kortana/processor"
	"github.com/kortanachain/kortana/rpcapi"
	"github.com/kortanachain/kortana/staking"
	"github.com/kortanachain/kortana/storage"
)

// syncProbeInterval is how often the sync-probe task checks whether this
// node's tip trails the consensus engine's reported finalized height.
const syncProbeInterval = 5 * time.Second

// Pipeline is the node's single mutator of state, the mempool, and the
// consensus engine's validator set, wrapped by one mutex so the four
// cooperative tasks in Run never interleave their critical sections.
type Pipeline struct {
	mu sync.Mutex

	cfg       conf.ChainConfig
	state     *state.StateDB
	pool      *txspool.Pool
	staking   *staking.Store
	processor *processor.Processor
	engine    *consensus.Engine
	store     storage.Store
	network   gossip.Network
	poh       *poh.Generator

	signer   *crypto.PrivateKey
	selfAddr types.Address

	height     uint64
	parentHash types.Hash
	baseFee    *uint256.Int

	api *rpcapi.API
}

// New builds a pipeline over a freshly created state database and mempool,
// bound to network and store, with the given initial validator set. signer
// may be nil for a read-only/follower node that never proposes blocks.
func New(cfg conf.ChainConfig, validators []*consensus.ValidatorInfo, network gossip.Network, store storage.Store, signer *crypto.PrivateKey) *Pipeline {
	db := state.New()
	stakingStore := staking.New(cfg.UnbondingPeriodBlocks)
	baseFee := uint256.NewInt(cfg.MinGasPrice)
	proc := processor.New(db, stakingStore, baseFee)
	engine := consensus.NewEngine(validators)
	pool := txspool.New(cfg.MempoolMaxSize, processor.NewLedgerAdapter(db))

	p := &Pipeline{
		cfg:       cfg,
		state:     db,
		pool:      pool,
		staking:   stakingStore,
		processor: proc,
		engine:    engine,
		store:     store,
		network:   network,
		baseFee:   baseFee,
	}
	if signer != nil {
		p.signer = signer
		p.selfAddr = signer.Address()
	}
	p.api = rpcapi.New(db, pool, store, engine, func() *uint256.Int { return p.currentBaseFee() })
	return p
}

// WithPoH attaches a Proof-of-History ticker; produced blocks then carry a
// non-zero PohHash/PohSequence. Without this call both fields stay zero.
func (p *Pipeline) WithPoH(gen *poh.Generator) *Pipeline {
	p.poh = gen
	return p
}

// API returns the read-method set an RPC transport adapter would register.
func (p *Pipeline) API() *rpcapi.API {
	return p.api
}

func (p *Pipeline) currentBaseFee() *uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.baseFee
}

// Run starts the four cooperative tasks and blocks until one returns an
// error or ctx is canceled, in which case every task is asked to stop and
// Run returns the first non-context-canceled error, if any.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.blockProductionLoop(ctx) })
	g.Go(func() error { return p.gossipIngressLoop(ctx) })
	g.Go(func() error { return p.syncProbeLoop(ctx) })
	g.Go(func() error { return p.rpcReadLoop(ctx) })

	return g.Wait()
}

// blockProductionLoop ticks once per configured block time, producing a
// block whenever this node is the elected leader for the current slot.
func (p *Pipeline) blockProductionLoop(ctx context.Context) error {
	if p.signer == nil {
		<-ctx.Done()
		return nil
	}

	interval := time.Duration(p.cfg.BlockTimeSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var slot uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			slot++
			leader, ok := p.engine.Leader(slot)
			if !ok || leader != p.selfAddr {
				continue
			}
			blk, err := p.produceBlock(slot)
			if err != nil {
				log.Warn("pipeline: block production failed", "slot", slot, "err", err)
				continue
			}
			p.network.BroadcastBlock(blk)
		}
	}
}

// produceBlock selects pending transactions, executes them, and commits
// the resulting block, all under the pipeline mutex so no ingress handler
// can observe a half-applied block.
func (p *Pipeline) produceBlock(slot uint64) (*block.Block, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gasLimit := p.cfg.GasLimitPerBlock
	txs := p.pool.Select(gasLimit)

	header := &block.Header{
		Version:    1,
		Height:     p.height + 1,
		Slot:       slot,
		Timestamp:  uint64(p.height + 1), // monotonic logical clock; a real node stamps wall-clock time here
		ParentHash: p.parentHash,
		Proposer:   p.selfAddr,
		GasLimit:   gasLimit,
		BaseFee:    p.baseFee,
		VRFOutput:  crypto.Keccak256(p.signer.Bytes(), encodeUint64(slot)),
	}
	if p.poh != nil {
		entry := p.poh.Tick(nil)
		header.PohHash = entry.Hash
		header.PohSequence = entry.Sequence
	}

	receipts := make([]*block.Receipt, 0, len(txs))
	var gasUsed uint64
	var cumulativeGas uint64
	included := txs[:0]
	for _, tx := range txs {
		if !feemarket.ValidateGasPrice(tx.GasPrice, p.baseFee) {
			continue
		}
		receipt, err := p.processor.ProcessTransaction(tx, header)
		if err != nil {
			log.Debug("pipeline: dropping transaction that failed protocol checks", "tx", tx.Hash(), "err", err)
			continue
		}
		gasUsed += receipt.GasUsed
		cumulativeGas += receipt.GasUsed
		receipt.CumulativeGasUsed = cumulativeGas
		receipts = append(receipts, receipt)
		included = append(included, tx)
	}

	header.GasUsed = gasUsed
	header.TransactionsRoot = block.ComputeTransactionsRoot(included)
	header.ReceiptsRoot = block.ComputeReceiptsRoot(receipts)
	header.StateRoot = p.state.Root()

	blk := &block.Block{Header: header, Transactions: included}
	digest := blk.Hash()
	r, s, v, err := p.signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, 65)
	copy(sig[:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = v
	blk.Signature = sig

	touched := make(map[types.Address]uint64, len(included))
	for i, tx := range included {
		if err := p.store.PutTransaction(tx); err != nil {
			return nil, err
		}
		if err := p.store.PutTransactionLocation(tx.Hash(), header.Height, digest, i); err != nil {
			return nil, err
		}
		if err := p.store.PutReceipt(receipts[i]); err != nil {
			return nil, err
		}
		if err := p.store.PutIndex(tx.From, tx.Hash()); err != nil {
			return nil, err
		}
		if err := p.store.PutIndex(tx.To, tx.Hash()); err != nil {
			return nil, err
		}
		p.pool.Remove(tx.Hash())
		nonce, nerr := p.state.GetNonce(tx.From)
		if nerr == nil {
			touched[tx.From] = nonce
		}
	}
	p.pool.SyncNonces(touched)

	if err := p.store.PutBlock(blk); err != nil {
		return nil, err
	}
	if err := p.store.PutState(header.Height, p.state); err != nil {
		return nil, err
	}

	p.height = header.Height
	p.parentHash = digest
	p.baseFee = feemarket.NextBaseFee(p.baseFee, gasUsed, gasLimit)

	p.engine.RecordParticipation(p.selfAddr)
	for _, v := range p.engine.ValidatorsNearingJail() {
		log.Warn("pipeline: validator past downtime threshold", "validator", v)
	}
	p.engine.AdvanceEpoch(header.Height)

	return blk, nil
}

// gossipIngressLoop drains the network's single inbound channel, dispatching
// each message by its concrete type. This is the one consumer goroutine
// spec §5 names; it never blocks on a slow downstream operation, since
// every handler below only ever touches the pipeline's own state.
func (p *Pipeline) gossipIngressLoop(ctx context.Context) error {
	inbound := p.network.Inbound()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-inbound:
			if !ok {
				return nil
			}
			p.handleInbound(msg)
		}
	}
}

func (p *Pipeline) handleInbound(msg interface{}) {
	switch m := msg.(type) {
	case *block.Block:
		p.handleBlock(m)
	case *transaction.Transaction:
		p.handleTransaction(m)
	case gossip.Commit:
		p.engine.ProcessVote(m.BlockHash, m.Validator, m.Signature)
	case gossip.SyncRequest:
		p.handleSyncRequest(m)
	case gossip.SyncResponse:
		for _, blk := range m.Blocks {
			p.handleBlock(blk)
		}
	default:
		log.Warn("pipeline: ignoring gossip message of unknown type")
	}
}

// handleBlock validates and, if valid and it extends the current tip,
// commits a block received from a peer.
func (p *Pipeline) handleBlock(blk *block.Block) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if blk.Header.Height != p.height+1 || blk.Header.ParentHash != p.parentHash {
		log.Debug("pipeline: ignoring non-contiguous block", "height", blk.Header.Height, "have_tip", p.height)
		return
	}

	receipts, err := p.processor.ValidateBlock(blk)
	if err != nil {
		log.Warn("pipeline: rejecting invalid block", "height", blk.Header.Height, "err", err)
		return
	}

	digest := blk.Hash()
	for i, tx := range blk.Transactions {
		if err := p.store.PutTransaction(tx); err != nil {
			log.Error("pipeline: failed to persist transaction", "err", err)
			return
		}
		if err := p.store.PutTransactionLocation(tx.Hash(), blk.Header.Height, digest, i); err != nil {
			log.Error("pipeline: failed to persist transaction location", "err", err)
			return
		}
		if err := p.store.PutReceipt(receipts[i]); err != nil {
			log.Error("pipeline: failed to persist receipt", "err", err)
			return
		}
		p.pool.Remove(tx.Hash())
	}
	if err := p.store.PutBlock(blk); err != nil {
		log.Error("pipeline: failed to persist block", "err", err)
		return
	}
	if err := p.store.PutState(blk.Header.Height, p.state); err != nil {
		log.Error("pipeline: failed to persist state", "err", err)
		return
	}

	p.height = blk.Header.Height
	p.parentHash = digest
	p.baseFee = blk.Header.BaseFee
	p.engine.AdvanceEpoch(blk.Header.Height)
}

func (p *Pipeline) handleTransaction(tx *transaction.Transaction) {
	admitted, err := p.pool.Add(tx)
	if err != nil {
		log.Debug("pipeline: mempool rejected gossiped transaction", "tx", tx.Hash(), "err", err)
		return
	}
	if admitted {
		p.network.BroadcastTransaction(tx)
	}
}

func (p *Pipeline) handleSyncRequest(req gossip.SyncRequest) {
	for height := req.Start; height <= req.End; height++ {
		blk, err := p.store.GetBlock(height)
		if err != nil {
			continue
		}
		p.network.BroadcastBlock(blk)
	}
}

// syncProbeLoop periodically checks whether this node's tip trails the
// consensus engine's last-known finalized height and, if so, requests the
// missing range from peers.
func (p *Pipeline) syncProbeLoop(ctx context.Context) error {
	ticker := time.NewTicker(syncProbeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.mu.Lock()
			tip := p.height
			finalized := p.engine.FinalizedHeight
			p.mu.Unlock()
			if finalized > tip {
				p.network.RequestSync(gossip.SyncRequest{Start: tip + 1, End: finalized})
			}
		}
	}
}

// rpcReadLoop is the cooperative task slot the RPC transport adapter would
// occupy were one wired in; the core only guarantees that p.API() stays
// usable for as long as ctx is live, per spec §1's "RPC surface is an
// external collaborator" boundary.
func (p *Pipeline) rpcReadLoop(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// Height returns the current committed chain tip.
func (p *Pipeline) Height() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.height
}

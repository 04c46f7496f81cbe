// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.

package txspool

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/transaction"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

func newSignedTx(t *testing.T, nonce uint64, gasPrice uint64) *transaction.Transaction {
	t.Helper()
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	tx := &transaction.Transaction{
		Nonce:    nonce,
		To:       priv.Address(),
		Value:    uint256.NewInt(1),
		GasLimit: 21000,
		GasPrice: uint256.NewInt(gasPrice),
		ChainID:  7424,
		VMType:   transaction.VMTypeNone,
	}
	if err := tx.Sign(priv); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return tx
}

func TestPoolAddRejectsDuplicate(t *testing.T) {
	p := New(10, newMockReadState())
	tx := newSignedTx(t, 0, 5)

	added, err := p.Add(tx)
	if !added || err != nil {
		t.Fatalf("first Add: added=%v err=%v", added, err)
	}

	added, err = p.Add(tx)
	if added || !kerrors.Is(err, kerrors.ErrAlreadyKnown) {
		t.Fatalf("duplicate Add: added=%v err=%v, want ErrAlreadyKnown", added, err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
}

func TestPoolAddRejectsWhenFull(t *testing.T) {
	p := New(1, newMockReadState())
	first := newSignedTx(t, 0, 5)
	second := newSignedTx(t, 0, 5)

	if added, err := p.Add(first); !added || err != nil {
		t.Fatalf("first Add: added=%v err=%v", added, err)
	}
	added, err := p.Add(second)
	if added || !kerrors.Is(err, kerrors.ErrMempoolFull) {
		t.Fatalf("second Add: added=%v err=%v, want ErrMempoolFull", added, err)
	}
}

func TestPoolSelectOrdersByGasPriceDescending(t *testing.T) {
	p := New(10, newMockReadState())
	low := newSignedTx(t, 0, 1)
	high := newSignedTx(t, 0, 100)
	mid := newSignedTx(t, 0, 50)

	for _, tx := range []*transaction.Transaction{low, high, mid} {
		if _, err := p.Add(tx); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	selected := p.Select(1_000_000)
	if len(selected) != 3 {
		t.Fatalf("Select returned %d transactions, want 3", len(selected))
	}
	if selected[0].Hash() != high.Hash() || selected[1].Hash() != mid.Hash() || selected[2].Hash() != low.Hash() {
		t.Fatalf("Select did not order by descending gas price")
	}
}

func TestPoolSelectRespectsGasBudget(t *testing.T) {
	p := New(10, newMockReadState())
	a := newSignedTx(t, 0, 10) // GasLimit 21000
	b := newSignedTx(t, 0, 5)  // GasLimit 21000

	for _, tx := range []*transaction.Transaction{a, b} {
		if _, err := p.Add(tx); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	selected := p.Select(21000)
	if len(selected) != 1 {
		t.Fatalf("Select returned %d transactions, want 1", len(selected))
	}
	if selected[0].Hash() != a.Hash() {
		t.Fatalf("Select did not prefer the higher gas price transaction under a tight budget")
	}
}

func TestPoolSelectDoesNotRemove(t *testing.T) {
	p := New(10, newMockReadState())
	tx := newSignedTx(t, 0, 5)
	if _, err := p.Add(tx); err != nil {
		t.Fatalf("Add: %v", err)
	}

	_ = p.Select(1_000_000)
	if p.Len() != 1 {
		t.Fatalf("Select mutated pool size: Len() = %d, want 1", p.Len())
	}
}

func TestPoolRemove(t *testing.T) {
	p := New(10, newMockReadState())
	tx := newSignedTx(t, 0, 5)
	if _, err := p.Add(tx); err != nil {
		t.Fatalf("Add: %v", err)
	}

	p.Remove(tx.Hash())
	if p.Len() != 0 {
		t.Fatalf("Len() = %d after Remove, want 0", p.Len())
	}
	if _, ok := p.Get(tx.Hash()); ok {
		t.Fatal("Get found a removed transaction")
	}

	// Removing an absent hash is a no-op, not an error.
	p.Remove(tx.Hash())
}

func TestPoolNextNonceFallsBackToState(t *testing.T) {
	state := newMockReadState()
	addr := newSignedTx(t, 0, 1).From
	state.setNonce(addr, 7)

	p := New(10, state)
	if got := p.NextNonce(addr); got != 7 {
		t.Fatalf("NextNonce() = %d, want 7", got)
	}
}

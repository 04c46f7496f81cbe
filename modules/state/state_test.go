// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.

package state

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/account"
	"github.com/kortanachain/kortana/common/types"
)

func testAddr(b byte) types.Address {
	var a types.Address
	a[0] = b
	return a
}

func TestAccountRoundTrip(t *testing.T) {
	db := New()
	addr := testAddr(1)

	acc := account.NewEOA()
	acc.Nonce = 7
	acc.Balance = uint256.NewInt(500)

	if err := db.WriteAccount(addr, acc); err != nil {
		t.Fatalf("WriteAccount: %v", err)
	}

	got, err := db.ReadAccount(addr)
	if err != nil {
		t.Fatalf("ReadAccount: %v", err)
	}
	if got.Nonce != 7 || !got.Balance.Eq(uint256.NewInt(500)) {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestUnknownAccountReadsAsEmptyEOA(t *testing.T) {
	db := New()
	acc, err := db.ReadAccount(testAddr(99))
	if err != nil {
		t.Fatalf("ReadAccount: %v", err)
	}
	if !acc.Empty() {
		t.Fatalf("expected empty account, got %+v", acc)
	}
}

func TestStorageRoundTripUpdatesStorageRoot(t *testing.T) {
	db := New()
	addr := testAddr(2)

	before, _ := db.ReadAccount(addr)
	if !before.StorageRoot.IsZero() {
		t.Fatal("expected zero storage root before any write")
	}

	key := types.BytesToHash([]byte("slot"))
	value := types.BytesToHash([]byte("value"))
	if err := db.WriteStorage(addr, key, value); err != nil {
		t.Fatalf("WriteStorage: %v", err)
	}

	got, err := db.ReadStorage(addr, key)
	if err != nil || got != value {
		t.Fatalf("ReadStorage: got %v, err %v", got, err)
	}

	after, _ := db.ReadAccount(addr)
	if after.StorageRoot.IsZero() {
		t.Fatal("expected non-zero storage root after a write")
	}
}

func TestCodeContentAddressing(t *testing.T) {
	db := New()
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01}

	hash, err := db.WriteCode(code)
	if err != nil {
		t.Fatalf("WriteCode: %v", err)
	}
	got, err := db.ReadCode(hash)
	if err != nil {
		t.Fatalf("ReadCode: %v", err)
	}
	if string(got) != string(code) {
		t.Fatalf("code mismatch")
	}
}

func TestIntraBlockStateRevertToSnapshot(t *testing.T) {
	db := New()
	addr := testAddr(3)
	ibs := NewIntraBlockState(db)

	ibs.AddBalance(addr, uint256.NewInt(100))
	snap := ibs.Snapshot()
	ibs.AddBalance(addr, uint256.NewInt(50))
	ibs.SetNonce(addr, 5)

	if ibs.GetBalance(addr).Uint64() != 150 || ibs.GetNonce(addr) != 5 {
		t.Fatalf("pre-revert state unexpected: balance=%d nonce=%d", ibs.GetBalance(addr).Uint64(), ibs.GetNonce(addr))
	}

	if err := ibs.RevertToSnapshot(snap); err != nil {
		t.Fatalf("RevertToSnapshot: %v", err)
	}

	if ibs.GetBalance(addr).Uint64() != 100 {
		t.Fatalf("expected balance 100 after revert, got %d", ibs.GetBalance(addr).Uint64())
	}
	if ibs.GetNonce(addr) != 0 {
		t.Fatalf("expected nonce 0 after revert, got %d", ibs.GetNonce(addr))
	}
}

func TestIntraBlockStateRefundAccounting(t *testing.T) {
	db := New()
	ibs := NewIntraBlockState(db)

	ibs.AddRefund(100)
	ibs.SubRefund(30)
	if ibs.GetRefund() != 70 {
		t.Fatalf("expected refund 70, got %d", ibs.GetRefund())
	}

	ibs.SubRefund(1000)
	if ibs.GetRefund() != 0 {
		t.Fatalf("expected refund floored at 0, got %d", ibs.GetRefund())
	}
}

func TestIntraBlockStateLogsRevert(t *testing.T) {
	db := New()
	ibs := NewIntraBlockState(db)

	snap := ibs.Snapshot()
	ibs.AddLog(Log{Address: testAddr(4), Data: []byte("event")})
	if len(ibs.Logs()) != 1 {
		t.Fatalf("expected 1 log, got %d", len(ibs.Logs()))
	}

	if err := ibs.RevertToSnapshot(snap); err != nil {
		t.Fatalf("RevertToSnapshot: %v", err)
	}
	if len(ibs.Logs()) != 0 {
		t.Fatalf("expected logs cleared after revert, got %d", len(ibs.Logs()))
	}
}

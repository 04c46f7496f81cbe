// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.

package types

import "testing"

func TestBytesToHashRightAligns(t *testing.T) {
	h := BytesToHash([]byte{1, 2, 3})
	for i := 0; i < HashLength-3; i++ {
		if h[i] != 0 {
			t.Fatalf("expected leading zero padding at index %d", i)
		}
	}
	if h[HashLength-3] != 1 || h[HashLength-2] != 2 || h[HashLength-1] != 3 {
		t.Fatal("trailing bytes not preserved")
	}
}

func TestBytesToHashTruncatesOverlong(t *testing.T) {
	long := make([]byte, HashLength+5)
	for i := range long {
		long[i] = byte(i)
	}
	h := BytesToHash(long)
	want := long[5:]
	for i, b := range want {
		if h[i] != b {
			t.Fatalf("byte %d: got %x, want %x", i, h[i], b)
		}
	}
}

func TestHashHexRoundTrip(t *testing.T) {
	h := BytesToHash([]byte("some content to hash into a digest"))
	parsed, err := HexToHash(h.Hex())
	if err != nil {
		t.Fatalf("HexToHash: %v", err)
	}
	if parsed != h {
		t.Fatalf("round trip mismatch: got %s, want %s", parsed, h)
	}
}

func TestHashUnmarshalTextRejectsWrongLength(t *testing.T) {
	var h Hash
	if err := h.UnmarshalText([]byte("0x1234")); err == nil {
		t.Fatal("expected error for short hash")
	}
}

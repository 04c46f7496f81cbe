// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.

package encoding

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeBytesRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x7f},
		{0x80},
		[]byte("dog"),
		bytes.Repeat([]byte{0xAB}, 55),
		bytes.Repeat([]byte{0xCD}, 56),
		bytes.Repeat([]byte{0xEF}, 1024),
	}

	for _, c := range cases {
		encoded := EncodeBytes(nil, c)
		decoded, rest, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%x): %v", encoded, err)
		}
		if len(rest) != 0 {
			t.Fatalf("unexpected trailing bytes: %x", rest)
		}
		if decoded.IsList {
			t.Fatalf("expected byte string, got list")
		}
		if !bytes.Equal(decoded.Bytes, c) {
			t.Fatalf("round trip mismatch: got %x, want %x", decoded.Bytes, c)
		}
	}
}

func TestEncodeUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 255, 256, 1 << 32, ^uint64(0)}
	for _, v := range cases {
		encoded := EncodeUint64(nil, v)
		decoded, _, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		got, err := decoded.Uint64()
		if err != nil {
			t.Fatalf("Uint64: %v", err)
		}
		if got != v {
			t.Fatalf("got %d, want %d", got, v)
		}
	}
}

func TestEncodeListRoundTrip(t *testing.T) {
	var body []byte
	body = EncodeBytes(body, []byte("cat"))
	body = EncodeBytes(body, []byte("dog"))
	encoded := EncodeList(nil, body)

	decoded, rest, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected trailing bytes")
	}
	if !decoded.IsList || len(decoded.List) != 2 {
		t.Fatalf("expected 2-item list, got %+v", decoded)
	}
	if !bytes.Equal(decoded.List[0].Bytes, []byte("cat")) {
		t.Fatalf("item 0 mismatch: %x", decoded.List[0].Bytes)
	}
	if !bytes.Equal(decoded.List[1].Bytes, []byte("dog")) {
		t.Fatalf("item 1 mismatch: %x", decoded.List[1].Bytes)
	}
}

func TestEncodeNestedList(t *testing.T) {
	var inner []byte
	inner = EncodeUint64(inner, 42)
	innerList := EncodeList(nil, inner)

	var outer []byte
	outer = EncodeBytes(outer, []byte("a"))
	outer = append(outer, innerList...)
	encoded := EncodeList(nil, outer)

	decoded, _, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.List) != 2 || !decoded.List[1].IsList {
		t.Fatalf("expected nested list shape, got %+v", decoded)
	}
	nestedVal, err := decoded.List[1].List[0].Uint64()
	if err != nil || nestedVal != 42 {
		t.Fatalf("nested value mismatch: %v %v", nestedVal, err)
	}
}

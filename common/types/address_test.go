// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.

package types

import "testing"

func TestAddressFromPubkeyChecksum(t *testing.T) {
	addr := AddressFromPubkey([]byte("test_pubkey"))

	roundTripped, err := AddressFromBytes([AddressLength]byte(addr))
	if err != nil {
		t.Fatalf("derived address failed its own checksum: %v", err)
	}
	if roundTripped != addr {
		t.Fatalf("round trip mismatch: got %s, want %s", roundTripped, addr)
	}
}

func TestAddressFromBytesRejectsBadChecksum(t *testing.T) {
	addr := AddressFromPubkey([]byte("another_key"))
	tampered := addr
	tampered[0] ^= 0xFF

	if _, err := AddressFromBytes([AddressLength]byte(tampered)); err == nil {
		t.Fatal("expected checksum validation to fail on tampered address")
	}
}

func TestZeroAddressAlwaysValid(t *testing.T) {
	zero, err := AddressFromBytes([AddressLength]byte{})
	if err != nil {
		t.Fatalf("zero address must validate unconditionally: %v", err)
	}
	if !zero.IsZero() {
		t.Fatal("expected zero address")
	}
}

func TestAddressFromEVMRehydration(t *testing.T) {
	var evm [AddressCoreLength]byte
	for i := range evm {
		evm[i] = byte(i + 1)
	}
	addr := AddressFromEVM(evm)
	if addr.EVM() != evm {
		t.Fatalf("EVM() did not round-trip: got %x, want %x", addr.EVM(), evm)
	}

	validated, err := AddressFromBytes([AddressLength]byte(addr))
	if err != nil {
		t.Fatalf("rehydrated address failed checksum: %v", err)
	}
	if validated != addr {
		t.Fatal("rehydrated address mismatch")
	}
}

func TestAddressFromHexFormats(t *testing.T) {
	addr := AddressFromPubkey([]byte("hex_test"))

	cases := []string{
		addr.Hex(),
		"0x" + addr.Hex()[5:],
		addr.Hex()[3:],
	}
	for _, s := range cases {
		parsed, err := AddressFromHex(s)
		if err != nil {
			t.Fatalf("AddressFromHex(%q) failed: %v", s, err)
		}
		if parsed != addr {
			t.Errorf("AddressFromHex(%q) = %s, want %s", s, parsed, addr)
		}
	}
}

func TestAddressFromHexEVMForm(t *testing.T) {
	var evm [AddressCoreLength]byte
	for i := range evm {
		evm[i] = byte(0xA0 + i)
	}
	want := AddressFromEVM(evm)

	parsed, err := AddressFromHex("0x" + hexEncode(evm[:]))
	if err != nil {
		t.Fatalf("AddressFromHex on 20-byte form failed: %v", err)
	}
	if parsed != want {
		t.Errorf("got %s, want %s", parsed, want)
	}
}

func TestAddressTextMarshaling(t *testing.T) {
	addr := AddressFromPubkey([]byte("marshal_test"))

	text, err := addr.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var decoded Address
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if decoded != addr {
		t.Fatalf("text marshal round trip mismatch: got %s, want %s", decoded, addr)
	}
}

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0x0F]
	}
	return string(out)
}

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

// Package encoding provides the RLP (Recursive Length Prefix) codec used
// for all three transaction wire formats, plus the buffer pools shared by
// encoders across the node.
//
// No recipe for RLP existed anywhere in the retrieved dependency corpus, so
// this codec is hand-written rather than imported; see DESIGN.md for the
// justification. It intentionally implements only the two shapes the
// transaction formats need — byte strings and lists of byte strings/lists —
// not the full reflection-based encoding larger RLP libraries provide.
package encoding

import (
	"fmt"
)

// EncodeBytes appends the RLP encoding of b to dst and returns the result.
func EncodeBytes(dst []byte, b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return append(dst, b[0])
	}
	if len(b) < 56 {
		dst = append(dst, byte(0x80+len(b)))
		return append(dst, b...)
	}
	lenBytes := minimalBigEndian(uint64(len(b)))
	dst = append(dst, byte(0xb7+len(lenBytes)))
	dst = append(dst, lenBytes...)
	return append(dst, b...)
}

// EncodeUint64 appends the RLP encoding of v (as a minimal big-endian byte
// string) to dst.
func EncodeUint64(dst []byte, v uint64) []byte {
	return EncodeBytes(dst, minimalBigEndian(v))
}

// EncodeList appends the RLP encoding of a list whose already-encoded
// member items are concatenated in body, to dst.
func EncodeList(dst []byte, body []byte) []byte {
	if len(body) < 56 {
		dst = append(dst, byte(0xc0+len(body)))
		return append(dst, body...)
	}
	lenBytes := minimalBigEndian(uint64(len(body)))
	dst = append(dst, byte(0xf7+len(lenBytes)))
	dst = append(dst, lenBytes...)
	return append(dst, body...)
}

func minimalBigEndian(v uint64) []byte {
	if v == 0 {
		return nil
	}
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	i := 0
	for i < 8 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

// Value is a decoded RLP item: either a byte string (IsList false) or a
// list of child Values (IsList true).
type Value struct {
	IsList bool
	Bytes  []byte
	List   []Value
}

// Uint64 interprets a byte-string Value as a big-endian unsigned integer.
func (v Value) Uint64() (uint64, error) {
	if v.IsList {
		return 0, fmt.Errorf("rlp: expected byte string, got list")
	}
	if len(v.Bytes) > 8 {
		return 0, fmt.Errorf("rlp: integer too large for uint64 (%d bytes)", len(v.Bytes))
	}
	var out uint64
	for _, b := range v.Bytes {
		out = out<<8 | uint64(b)
	}
	return out, nil
}

// Decode parses a single RLP item from the front of data and returns it
// along with any unconsumed trailing bytes.
func Decode(data []byte) (Value, []byte, error) {
	if len(data) == 0 {
		return Value{}, nil, fmt.Errorf("rlp: empty input")
	}
	prefix := data[0]

	switch {
	case prefix < 0x80:
		return Value{Bytes: data[0:1]}, data[1:], nil

	case prefix < 0xb8:
		length := int(prefix - 0x80)
		if len(data) < 1+length {
			return Value{}, nil, fmt.Errorf("rlp: short byte string")
		}
		return Value{Bytes: data[1 : 1+length]}, data[1+length:], nil

	case prefix < 0xc0:
		lenOfLen := int(prefix - 0xb7)
		if len(data) < 1+lenOfLen {
			return Value{}, nil, fmt.Errorf("rlp: short length-of-length")
		}
		length := int(decodeBigEndian(data[1 : 1+lenOfLen]))
		start := 1 + lenOfLen
		if len(data) < start+length {
			return Value{}, nil, fmt.Errorf("rlp: short long byte string")
		}
		return Value{Bytes: data[start : start+length]}, data[start+length:], nil

	case prefix < 0xf8:
		length := int(prefix - 0xc0)
		if len(data) < 1+length {
			return Value{}, nil, fmt.Errorf("rlp: short list")
		}
		items, err := decodeList(data[1 : 1+length])
		if err != nil {
			return Value{}, nil, err
		}
		return Value{IsList: true, List: items}, data[1+length:], nil

	default:
		lenOfLen := int(prefix - 0xf7)
		if len(data) < 1+lenOfLen {
			return Value{}, nil, fmt.Errorf("rlp: short long-list length-of-length")
		}
		length := int(decodeBigEndian(data[1 : 1+lenOfLen]))
		start := 1 + lenOfLen
		if len(data) < start+length {
			return Value{}, nil, fmt.Errorf("rlp: short long list")
		}
		items, err := decodeList(data[start : start+length])
		if err != nil {
			return Value{}, nil, err
		}
		return Value{IsList: true, List: items}, data[start+length:], nil
	}
}

func decodeList(body []byte) ([]Value, error) {
	var items []Value
	for len(body) > 0 {
		item, rest, err := Decode(body)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		body = rest
	}
	return items, nil
}

func decodeBigEndian(b []byte) uint64 {
	var out uint64
	for _, c := range b {
		out = out<<8 | uint64(c)
	}
	return out
}

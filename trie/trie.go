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

// Package trie implements a Merkle-Patricia trie over nibble paths, hashed
// with SHA3-256. The commitment is deterministic regardless of insertion
// order: two tries holding the same key/value pairs always produce the
// same root hash.
//
// The reference this was grounded on (original_source's trie.rs) has a
// known read-path bug on deep inserts; Get here is a fresh implementation,
// proven by the round-trip property tests in trie_test.go rather than
// ported from that source.
package trie

import (
	"bytes"

	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/types"
)

// EmptyRoot is the hash of a trie with no entries.
var EmptyRoot = crypto.SHA3_256([]byte("kortana-empty-trie"))

// node is the sum type of the trie's three node kinds.
type node interface {
	hash() types.Hash
}

type leafNode struct {
	path  []byte // remaining nibbles
	value []byte
}

type extensionNode struct {
	path []byte // shared nibble prefix
	next node
}

type branchNode struct {
	children [16]node
	value    []byte // value stored at this branch's own key, if any
}

func (n *leafNode) hash() types.Hash {
	var buf bytes.Buffer
	buf.WriteByte(0x00)
	writeNibbles(&buf, n.path)
	writeBytes(&buf, n.value)
	return crypto.SHA3_256(buf.Bytes())
}

func (n *extensionNode) hash() types.Hash {
	var buf bytes.Buffer
	buf.WriteByte(0x01)
	writeNibbles(&buf, n.path)
	childHash := n.next.hash()
	buf.Write(childHash[:])
	return crypto.SHA3_256(buf.Bytes())
}

func (n *branchNode) hash() types.Hash {
	var buf bytes.Buffer
	buf.WriteByte(0x02)
	for _, c := range n.children {
		if c == nil {
			buf.Write(make([]byte, types.HashLength))
			continue
		}
		h := c.hash()
		buf.Write(h[:])
	}
	writeBytes(&buf, n.value)
	return crypto.SHA3_256(buf.Bytes())
}

func writeNibbles(buf *bytes.Buffer, nibbles []byte) {
	writeUvarint(buf, uint64(len(nibbles)))
	buf.Write(nibbles)
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [10]byte
	n := 0
	for v >= 0x80 {
		tmp[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	tmp[n] = byte(v)
	n++
	buf.Write(tmp[:n])
}

// Trie is a Merkle-Patricia trie mapping byte-string keys to byte-string
// values.
type Trie struct {
	root node
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{}
}

// Hash returns the trie's root commitment. An empty trie returns EmptyRoot.
func (t *Trie) Hash() types.Hash {
	if t.root == nil {
		return EmptyRoot
	}
	return t.root.hash()
}

// Insert adds or overwrites the value stored at key.
func (t *Trie) Insert(key, value []byte) {
	nibbles := keyToNibbles(key)
	t.root = insert(t.root, nibbles, value)
}

// Get returns the value stored at key, and whether it was found.
func (t *Trie) Get(key []byte) ([]byte, bool) {
	return get(t.root, keyToNibbles(key))
}

func keyToNibbles(key []byte) []byte {
	nibbles := make([]byte, len(key)*2)
	for i, b := range key {
		nibbles[i*2] = b >> 4
		nibbles[i*2+1] = b & 0x0F
	}
	return nibbles
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func get(n node, nibbles []byte) ([]byte, bool) {
	switch v := n.(type) {
	case nil:
		return nil, false
	case *leafNode:
		if bytes.Equal(v.path, nibbles) {
			return v.value, true
		}
		return nil, false
	case *extensionNode:
		if len(nibbles) < len(v.path) || !bytes.Equal(v.path, nibbles[:len(v.path)]) {
			return nil, false
		}
		return get(v.next, nibbles[len(v.path):])
	case *branchNode:
		if len(nibbles) == 0 {
			if v.value == nil {
				return nil, false
			}
			return v.value, true
		}
		return get(v.children[nibbles[0]], nibbles[1:])
	default:
		return nil, false
	}
}

func insert(n node, nibbles []byte, value []byte) node {
	switch v := n.(type) {
	case nil:
		return &leafNode{path: append([]byte(nil), nibbles...), value: value}

	case *leafNode:
		if bytes.Equal(v.path, nibbles) {
			return &leafNode{path: v.path, value: value}
		}
		return splitLeafOrExtension(v.path, v.value, nil, nibbles, value)

	case *extensionNode:
		cp := commonPrefixLen(v.path, nibbles)
		if cp == len(v.path) {
			// The new key extends past this extension's full prefix; recurse.
			newChild := insert(v.next, nibbles[cp:], value)
			return &extensionNode{path: v.path, next: newChild}
		}
		return splitLeafOrExtension(v.path, nil, v.next, nibbles, value)

	case *branchNode:
		nb := *v
		if len(nibbles) == 0 {
			nb.value = value
			return &nb
		}
		nb.children[nibbles[0]] = insert(v.children[nibbles[0]], nibbles[1:], value)
		return &nb

	default:
		return &leafNode{path: append([]byte(nil), nibbles...), value: value}
	}
}

// splitLeafOrExtension handles the case where a new key diverges from an
// existing leaf's path or an existing extension's shared prefix. existingNext
// is nil when splitting a leaf (existingValue holds its value) and non-nil
// when splitting an extension (in which case existingValue is unused).
func splitLeafOrExtension(existingPath []byte, existingValue []byte, existingNext node, newNibbles []byte, newValue []byte) node {
	cp := commonPrefixLen(existingPath, newNibbles)

	branch := &branchNode{}

	// Re-attach the existing branch of the split. For an extension split,
	// insert's extension case only calls here when cp < len(existingPath),
	// so existingRemainder is never empty in that path. For a leaf split,
	// the new key may be a strict prefix of the leaf's path, or vice versa,
	// so an empty remainder (terminating exactly at the branch) is possible
	// and lands its value on the branch itself.
	existingRemainder := existingPath[cp:]
	if len(existingRemainder) == 0 {
		branch.value = existingValue
	} else {
		branchIdx := existingRemainder[0]
		rest := existingRemainder[1:]
		if existingNext != nil {
			branch.children[branchIdx] = wrapExtension(rest, existingNext)
		} else {
			branch.children[branchIdx] = &leafNode{path: append([]byte(nil), rest...), value: existingValue}
		}
	}

	// Attach the new key's branch of the split.
	newRemainder := newNibbles[cp:]
	if len(newRemainder) == 0 {
		branch.value = newValue
	} else {
		idx := newRemainder[0]
		rest := newRemainder[1:]
		branch.children[idx] = &leafNode{path: append([]byte(nil), rest...), value: newValue}
	}

	if cp == 0 {
		return branch
	}
	return &extensionNode{path: append([]byte(nil), existingPath[:cp]...), next: branch}
}

func wrapExtension(path []byte, next node) node {
	if len(path) == 0 {
		return next
	}
	return &extensionNode{path: append([]byte(nil), path...), next: next}
}

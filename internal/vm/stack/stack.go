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

// Package stack implements the EVM subset's 1024-deep 256-bit operand
// stack.
package stack

import (
	"sync"

	"github.com/holiman/uint256"
)

// MaxDepth is the deepest the stack may grow before a PUSH overflows it.
const MaxDepth = 1024

// Stack is a LIFO of 256-bit words.
type Stack struct {
	data []uint256.Int
}

var pool = sync.Pool{
	New: func() any { return &Stack{data: make([]uint256.Int, 0, 16)} },
}

// New returns an empty stack, reused from a pool where possible.
func New() *Stack {
	return pool.Get().(*Stack)
}

// ReturnNormalStack releases s back to the pool.
func ReturnNormalStack(s *Stack) {
	s.data = s.data[:0]
	pool.Put(s)
}

// Len returns the number of words currently on the stack.
func (s *Stack) Len() int { return len(s.data) }

// Push appends v to the top of the stack.
func (s *Stack) Push(v *uint256.Int) {
	s.data = append(s.data, *v)
}

// PushN pushes each value in vs, in order, so the last element of vs ends
// up on top.
func (s *Stack) PushN(vs ...uint256.Int) {
	s.data = append(s.data, vs...)
}

// Pop removes and returns the top of the stack.
func (s *Stack) Pop() uint256.Int {
	n := len(s.data) - 1
	v := s.data[n]
	s.data = s.data[:n]
	return v
}

// Back returns a pointer to the nth element from the top without removing
// it; Back(0) is the top of the stack.
func (s *Stack) Back(n int) *uint256.Int {
	return &s.data[len(s.data)-1-n]
}

// Swap exchanges the top element with the element n positions below it.
func (s *Stack) Swap(n int) {
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}

// Dup pushes a copy of the nth element from the top (Dup(1) duplicates the
// current top).
func (s *Stack) Dup(n int) {
	v := s.data[len(s.data)-n]
	s.data = append(s.data, v)
}

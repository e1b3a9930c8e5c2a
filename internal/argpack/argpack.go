// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package argpack assembles the argument vector of one invocation inside a
// byte budget and a count budget.
//
// Arguments are stored in a single arena, each followed by a NUL terminator,
// the way they are laid out for a new process image. Their encoded size is
// therefore len(arg)+1, and the sum of encoded sizes plus any reservation
// never exceeds the budget.
package argpack

// Buffer is the argument buffer of one invocation. The zero value is not usable, use New.
type Buffer struct {
	arena    []byte
	offs     []int
	budget   int
	capacity int
	reserved int
}

// New returns a Buffer holding at most budget encoded bytes and, when
// capacity is positive, at most capacity arguments.
func New(budget, capacity int) *Buffer {
	return &Buffer{
		arena:    make([]byte, 0, min(budget, 64*1024)),
		budget:   budget,
		capacity: capacity,
	}
}

// Encoded returns the encoded size of tokens.
func Encoded(tokens ...string) int {
	n := 0
	for _, t := range tokens {
		n += len(t) + 1
	}

	return n
}

// Reset empties the buffer and drops any reservation.
func (b *Buffer) Reset() {
	b.arena = b.arena[:0]
	b.offs = b.offs[:0]
	b.reserved = 0
}

// Push appends token. It returns false, leaving the buffer unchanged, if the
// token does not fit in what is left of the budget after the reservation or
// if the count budget is exhausted.
func (b *Buffer) Push(token string) bool {
	if b.capacity > 0 && len(b.offs) >= b.capacity {
		return false
	}

	if len(b.arena)+b.reserved+len(token)+1 > b.budget {
		return false
	}

	b.offs = append(b.offs, len(b.arena))
	b.arena = append(b.arena, token...)
	b.arena = append(b.arena, 0)

	return true
}

// Reserve sets aside n bytes for tokens that must follow the ones pushed
// next. It returns false if the budget cannot hold the reservation.
func (b *Buffer) Reserve(n int) bool {
	if len(b.arena)+b.reserved+n > b.budget {
		return false
	}

	b.reserved += n

	return true
}

// Release hands the reserved bytes back so the trailing tokens can be pushed.
func (b *Buffer) Release() {
	b.reserved = 0
}

// Len returns the number of arguments in the buffer.
func (b *Buffer) Len() int {
	return len(b.offs)
}

// Size returns the encoded size of the arguments in the buffer.
func (b *Buffer) Size() int {
	return len(b.arena)
}

// Budget returns the byte budget of the buffer.
func (b *Buffer) Budget() int {
	return b.budget
}

// Argv splits the arena back into strings.
func (b *Buffer) Argv() []string {
	argv := make([]string, len(b.offs))

	for i, off := range b.offs {
		end := len(b.arena)
		if i+1 < len(b.offs) {
			end = b.offs[i+1]
		}

		argv[i] = string(b.arena[off : end-1])
	}

	return argv
}

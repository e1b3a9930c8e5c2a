// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package argpack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgvRoundTrip(t *testing.T) {
	in := []string{"echo", "hello world", "", "tab\there", "it's", "ünïcode"}

	b := New(1024, 0)
	for _, s := range in {
		require.True(t, b.Push(s))
	}

	assert.Equal(t, in, b.Argv())
	assert.Equal(t, Encoded(in...), b.Size())
	assert.Equal(t, len(in), b.Len())
}

func TestPushByteBudget(t *testing.T) {
	b := New(10, 0)

	require.True(t, b.Push("abcd")) // 5 bytes
	require.True(t, b.Push("efg"))  // 9 bytes
	assert.False(t, b.Push("h"))    // would be 11
	assert.True(t, b.Push(""))      // exactly 10
	assert.False(t, b.Push(""))     // full
	assert.Equal(t, 10, b.Size())
	assert.Equal(t, []string{"abcd", "efg", ""}, b.Argv())
}

func TestPushCountBudget(t *testing.T) {
	b := New(1024, 2)

	require.True(t, b.Push("a"))
	require.True(t, b.Push("b"))
	assert.False(t, b.Push("c"))
	assert.Equal(t, []string{"a", "b"}, b.Argv())
}

func TestReserve(t *testing.T) {
	b := New(20, 0)

	require.True(t, b.Push("cmd"))                 // 4
	require.True(t, b.Reserve(Encoded("trailer"))) // 8 reserved, 12 accounted

	assert.True(t, b.Push("1234567")) // 20
	assert.False(t, b.Push(""))       // reservation is protected

	b.Release()
	require.True(t, b.Push("trailer"))
	assert.Equal(t, []string{"cmd", "1234567", "trailer"}, b.Argv())
	assert.LessOrEqual(t, b.Size(), b.Budget())
}

func TestReserveTooLarge(t *testing.T) {
	b := New(8, 0)

	require.True(t, b.Push("abc"))
	assert.False(t, b.Reserve(5))
	assert.True(t, b.Reserve(4))
}

func TestReset(t *testing.T) {
	b := New(16, 0)

	require.True(t, b.Push("abc"))
	require.True(t, b.Reserve(8))
	b.Reset()

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Size())
	assert.Empty(t, b.Argv())
	assert.True(t, b.Push(strings.Repeat("x", 15)))
}

func TestNeverExceedsBudget(t *testing.T) {
	b := New(100, 0)

	for i := range 200 {
		b.Push(strings.Repeat("a", i%13))
		assert.LessOrEqual(t, b.Size(), b.Budget())
	}
}

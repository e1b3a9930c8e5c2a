// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build linux || darwin

package argmax

import "golang.org/x/sys/unix"

// ceiling follows the Linux rule: a quarter of the stack limit,
// but never less than the POSIX minimum. An unlimited stack is capped.
func ceiling() int {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &rlim); err != nil {
		return posixArgMax
	}

	if rlim.Cur/4 > uint64(MaxBudget)*4 {
		return MaxBudget * 4
	}

	if n := int(rlim.Cur / 4); n > posixArgMax {
		return n
	}

	return posixArgMax
}

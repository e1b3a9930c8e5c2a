// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !linux && !darwin

package argmax

// ceiling elsewhere is the Windows command line limit.
func ceiling() int {
	return 32 * 1024
}

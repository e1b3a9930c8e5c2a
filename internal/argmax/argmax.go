// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package argmax computes how many bytes of arguments one invocation may use.
package argmax

const (
	// Margin is kept free below the platform ceiling.
	Margin = 4 * 1024
	// MinBudget is the smallest budget ever returned.
	MinBudget = 4 * 1024
	// MaxBudget is the largest budget ever returned.
	MaxBudget = 1024 * 1024
	// posixArgMax is the minimum ARG_MAX guaranteed by POSIX.
	posixArgMax = 128 * 1024
)

// Ceiling is the platform's maximum argument list size in bytes.
// It is a variable so tests can stub it.
var Ceiling = ceiling

// EnvSize returns the bytes env occupies in a new process image.
func EnvSize(env []string) int {
	n := 0
	for _, e := range env {
		n += len(e) + 1
	}

	return n
}

// Budget returns the byte budget for the argument vector of one invocation
// started with environment env.
func Budget(env []string) int {
	return Clamp(Ceiling() - EnvSize(env) - Margin)
}

// Clamp restricts n to [MinBudget, MaxBudget].
func Clamp(n int) int {
	switch {
	case n < MinBudget:
		return MinBudget
	case n > MaxBudget:
		return MaxBudget
	default:
		return n
	}
}

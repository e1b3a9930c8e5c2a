// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package trace renders argument vectors as shell quoted command lines.
//
// The output is meant to be read by humans and pasted into a shell; xe
// itself never hands a command line to a shell.
package trace

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// specials are the bytes that make an argument need quoting.
const specials = "\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f\x10" +
	"\x11\x12\x13\x14\x15\x16\x17\x18\x19\x1a\x1b\x1c\x1d\x1e\x1f\x20" +
	"`^#*[]=|\\?${}()'\"<>&;~!\x7f"

// Quote returns s quoted for a POSIX shell. Strings without special
// characters are returned as is.
func Quote(s string) string {
	if s == "" {
		return "''"
	}

	if !strings.ContainsAny(s, specials) {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Join quotes every element of argv and joins them with spaces.
func Join(argv []string) string {
	var sb strings.Builder

	for i, a := range argv {
		if i > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(Quote(a))
	}

	return sb.String()
}

// Tracer writes command lines to a stream, one Write per line so lines from
// concurrent writers never interleave.
type Tracer struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Tracer writing to w.
func New(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Command writes argv as a command line.
func (t *Tracer) Command(argv []string) error {
	return t.line(Join(argv))
}

// Completed writes the outcome of a finished job followed by its command line.
func (t *Tracer) Completed(iteration, pid int, outcome string, argv []string) error {
	return t.line(fmt.Sprintf("[%d] pid %d %s: %s", iteration, pid, outcome, Join(argv)))
}

func (t *Tracer) line(s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := io.WriteString(t.w, s+"\n")

	return err //nolint:wrapcheck
}

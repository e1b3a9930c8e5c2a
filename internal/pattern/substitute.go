// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pattern

import (
	"errors"
	"strings"
)

// MaxSubstitution is the longest token Substitute will produce.
// It matches the per-argument limit of the Linux kernel.
const MaxSubstitution = 128 * 1024

// ErrResultTooLong is returned when a substituted token exceeds MaxSubstitution.
var ErrResultTooLong = errors.New("substitution result too long")

// Substitute rebuilds a template token for the argument described by m.
//
// A token equal to replace yields the full candidate. A token without `%`
// is returned unchanged. Otherwise the first `%` is replaced by the capture
// of the match, or by the matched subject when the pattern captured nothing,
// and the directory trimmed by the basename rule is put back in front.
func Substitute(m Match, token, replace string) (string, error) {
	if token == replace {
		return m.Candidate, nil
	}

	i := strings.IndexByte(token, '%')
	if i < 0 {
		return token, nil
	}

	fill, ok := m.Capture()
	if !ok {
		fill = m.Subject
	}

	n := len(m.Dir) + len(token) - 1 + len(fill)
	if n > MaxSubstitution {
		return "", ErrResultTooLong
	}

	var sb strings.Builder

	sb.Grow(n)
	sb.WriteString(m.Dir)
	sb.WriteString(token[:i])
	sb.WriteString(fill)
	sb.WriteString(token[i+1:])

	return sb.String(), nil
}

// Substitutes reports whether token would be rewritten by Substitute.
func Substitutes(token, replace string) bool {
	return token == replace || strings.IndexByte(token, '%') >= 0
}

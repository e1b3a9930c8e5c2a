// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package rules builds the ordered pattern rules used in pattern dispatch
// mode, either from the command line or from a rule file.
package rules

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/xe/internal/pattern"
)

// GroupSeparator separates rules on the command line.
const GroupSeparator = "+"

var (
	// ErrInvalidRules is returned when one or more rules cannot be built.
	ErrInvalidRules = errors.New("invalid rules")
	// ErrEmptyRule is returned for a rule without a pattern.
	ErrEmptyRule = errors.New("rule has no pattern")
	// ErrNoRules is returned when no rule was given.
	ErrNoRules = errors.New("no rules defined")
)

// Rule is one pattern and the command template run for arguments matching it.
type Rule struct {
	Pattern  *pattern.Pattern
	Template []string
}

// Match returns the first rule matching arg.
func Match(rules []Rule, arg string) (Rule, pattern.Match, bool) {
	for _, r := range rules {
		if m, ok := r.Pattern.Match(arg); ok {
			return r, m, true
		}
	}

	return Rule{}, pattern.Match{}, false
}

// FromArgs splits words on sep into rules. The first word of every group is
// the pattern, the rest is the command template.
func FromArgs(words []string, sep string) ([]Rule, error) {
	var groups [][]string

	start := 0

	for i, w := range words {
		if w == sep {
			groups = append(groups, words[start:i])
			start = i + 1
		}
	}

	groups = append(groups, words[start:])

	defs := make([]definition, 0, len(groups))
	for i, g := range groups {
		d := definition{source: fmt.Sprintf("group %d", i+1)}
		if len(g) > 0 {
			d.pattern, d.command = g[0], g[1:]
			d.hasPattern = true
		}

		defs = append(defs, d)
	}

	return build(defs)
}

// definition is a rule before its pattern is compiled.
type definition struct {
	source     string
	pattern    string
	hasPattern bool
	command    []string
}

func build(defs []definition) ([]Rule, error) {
	if len(defs) == 0 {
		return nil, errors.Join(ErrInvalidRules, ErrNoRules)
	}

	var (
		err   error
		rules = make([]Rule, 0, len(defs))
	)

	for _, d := range defs {
		if !d.hasPattern {
			err = multierror.Append(err, fmt.Errorf("%s: %w", d.source, ErrEmptyRule))
			continue
		}

		p, cerr := pattern.Compile(d.pattern)
		if cerr != nil {
			err = multierror.Append(err, fmt.Errorf("%s: %w", d.source, cerr))
			continue
		}

		rules = append(rules, Rule{Pattern: p, Template: d.command})
	}

	if err != nil {
		return nil, errors.Join(ErrInvalidRules, err)
	}

	return rules, nil
}

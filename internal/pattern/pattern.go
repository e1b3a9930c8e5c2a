// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pattern

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Separator is the path separator understood by the matcher.
const Separator = '/'

var (
	// ErrUnterminatedClass is returned when a `[` has no closing `]`.
	ErrUnterminatedClass = errors.New("unterminated character class")
	// ErrUnterminatedBrace is returned when a `{` has no closing `}`.
	ErrUnterminatedBrace = errors.New("unterminated brace alternation")
)

type kind int

const (
	kindLiteral     kind = iota // a run of literal bytes
	kindAnyChar                 // ?
	kindAnySpan                 // *
	kindAnySpanDeep             // **
	kindCapture                 // %
	kindClass                   // [...]
	kindAlternation             // {a,b}
	kindSeparator               // one or more separators
)

type node struct {
	kind  kind
	lit   string
	class *charClass
	alts  [][]node
}

type runeRange struct {
	lo, hi rune
}

type charClass struct {
	negate bool
	ranges []runeRange
}

func (c *charClass) matches(r rune) bool {
	if r == Separator {
		return false
	}

	for _, rr := range c.ranges {
		if r >= rr.lo && r <= rr.hi {
			return !c.negate
		}
	}

	return c.negate
}

// Pattern is a compiled pattern.
type Pattern struct {
	src   string
	nodes []node
	// pathAware is set when the pattern holds a separator or `**`,
	// in which case the whole candidate is matched.
	pathAware bool
}

// Compile parses src into a Pattern.
func Compile(src string) (*Pattern, error) {
	p := &parser{src: src}

	nodes, err := p.sequence(false)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", src, err)
	}

	return &Pattern{src: src, nodes: nodes, pathAware: p.pathAware}, nil
}

// String returns the source text of the pattern.
func (p *Pattern) String() string {
	return p.src
}

type parser struct {
	src       string
	pos       int
	pathAware bool
}

// sequence parses nodes until the end of input or, inside braces, until an
// unnested `,` or `}` which is left for the caller.
func (p *parser) sequence(inBrace bool) ([]node, error) {
	var nodes []node

	appendLiteral := func(s string) {
		if n := len(nodes); n > 0 && nodes[n-1].kind == kindLiteral {
			nodes[n-1].lit += s
			return
		}

		nodes = append(nodes, node{kind: kindLiteral, lit: s})
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]

		switch {
		case inBrace && (c == ',' || c == '}'):
			return nodes, nil
		case c == '\\' && p.pos+1 < len(p.src):
			_, size := utf8.DecodeRuneInString(p.src[p.pos+1:])
			appendLiteral(p.src[p.pos+1 : p.pos+1+size])
			p.pos += 1 + size
		case c == '?':
			nodes = append(nodes, node{kind: kindAnyChar})
			p.pos++
		case c == '*':
			end := p.pos
			for end < len(p.src) && p.src[end] == '*' {
				end++
			}

			if end-p.pos > 1 {
				nodes = append(nodes, node{kind: kindAnySpanDeep})
				p.pathAware = true
			} else {
				nodes = append(nodes, node{kind: kindAnySpan})
			}

			p.pos = end
		case c == '%':
			nodes = append(nodes, node{kind: kindCapture})
			p.pos++
		case c == '[':
			cls, err := p.class()
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, node{kind: kindClass, class: cls})
		case c == '{':
			alts, err := p.alternation()
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, node{kind: kindAlternation, alts: alts})
		case c == Separator:
			for p.pos < len(p.src) && p.src[p.pos] == Separator {
				p.pos++
			}

			nodes = append(nodes, node{kind: kindSeparator})
			p.pathAware = true
		default:
			_, size := utf8.DecodeRuneInString(p.src[p.pos:])
			appendLiteral(p.src[p.pos : p.pos+size])
			p.pos += size
		}
	}

	return nodes, nil
}

// class parses a character class, p.pos is on the opening bracket.
func (p *parser) class() (*charClass, error) {
	p.pos++
	cls := &charClass{}

	if p.pos < len(p.src) && (p.src[p.pos] == '^' || p.src[p.pos] == '!') {
		cls.negate = true
		p.pos++
	}

	first := true

	for {
		if p.pos >= len(p.src) {
			return nil, ErrUnterminatedClass
		}

		if p.src[p.pos] == ']' && !first {
			p.pos++
			return cls, nil
		}

		first = false

		lo, err := p.classRune()
		if err != nil {
			return nil, err
		}

		hi := lo

		if p.pos+1 < len(p.src) && p.src[p.pos] == '-' && p.src[p.pos+1] != ']' {
			p.pos++

			hi, err = p.classRune()
			if err != nil {
				return nil, err
			}
		}

		cls.ranges = append(cls.ranges, runeRange{lo: lo, hi: hi})
	}
}

func (p *parser) classRune() (rune, error) {
	if p.src[p.pos] == '\\' {
		p.pos++
	}

	if p.pos >= len(p.src) {
		return 0, ErrUnterminatedClass
	}

	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size

	return r, nil
}

// alternation parses `{a,b,...}`, p.pos is on the opening brace.
func (p *parser) alternation() ([][]node, error) {
	p.pos++

	var alts [][]node

	for {
		seq, err := p.sequence(true)
		if err != nil {
			return nil, err
		}

		alts = append(alts, seq)

		if p.pos >= len(p.src) {
			return nil, ErrUnterminatedBrace
		}

		c := p.src[p.pos]
		p.pos++

		if c == '}' {
			return alts, nil
		}
	}
}

// Match is the result of a successful match.
type Match struct {
	// Candidate is the full string the pattern was tried against.
	Candidate string
	// Dir is the part of Candidate removed by the basename rule, including
	// the trailing separator. It is empty for path aware patterns.
	Dir string
	// Subject is the text the pattern matched, Candidate without Dir.
	Subject string

	start    int
	length   int
	captured bool
}

// Capture returns the text matched by `%`, if the pattern had one.
func (m Match) Capture() (string, bool) {
	if !m.captured {
		return "", false
	}

	return m.Subject[m.start : m.start+m.length], true
}

// Match reports whether candidate matches the pattern.
func (p *Pattern) Match(candidate string) (Match, bool) {
	m := Match{Candidate: candidate, Subject: candidate}

	if !p.pathAware {
		if i := strings.LastIndexByte(candidate, Separator); i >= 0 {
			m.Dir = candidate[:i+1]
			m.Subject = candidate[i+1:]
		}
	}

	st := &matchState{subject: m.Subject}
	if !st.match(p.nodes, 0) {
		return Match{}, false
	}

	m.start, m.length, m.captured = st.start, st.length, st.captured

	return m, true
}

type matchState struct {
	subject  string
	start    int
	length   int
	captured bool
}

// match is the left derivative: each node consumes a prefix of the subject
// at pos and the remaining nodes are matched against what is left.
// Spans are tried longest first.
func (st *matchState) match(nodes []node, pos int) bool {
	for len(nodes) > 0 {
		n, rest := nodes[0], nodes[1:]
		s := st.subject[pos:]

		switch n.kind {
		case kindLiteral:
			if !strings.HasPrefix(s, n.lit) {
				return false
			}

			pos += len(n.lit)

		case kindSeparator:
			if len(s) == 0 || s[0] != Separator {
				return false
			}

			for pos < len(st.subject) && st.subject[pos] == Separator {
				pos++
			}

		case kindAnyChar:
			r, size := utf8.DecodeRuneInString(s)
			if size == 0 || r == Separator {
				return false
			}

			pos += size

		case kindClass:
			r, size := utf8.DecodeRuneInString(s)
			if size == 0 || !n.class.matches(r) {
				return false
			}

			pos += size

		case kindAnySpan:
			end := strings.IndexByte(s, Separator)
			if end < 0 {
				end = len(s)
			}

			return st.longestFirst(rest, pos, end, 0)

		case kindAnySpanDeep:
			return st.longestFirst(rest, pos, len(s), 0)

		case kindCapture:
			for _, l := range runeEnds(s, len(s), 1) {
				if st.match(rest, pos+l) {
					// Set after the inner match so the leftmost capture wins.
					st.start, st.length, st.captured = pos, l, true
					return true
				}
			}

			return false

		case kindAlternation:
			for _, alt := range n.alts {
				seq := make([]node, 0, len(alt)+len(rest))
				seq = append(seq, alt...)
				seq = append(seq, rest...)

				if st.match(seq, pos) {
					return true
				}
			}

			return false
		}

		nodes = rest
	}

	return pos == len(st.subject)
}

func (st *matchState) longestFirst(rest []node, pos, maxLen, minLen int) bool {
	s := st.subject[pos:]

	for _, l := range runeEnds(s, maxLen, minLen) {
		if st.match(rest, pos+l) {
			return true
		}
	}

	return false
}

// runeEnds returns the lengths between minLen and maxLen, longest first, at
// which a prefix of s ends on a character boundary. Characters are decoded
// the way ? decodes them, so a stray invalid byte is a character of its own.
func runeEnds(s string, maxLen, minLen int) []int {
	ends := make([]int, 0, maxLen+1)
	if minLen == 0 {
		ends = append(ends, 0)
	}

	for i := 0; i < maxLen; {
		_, size := utf8.DecodeRuneInString(s[i:])
		if i += size; i > maxLen {
			break
		}

		if i >= minLen {
			ends = append(ends, i)
		}
	}

	slices.Reverse(ends)

	return ends
}

// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package trace

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "a/b-c_d.e,f:g@h+%", want: "a/b-c_d.e,f:g@h+%"},
		{in: "", want: "''"},
		{in: "hello world", want: "'hello world'"},
		{in: "it's", want: `'it'\''s'`},
		{in: "$HOME", want: "'$HOME'"},
		{in: "*.c", want: "'*.c'"},
		{in: "tab\there", want: "'tab\there'"},
		{in: "~user", want: "'~user'"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}

// parseWords reads line back with a POSIX shell parser and returns the
// fields the shell would pass to the command.
func parseWords(t *testing.T, line string) []string {
	t.Helper()

	f, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader(line), "")
	require.NoError(t, err)
	require.Len(t, f.Stmts, 1)

	call, ok := f.Stmts[0].Cmd.(*syntax.CallExpr)
	require.True(t, ok, "expected a simple command")

	words, err := expand.Fields(nil, call.Args...)
	require.NoError(t, err)

	return words
}

func TestJoinParsesBack(t *testing.T) {
	argvs := [][]string{
		{"echo", "hello world"},
		{"printf", `%s\n`, "it's", `"quoted"`},
		{"sh", "-c", "echo $1 | tr a b; exit 3", "-"},
		{"cp", "{a,b}", "[x]", "a=b", "#hash", "back`tick`"},
		{"x", "", "multi\nline"},
	}

	for _, argv := range argvs {
		t.Run(argv[0], func(t *testing.T) {
			assert.Equal(t, argv, parseWords(t, Join(argv)))
		})
	}
}

func TestTracer(t *testing.T) {
	var buf bytes.Buffer

	tr := New(&buf)
	require.NoError(t, tr.Command([]string{"echo", "a b"}))
	require.NoError(t, tr.Completed(2, 42, "exit 1", []string{"false"}))

	assert.Equal(t, "echo 'a b'\n[2] pid 42 exit 1: false\n", buf.String())
}

func TestTracerWholeLines(t *testing.T) {
	var buf bytes.Buffer

	tr := New(&buf)

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = tr.Command([]string{"echo", strings.Repeat("x", i*10)})
		}()
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 20)

	for _, l := range lines {
		assert.Regexp(t, `^echo (x+|'')$`, l)
	}
}

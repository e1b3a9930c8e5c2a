// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package rules

import (
	"context"
	"testing"

	"github.com/matt-FFFFFF/xe/internal/pattern"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFs(t *testing.T, files map[string]string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stubs := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	t.Cleanup(stubs.Reset)
}

func TestLoadYAML(t *testing.T) {
	stubFs(t, map[string]string{
		"/rules.yaml": `
rules:
  - pattern: "*.c"
    command: [cc, -c, "{}"]
  - pattern: "**/%.md"
    command:
      - pandoc
      - -o
      - "%.html"
      - "{}"
  - pattern: "*"
`,
	})

	rules, err := Load(context.Background(), "/rules.yaml")
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, "*.c", rules[0].Pattern.String())
	assert.Equal(t, []string{"cc", "-c", "{}"}, rules[0].Template)
	assert.Equal(t, []string{"pandoc", "-o", "%.html", "{}"}, rules[1].Template)
	assert.Empty(t, rules[2].Template)
}

func TestLoadHCL(t *testing.T) {
	stubFs(t, map[string]string{
		"/rules.hcl": `
rule "*.c" {
  command = ["cc", "-c", "{}"]
}

rule "{foo,bar}.txt" {
  command = ["cat"]
}

rule "*" {}
`,
	})

	rules, err := Load(context.Background(), "/rules.hcl")
	require.NoError(t, err)
	require.Len(t, rules, 3)

	assert.Equal(t, []string{"cc", "-c", "{}"}, rules[0].Template)

	_, ok := rules[1].Pattern.Match("bar.txt")
	assert.True(t, ok)
	assert.Empty(t, rules[2].Template)
}

func TestLoadErrors(t *testing.T) {
	stubFs(t, map[string]string{
		"/bad.yaml":    "rules: [",
		"/bad.hcl":     `rule {`,
		"/nopat.yaml":  "rules:\n  - command: [echo]\n",
		"/badpat.yaml": "rules:\n  - pattern: \"[a\"\n  - pattern: \"{b\"\n",
		"/unknown.hcl": `other "x" {}`,
		"/empty.yaml":  "rules: []\n",
		"/badattr.hcl": `rule "*" { command = 1 }`,
	})

	tcs := []struct {
		src  string
		want []error
	}{
		{"/bad.yaml", []error{ErrParseRules}},
		{"/bad.hcl", []error{ErrParseRules}},
		{"/unknown.hcl", []error{ErrParseRules}},
		{"/badattr.hcl", []error{ErrParseRules}},
		{"/nopat.yaml", []error{ErrInvalidRules, ErrEmptyRule}},
		{"/badpat.yaml", []error{ErrInvalidRules, pattern.ErrUnterminatedClass, pattern.ErrUnterminatedBrace}},
		{"/empty.yaml", []error{ErrInvalidRules, ErrNoRules}},
		{"", []error{ErrReadRules}},
	}

	for _, tc := range tcs {
		t.Run(tc.src, func(t *testing.T) {
			rules, err := Load(context.Background(), tc.src)
			require.Error(t, err)
			assert.Nil(t, rules)

			for _, want := range tc.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestLoadGetterFails(t *testing.T) {
	stubFs(t, nil)

	_, err := Load(context.Background(), "git::http://notexist//rules.yaml")
	require.ErrorIs(t, err, ErrReadRules)
}

func TestSplitFileNameFromGetterURL(t *testing.T) {
	tcs := []struct {
		url, wantURL, wantFile string
	}{
		{
			url:      "git::https://github.com/org/repo//rules.yaml",
			wantURL:  "git::https://github.com/org/repo",
			wantFile: "rules.yaml",
		},
		{
			url:      "git::https://github.com/org/repo//dir/sub/rules.hcl?ref=v1.0.0",
			wantURL:  "git::https://github.com/org/repo//dir/sub?ref=v1.0.0",
			wantFile: "rules.hcl",
		},
		{
			url:      "https://example.com/rules.yaml",
			wantURL:  "",
			wantFile: "",
		},
		{
			url:      "git::https://github.com/org/repo//",
			wantURL:  "",
			wantFile: "",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.url, func(t *testing.T) {
			u, f := splitFileNameFromGetterURL(tc.url)
			assert.Equal(t, tc.wantURL, u)
			assert.Equal(t, tc.wantFile, f)
		})
	}
}

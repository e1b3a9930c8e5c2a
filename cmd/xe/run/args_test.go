// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want []string
	}{
		{name: "empty", args: nil, want: []string{}},
		{name: "command only", args: []string{"echo", "a"}, want: []string{"--", "echo", "a"}},
		{
			name: "cluster with attached value",
			args: []string{"-0vj4", "echo"},
			want: []string{"--null", "--verbose", "--jobs", "4", "--", "echo"},
		},
		{
			name: "separate value",
			args: []string{"-j", "4", "-N2", "cmd"},
			want: []string{"--jobs", "4", "--max-args", "2", "--", "cmd"},
		},
		{
			name: "options after the command are left alone",
			args: []string{"-p", "*.c", "cc", "-c", "+", "*", "echo"},
			want: []string{"--patterns", "--", "*.c", "cc", "-c", "+", "*", "echo"},
		},
		{
			name: "user separator is kept",
			args: []string{"-a", "echo", "--", "-x"},
			want: []string{"--args", "--", "echo", "--", "-x"},
		},
		{name: "leading separator", args: []string{"--", "-echo"}, want: []string{"--", "-echo"}},
		{name: "long with value", args: []string{"--jobs", "2", "echo"}, want: []string{"--jobs", "2", "--", "echo"}},
		{name: "long with empty value", args: []string{"--replace=", "echo"}, want: []string{"--replace", "", "--", "echo"}},
		{name: "long bool with value", args: []string{"--verbose=false", "ls"}, want: []string{"--verbose=false", "--", "ls"}},
		{name: "counted", args: []string{"-vv", "ls"}, want: []string{"--verbose", "--verbose", "--", "ls"}},
		{name: "value starting with dash", args: []string{"-N", "-1", "ls"}, want: []string{"--max-args", "-1", "--", "ls"}},
		{name: "lone dash is a command", args: []string{"-", "x"}, want: []string{"--", "-", "x"}},
		{name: "script", args: []string{"-s", "echo $1"}, want: []string{"--shell", "echo $1"}},
		{name: "help", args: []string{"-h"}, want: []string{"--help"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := normalize(tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want error
	}{
		{name: "unknown short", args: []string{"-x", "echo"}, want: ErrUnknownOption},
		{name: "unknown in cluster", args: []string{"-vx"}, want: ErrUnknownOption},
		{name: "missing short value", args: []string{"-j"}, want: ErrMissingValue},
		{name: "missing value after cluster", args: []string{"-vI"}, want: ErrMissingValue},
		{name: "missing long value", args: []string{"--jobs"}, want: ErrMissingValue},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := normalize(tc.args)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSplitAt(t *testing.T) {
	t.Parallel()

	command, args, found := splitAt([]string{"echo", "-n", "--", "a", "--", "b"}, "--")
	assert.True(t, found)
	assert.Equal(t, []string{"echo", "-n"}, command)
	assert.Equal(t, []string{"a", "--", "b"}, args)

	command, args, found = splitAt([]string{"echo", "a"}, ":::")
	assert.False(t, found)
	assert.Equal(t, []string{"echo", "a"}, command)
	assert.Empty(t, args)
}

func TestParseJobs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		cpus int
		want int
	}{
		{in: "4", cpus: 8, want: 4},
		{in: "1", cpus: 8, want: 1},
		{in: "0", cpus: 8, want: 8},
		{in: "2x", cpus: 4, want: 8},
		{in: "1.5x", cpus: 3, want: 5},
		{in: "0.1x", cpus: 2, want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()

			got, err := parseJobs(tc.in, tc.cpus)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, in := range []string{"", "-1", "abc", "x", "0x", "-2x", "2.5"} {
		t.Run("invalid "+in, func(t *testing.T) {
			t.Parallel()

			_, err := parseJobs(in, 4)
			assert.ErrorIs(t, err, ErrInvalidJobs)
		})
	}
}

// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrUnknownOption is returned for an unknown short option.
	ErrUnknownOption = errors.New("unknown option")
	// ErrMissingValue is returned when an option is missing its value.
	ErrMissingValue = errors.New("option requires a value")
	// ErrInvalidJobs is returned when the number of jobs cannot be parsed.
	ErrInvalidJobs = errors.New("invalid number of jobs")
)

type shortOption struct {
	long  string
	value bool
}

var shortOptions = map[byte]shortOption{
	'0': {nullFlag, false},
	'a': {argsFlag, false},
	'A': {argSepFlag, true},
	'f': {argFileFlag, true},
	'F': {failFastFlag, false},
	'h': {"help", false},
	'I': {replaceFlag, true},
	'j': {jobsFlag, true},
	'k': {keepGoingFlag, false},
	'L': {linePrefixFlag, false},
	'n': {dryRunFlag, false},
	'N': {maxArgsFlag, true},
	'p': {patternsFlag, false},
	'r': {rulesFlag, true},
	'R': {requireRunFlag, false},
	's': {shellFlag, true},
	'v': {verboseFlag, false},
}

var valueFlags = []string{argSepFlag, argFileFlag, replaceFlag, jobsFlag, maxArgsFlag, rulesFlag, shellFlag, maxBytesFlag}

// normalize rewrites the command line so that option parsing stops at the
// first command word, the way getopt does with a leading "+" in its option
// string. Short option clusters such as -0vj4 are expanded to long options,
// each value becomes its own word and a "--" is put in front of the command.
func normalize(args []string) ([]string, error) {
	out := make([]string, 0, len(args)+1)

	for i := 0; i < len(args); i++ {
		a := args[i]

		switch {
		case a == "--":
			return append(out, args[i:]...), nil

		case strings.HasPrefix(a, "--"):
			name, value, hasValue := strings.Cut(a[2:], "=")

			switch {
			case !slices.Contains(valueFlags, name):
				out = append(out, a)
			case hasValue:
				out = append(out, "--"+name, value)
			case i+1 >= len(args):
				return nil, fmt.Errorf("%w: --%s", ErrMissingValue, name)
			default:
				i++
				out = append(out, a, args[i])
			}

		case len(a) > 1 && a[0] == '-':
			for j := 1; j < len(a); j++ {
				o, ok := shortOptions[a[j]]
				if !ok {
					return nil, fmt.Errorf("%w: -%c", ErrUnknownOption, a[j])
				}

				if !o.value {
					out = append(out, "--"+o.long)
					continue
				}

				value := a[j+1:]
				if value == "" {
					if i+1 >= len(args) {
						return nil, fmt.Errorf("%w: -%c", ErrMissingValue, a[j])
					}

					i++
					value = args[i]
				}

				out = append(out, "--"+o.long, value)

				break
			}

		default:
			out = append(out, "--")
			return append(out, args[i:]...), nil
		}
	}

	return out, nil
}

// splitAt splits words at the first occurrence of sep. found is false if
// sep does not occur, in which case all words belong to the command.
func splitAt(words []string, sep string) (command, args []string, found bool) {
	i := slices.Index(words, sep)
	if i < 0 {
		return words, nil, false
	}

	return words[:i], words[i+1:], true
}

// parseJobs parses the value of --jobs: a number, 0 for one job per CPU, or
// a multiple of the CPU count such as 2x or 1.5x.
func parseJobs(s string, cpus int) (int, error) {
	if m, ok := strings.CutSuffix(s, "x"); ok {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil || f <= 0 || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidJobs, s)
		}

		return max(1, int(math.Ceil(f*float64(cpus)))), nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidJobs, s)
	}

	if n == 0 {
		return cpus, nil
	}

	return n, nil
}

func numCPU() int {
	return runtime.NumCPU()
}

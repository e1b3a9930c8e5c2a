// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	reset     = "\033[0m"
	prefix    = "\033["
	suffix    = "m"
	sbPadding = 16
)

// Code represents an ANSI control code for text formatting.
type Code int

// Text attributes.
const (
	Reset Code = 0
	Bold  Code = 1
	Faint Code = 2
)

// Foreground colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Bright foreground colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

// Status glyphs.
const (
	GlyphSuccess = "✓"
	GlyphFailure = "✗"
	GlyphFatal   = "!"
)

var enabled = isColorCapable()

// ControlString returns the escape sequence selecting codes.
func ControlString(codes ...Code) string {
	var sb strings.Builder

	sb.Grow(len(prefix) + len(suffix) + sbPadding)
	writeControl(&sb, codes)

	return sb.String()
}

func writeControl(sb *strings.Builder, codes []Code) {
	sb.WriteString(prefix)

	for i, code := range codes {
		if i > 0 {
			sb.WriteByte(';')
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)
}

// Paint wraps str in the escape sequences for codes and a reset,
// regardless of whether color output is enabled.
func Paint(str string, codes ...Code) string {
	var sb strings.Builder

	sb.Grow(len(str) + len(prefix) + len(suffix) + len(reset) + sbPadding)
	writeControl(&sb, codes)
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

// Colorize is Paint when color output is enabled and returns str unchanged otherwise.
func Colorize(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	return Paint(str, codes...)
}

// Enabled reports whether color output is enabled. It is decided once at
// start up: NO_COLOR disables color, otherwise FORCE_COLOR enables it,
// otherwise color is used when standard error is a terminal.
func Enabled() bool {
	return enabled
}

func isColorCapable() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stderr.Fd()))
}

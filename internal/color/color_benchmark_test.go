// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import "testing"

func BenchmarkPaintGlyphs(b *testing.B) {
	glyphs := []struct {
		s    string
		code Code
	}{
		{GlyphSuccess, FgGreen},
		{GlyphFailure, FgRed},
		{GlyphFatal, FgHiMagenta},
	}

	for b.Loop() {
		for _, g := range glyphs {
			Paint(g.s, g.code, Bold)
		}
	}
}

func BenchmarkControlString(b *testing.B) {
	for b.Loop() {
		ControlString(Bold, FgHiMagenta)
	}
}

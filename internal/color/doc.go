// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color decorates diagnostics with ANSI escape sequences.
// Whether color is used follows the NO_COLOR and FORCE_COLOR conventions
// and falls back to checking whether standard error is a terminal.
package color

// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pattern implements the extended glob used to dispatch arguments to
// command templates, and the substitution that rebuilds template tokens from
// a match.
//
// The grammar understands literals, `?`, `*`, `**`, `%` (a non-empty capture),
// character classes such as `[a-z]` or `[!0-9]` and brace alternation such as
// `{foo,bar}`. Patterns are matched against strings in memory, never against
// the filesystem. A pattern without a `/` and without `**` is matched against
// the last path segment of the candidate only.
package pattern

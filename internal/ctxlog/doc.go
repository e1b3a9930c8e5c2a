// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog logger in a context.Context.
//
// Diagnostics go to standard error so they never mix with the output of
// the jobs. The default handler prints a timestamp, the level, the message
// and the attributes as indented JSON. The level is taken from the
// XE_LOG_LEVEL environment variable (DEBUG, INFO, WARN or ERROR, default
// WARN) and XE_LOG_FORMAT=json switches to one JSON object per record.
package ctxlog

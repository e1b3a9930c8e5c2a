// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the xe command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/xe/cmd/xe/run"
	"github.com/matt-FFFFFF/xe/internal/ctxlog"
	"github.com/matt-FFFFFF/xe/internal/driver"
	"github.com/matt-FFFFFF/xe/internal/signalbroker"
	"github.com/matt-FFFFFF/xe/internal/status"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.FromEnv())

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	err := run.Execute(ctx, run.NewCommand(), os.Args)

	cancel()

	code := status.Code(err)

	switch {
	case err == nil:
		ctxlog.Debug(ctx, "command completed successfully")
	case status.Interrupted(err):
		ctxlog.Error(ctx, "command terminated due to cancellation", "error", err)
	case errors.Is(err, driver.ErrJobsFailed), errors.Is(err, driver.ErrNothingToDo):
		ctxlog.Info(ctx, "command finished", "status", code, "error", err)
	default:
		ctxlog.Error(ctx, "command execution failed", "status", code, "error", err)
	}

	os.Exit(code) //nolint:gocritic
}

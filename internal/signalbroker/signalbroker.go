// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker turns termination signals into context cancellation.
//
// Jobs run in the foreground process group of xe, so a terminal interrupt
// reaches them directly and their exit status is reported as usual. xe
// itself keeps running after the first signal and only gives up, by
// cancelling its context, when the same signal arrives a second time.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/xe/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New starts relaying sigs, or the termination signals if none are given,
// to the returned channel.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop ends the relaying of signals to ch.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}

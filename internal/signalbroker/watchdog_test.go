// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/matt-FFFFFF/xe/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("os/signal.loop"))
}

func testContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	return ctx, cancel
}

func startWatch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) *sync.WaitGroup {
	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel)
	}()

	return &wg
}

func TestWatch_FirstSignalNoCancel(t *testing.T) {
	ctx, cancel := testContext(t)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	wg := startWatch(ctx, sigCh, cancel)

	sigCh <- os.Interrupt

	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, ctx.Err(), "context should not be cancelled after first signal")

	close(sigCh)
	wg.Wait()
}

func TestWatch_SecondSignalCancels(t *testing.T) {
	ctx, cancel := testContext(t)
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	wg := startWatch(ctx, sigCh, cancel)

	sigCh <- syscall.SIGTERM
	sigCh <- syscall.SIGTERM

	wg.Wait()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestWatch_DifferentSignalsNoCancel(t *testing.T) {
	ctx, cancel := testContext(t)
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	wg := startWatch(ctx, sigCh, cancel)

	sigCh <- syscall.SIGINT
	sigCh <- syscall.SIGTERM

	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, ctx.Err(), "context should not be cancelled for different signals")

	cancel()
	wg.Wait()
}

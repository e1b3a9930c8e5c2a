// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build unix

package signalbroker

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRelaysSignals(t *testing.T) {
	ctx, cancel := testContext(t)
	defer cancel()

	ch := New(ctx, syscall.SIGUSR1)
	defer Stop(ch)

	assert.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGUSR1))

	select {
	case sig := <-ch:
		assert.Equal(t, syscall.SIGUSR1, sig)
	case <-time.After(5 * time.Second):
		t.Fatal("signal was not relayed")
	}
}

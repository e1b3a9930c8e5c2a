// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/xe/internal/ctxlog"
)

// Watch reads sigCh until ctx is done or sigCh is closed. The second
// signal of the same kind calls cancel and stops relaying to sigCh.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	logger := ctxlog.Logger(ctx)
	seen := make(map[os.Signal]struct{})

	for {
		var (
			sig os.Signal
			ok  bool
		)

		select {
		case <-ctx.Done():
			return
		case sig, ok = <-sigCh:
			if !ok {
				return
			}
		}

		if _, dup := seen[sig]; dup {
			logger.Warn("received signal again, stopping", "signal", sig.String())
			Stop(sigCh)
			cancel()

			return
		}

		logger.Warn("received signal, waiting for running jobs; repeat to stop", "signal", sig.String())

		seen[sig] = struct{}{}
	}
}

//
// Date: 2026-10-13
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Package loop turns a play command into looped playback on a
// Spotify Connect device and stops it again at the requested time.
//

// Package loop is the command interpretation and playback orchestration
// engine. Entry point is Engine.Orchestrate.
package loop

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
)

// sleep waits d on clock, returning early with ctx's error if it is done.
func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	select {
	case <-clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// attempt runs a best-effort step. Its failure is logged and dropped.
func attempt(logger *log.Logger, step string, fn func() error) {
	if err := fn(); err != nil {
		logger.Debug("best-effort step failed", "step", step, "err", err)
	}
}

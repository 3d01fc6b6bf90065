//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Unattended stop of looped playback at the deadline.
//

package loop

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-loop/metrics"
	"github.com/cloudmanic/spotify-loop/spotify"
	"github.com/jonboulle/clockwork"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// StopTask is a pending fire-once pause of one device. It is not tracked
// anywhere; whoever holds it may wait on or cancel it.
type StopTask struct {
	DeviceID spotifyLib.ID
	Deadline time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel abandons the stop if it has not fired yet.
func (t *StopTask) Cancel() {
	t.cancel()
}

// Done is closed once the task has paused the device or was canceled.
func (t *StopTask) Done() <-chan struct{} {
	return t.done
}

// StopScheduler spawns stop tasks. Each task acquires its own client when it
// fires, since the request that scheduled it is long gone by then.
type StopScheduler struct {
	provider spotify.Provider
	clock    clockwork.Clock
	logger   *log.Logger
}

// NewStopScheduler returns a scheduler pausing devices through provider.
func NewStopScheduler(provider spotify.Provider, clock clockwork.Clock, logger *log.Logger) *StopScheduler {
	return &StopScheduler{provider: provider, clock: clock, logger: logger}
}

// Schedule pauses deviceID at deadline, or right away if it already passed.
// Failures are logged and dropped.
func (s *StopScheduler) Schedule(deviceID spotifyLib.ID, deadline time.Time) *StopTask {
	ctx, cancel := context.WithCancel(context.Background())
	task := &StopTask{
		DeviceID: deviceID,
		Deadline: deadline,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	metrics.PendingStops.Inc()
	go s.run(task)

	return task
}

func (s *StopScheduler) run(task *StopTask) {
	defer close(task.done)
	defer task.cancel()
	defer metrics.PendingStops.Dec()

	timer := s.clock.NewTimer(s.clock.Until(task.Deadline))
	defer timer.Stop()

	select {
	case <-timer.Chan():
	case <-task.ctx.Done():
		metrics.StopsTotal.WithLabelValues("canceled").Inc()
		s.logger.Info("stop canceled", "device", task.DeviceID)
		return
	}

	client, err := s.provider.Client(task.ctx)
	if err != nil {
		metrics.StopsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("stop skipped, no spotify client", "device", task.DeviceID, "err", err)
		return
	}

	attempt(s.logger, "stop pause", func() error {
		return client.PauseOpt(task.ctx, &spotifyLib.PlayOptions{DeviceID: &task.DeviceID})
	})

	metrics.StopsTotal.WithLabelValues("fired").Inc()
	s.logger.Info("playback stopped", "device", task.DeviceID, "deadline", task.Deadline)
}

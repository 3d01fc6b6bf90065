//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Deterministic playback start on Spotify Connect devices.
//

package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-loop/metrics"
	"github.com/cloudmanic/spotify-loop/spotify"
	"github.com/jonboulle/clockwork"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// Timings holds the waits and retry knobs of the activator. Some Connect
// devices resume stale state on transfer, ignore a play issued right after
// one, or resume mid-track; these values give them room to settle.
type Timings struct {
	DeviceWait        time.Duration
	DevicePoll        time.Duration
	Settle            time.Duration
	Verify            time.Duration
	RetryBackoff      time.Duration
	Attempts          int
	ProgressThreshold time.Duration
}

// DefaultTimings returns the production timings.
func DefaultTimings() Timings {
	return Timings{
		DeviceWait:        8 * time.Second,
		DevicePoll:        600 * time.Millisecond,
		Settle:            700 * time.Millisecond,
		Verify:            time.Second,
		RetryBackoff:      800 * time.Millisecond,
		Attempts:          2,
		ProgressThreshold: 2 * time.Second,
	}
}

// Activator forces a device into a known state and starts the session.
type Activator struct {
	clock   clockwork.Clock
	logger  *log.Logger
	timings Timings
}

// NewActivator returns an Activator using the given clock and timings.
func NewActivator(clock clockwork.Clock, logger *log.Logger, timings Timings) *Activator {
	if timings.Attempts < 1 {
		timings.Attempts = 1
	}
	return &Activator{clock: clock, logger: logger, timings: timings}
}

// WaitForDevice polls the device list until deviceID is visible, then hands
// playback to it without starting it. It returns ErrDeviceNotActive when the
// device does not show up within the wait window.
func (a *Activator) WaitForDevice(ctx context.Context, client spotify.Client, deviceID spotifyLib.ID) error {
	start := a.clock.Now()

	for a.clock.Since(start) < a.timings.DeviceWait {
		devices, err := client.PlayerDevices(ctx)
		if err != nil {
			a.logger.Debug("device poll failed", "device", deviceID, "err", err)
		} else if visible(devices, deviceID) {
			attempt(a.logger, "transfer", func() error {
				return client.TransferPlayback(ctx, deviceID, false)
			})
			return nil
		}

		if err := sleep(ctx, a.clock, a.timings.DevicePoll); err != nil {
			return remoteError("wait for device", err)
		}
	}

	return newError(CodeDeviceNotActive,
		fmt.Sprintf("device %s is not visible on Spotify Connect", deviceID), nil)
}

// HardStart runs one pause, transfer, play, verify sequence. Only the play
// call's error is returned; verified reports whether the device ended up
// playing the session playlist.
func (a *Activator) HardStart(ctx context.Context, client spotify.Client, deviceID spotifyLib.ID, playlistURI spotifyLib.URI) (verified bool, err error) {
	target := &spotifyLib.PlayOptions{DeviceID: &deviceID}

	attempt(a.logger, "pause", func() error {
		return client.PauseOpt(ctx, target)
	})
	attempt(a.logger, "transfer", func() error {
		return client.TransferPlayback(ctx, deviceID, true)
	})
	if err := sleep(ctx, a.clock, a.timings.Settle); err != nil {
		return false, err
	}

	position := 0
	err = client.PlayOpt(ctx, &spotifyLib.PlayOptions{
		DeviceID:        &deviceID,
		PlaybackContext: &playlistURI,
		PlaybackOffset:  &spotifyLib.PlaybackOffset{Position: &position},
	})
	if err != nil {
		return false, fmt.Errorf("failed to start playback: %w", err)
	}

	if err := sleep(ctx, a.clock, a.timings.Verify); err != nil {
		return false, nil
	}

	return a.verify(ctx, client, deviceID, playlistURI), nil
}

// verify reads the player state and checks the session is the context.
// A device that resumed mid-track is sought back to the start.
func (a *Activator) verify(ctx context.Context, client spotify.Client, deviceID spotifyLib.ID, playlistURI spotifyLib.URI) bool {
	state, err := client.PlayerState(ctx)
	if err != nil {
		a.logger.Debug("playback verification failed", "device", deviceID, "err", err)
		return false
	}
	if state == nil || state.PlaybackContext.URI != playlistURI {
		return false
	}

	progress := time.Duration(state.Progress) * time.Millisecond
	if state.Item != nil && progress > a.timings.ProgressThreshold {
		attempt(a.logger, "seek", func() error {
			return client.SeekOpt(ctx, 0, &spotifyLib.PlayOptions{DeviceID: &deviceID})
		})
	}

	return true
}

// Start runs HardStart up to Attempts times with RetryBackoff between runs.
func (a *Activator) Start(ctx context.Context, client spotify.Client, deviceID spotifyLib.ID, playlistURI spotifyLib.URI) error {
	for n := 1; n <= a.timings.Attempts; n++ {
		if n > 1 {
			if err := sleep(ctx, a.clock, a.timings.RetryBackoff); err != nil {
				return remoteError("start playback", err)
			}
		}

		verified, err := a.HardStart(ctx, client, deviceID, playlistURI)
		if err != nil {
			metrics.HardStartAttempts.WithLabelValues("error").Inc()
			return remoteError("start playback", err)
		}
		if verified {
			metrics.HardStartAttempts.WithLabelValues("verified").Inc()
			return nil
		}

		metrics.HardStartAttempts.WithLabelValues("unverified").Inc()
		a.logger.Info("playback not confirmed on device", "device", deviceID, "attempt", n)
	}

	return newError(CodePlaybackStartFailed,
		"could not switch playback to the session playlist", nil)
}

// ConfigureLoop turns shuffle off and context repeat on, skipping each
// control Spotify currently disallows.
func (a *Activator) ConfigureLoop(ctx context.Context, client spotify.Client, deviceID spotifyLib.ID) {
	disallows, err := client.PlaybackDisallows(ctx)
	if err != nil {
		a.logger.Debug("could not read playback disallows", "err", err)
		return
	}

	target := &spotifyLib.PlayOptions{DeviceID: &deviceID}
	if !disallows.TogglingShuffle {
		attempt(a.logger, "shuffle off", func() error {
			return client.ShuffleOpt(ctx, false, target)
		})
	}
	if !disallows.TogglingRepeatContext {
		attempt(a.logger, "repeat context", func() error {
			return client.RepeatOpt(ctx, spotify.RepeatContext, target)
		})
	}
}

func visible(devices []spotifyLib.PlayerDevice, id spotifyLib.ID) bool {
	for _, d := range devices {
		if d.ID == id {
			return true
		}
	}
	return false
}

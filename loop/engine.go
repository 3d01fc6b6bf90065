//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Orchestration of a play command from text to scheduled stop.
//

package loop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-loop/metrics"
	"github.com/cloudmanic/spotify-loop/spotify"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// Options configures an Engine.
type Options struct {
	// DefaultDevice is the device hint used when a command names none.
	DefaultDevice      string
	DefaultLength      time.Duration
	PlaylistPrefix     string
	Repeats            int
	ConsistencyTimeout time.Duration
	ConsistencyPoll    time.Duration
	// AppendRate caps add-tracks requests per second; 0 disables pacing.
	AppendRate float64
	Timings    Timings
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		DefaultLength:      DefaultSessionLength,
		PlaylistPrefix:     DefaultPlaylistPrefix,
		Repeats:            DefaultRepeats,
		ConsistencyTimeout: DefaultConsistencyTimeout,
		ConsistencyPoll:    DefaultConsistencyPoll,
		AppendRate:         5,
		Timings:            DefaultTimings(),
	}
}

// Result describes a started loop.
type Result struct {
	TrackCount  int
	StopAt      time.Time
	DeviceID    spotifyLib.ID
	DeviceName  string
	PlaylistURI spotifyLib.URI
	// Stop is the pending stop for this loop.
	Stop *StopTask
}

// Engine runs play commands against Spotify.
type Engine struct {
	provider  spotify.Provider
	clock     clockwork.Clock
	logger    *log.Logger
	opts      Options
	sessions  *SessionBuilder
	activator *Activator
	stops     *StopScheduler

	// mu serializes session creation through activation so two bursts of
	// the same command cannot race for one device.
	mu sync.Mutex
}

// NewEngine wires an Engine. A nil clock means the real clock and a nil
// logger means the default logger. Zero options take their defaults; a
// zero Timings means DefaultTimings.
func NewEngine(provider spotify.Provider, clock clockwork.Clock, logger *log.Logger, opts Options) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.PlaylistPrefix == "" {
		opts.PlaylistPrefix = DefaultPlaylistPrefix
	}
	if opts.Repeats < 1 {
		opts.Repeats = DefaultRepeats
	}
	if opts.DefaultLength <= 0 {
		opts.DefaultLength = DefaultSessionLength
	}
	if opts.ConsistencyTimeout <= 0 {
		opts.ConsistencyTimeout = DefaultConsistencyTimeout
	}
	if opts.ConsistencyPoll <= 0 {
		opts.ConsistencyPoll = DefaultConsistencyPoll
	}
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}
	if opts.Timings.DeviceWait <= 0 {
		opts.Timings.DeviceWait = DefaultTimings().DeviceWait
	}

	return &Engine{
		provider:  provider,
		clock:     clock,
		logger:    logger,
		opts:      opts,
		sessions:  NewSessionBuilder(clock, logger, opts),
		activator: NewActivator(clock, logger, opts.Timings),
		stops:     NewStopScheduler(provider, clock, logger),
	}
}

// Orchestrate parses command, starts the loop on the chosen device and
// schedules its stop. It returns once playback is confirmed; the stop runs
// in the background. Every failure is an *Error.
func (e *Engine) Orchestrate(ctx context.Context, command string, now time.Time) (*Result, error) {
	logger := e.logger.With("run", uuid.NewString())

	result, err := e.orchestrate(ctx, logger, command, now)
	if err != nil {
		metrics.OrchestrationsTotal.WithLabelValues(string(CodeOf(err))).Inc()
		logger.Warn("play command failed", "code", CodeOf(err), "err", err)
		return nil, err
	}

	metrics.OrchestrationsTotal.WithLabelValues("ok").Inc()
	logger.Info("loop started",
		"tracks", result.TrackCount,
		"device", result.DeviceName,
		"playlist", result.PlaylistURI,
		"stop_at", result.StopAt.Format(time.RFC3339))

	return result, nil
}

func (e *Engine) orchestrate(ctx context.Context, logger *log.Logger, command string, now time.Time) (*Result, error) {
	cmd, err := ParseCommand(command)
	if err != nil {
		return nil, err
	}

	stopAt, err := ResolveDeadline(cmd.Until, now, e.opts.DefaultLength)
	if err != nil {
		return nil, err
	}

	client, err := e.provider.Client(ctx)
	if errors.Is(err, spotify.ErrNotAuthenticated) {
		return nil, newError(CodeUnauthenticated, "spotify is not authorized, visit /login first", err)
	}
	if err != nil {
		return nil, remoteError("get spotify client", err)
	}

	tracks, err := ResolveTracks(ctx, client, cmd.Queries)
	if err != nil {
		return nil, err
	}
	logger.Debug("tracks resolved", "count", len(tracks))

	devices, err := client.PlayerDevices(ctx)
	if err != nil {
		return nil, remoteError("list devices", err)
	}

	hint := cmd.Device
	if hint == "" {
		hint = e.opts.DefaultDevice
	}
	device, ok := SelectDevice(hint, devices)
	if !ok {
		return nil, newError(CodeNoDeviceAvailable,
			"no Spotify device found, open Spotify on your phone or computer", nil)
	}
	logger.Debug("device selected", "device", device.Name, "hint", hint)

	e.mu.Lock()
	defer e.mu.Unlock()

	// Past this point the run touches the user's playback and must finish
	// with a stop scheduled, so it no longer follows the caller's context.
	ctx = context.WithoutCancel(ctx)

	session, err := e.sessions.Build(ctx, client, tracks)
	if err != nil {
		return nil, err
	}
	logger.Debug("session playlist ready", "playlist", session.URI, "items", session.Expected)

	if err := e.activator.WaitForDevice(ctx, client, device.ID); err != nil {
		return nil, err
	}
	if err := e.activator.Start(ctx, client, device.ID, session.URI); err != nil {
		return nil, err
	}
	e.activator.ConfigureLoop(ctx, client, device.ID)

	return &Result{
		TrackCount:  len(tracks),
		StopAt:      stopAt,
		DeviceID:    device.ID,
		DeviceName:  device.Name,
		PlaylistURI: session.URI,
		Stop:        e.stops.Schedule(device.ID, stopAt),
	}, nil
}

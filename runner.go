//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Command actions for the CLI.
//

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-loop/config"
	"github.com/cloudmanic/spotify-loop/loop"
	"github.com/cloudmanic/spotify-loop/server"
	"github.com/cloudmanic/spotify-loop/spotify"
	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v3"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	cfg      *config.Config
	provider spotify.Provider
	auth     server.Authorizer
	engine   *loop.Engine
	clock    clockwork.Clock
	location *time.Location
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *config.Config
	Provider spotify.Provider
	Auth     server.Authorizer
	Clock    clockwork.Clock
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.New("runner needs a config")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = opts.Config.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	location, err := opts.Config.Location()
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:      opts.Config,
		provider: opts.Provider,
		auth:     opts.Auth,
		engine:   loop.NewEngine(opts.Provider, opts.Clock, opts.Logger, opts.Config.EngineOptions()),
		clock:    opts.Clock,
		location: location,
		logger:   opts.Logger,
		output:   opts.Output,
	}, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, playCommand, pauseCommand, devicesCommand, statusCommand, loginCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	srv := server.New(server.Options{
		Engine:      r.engine,
		Auth:        r.auth,
		Provider:    r.provider,
		AccessToken: r.cfg.APIAccessToken,
		Clock:       r.clock,
		Location:    r.location,
		Logger:      r.logger,
	})

	if r.cfg.APIAccessToken == "" {
		r.logger.Warn("API_ACCESS_TOKEN is not set, the API is open to anyone who can reach it")
	}

	return srv.ListenAndServe(ctx, cmd.String("port"))
}

// Play runs the command given as arguments. Unless --detach is set it stays
// around until the loop is paused at its deadline.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	text := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if text == "" {
		return fmt.Errorf("%w: expected a command such as 'play \"Song\" in loop till 15 minutes'", loop.ErrMalformedCommand)
	}

	now := r.clock.Now().In(r.location)
	result, err := r.engine.Orchestrate(ctx, text, now)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen, color.Bold)
	green.Fprintf(r.output, "▶ Looping %d track(s) on %s until %s\n",
		result.TrackCount, result.DeviceName, result.StopAt.Format("Mon 3:04 PM"))
	fmt.Fprintf(r.output, "  Playlist: %s\n", color.HiBlackString(string(result.PlaylistURI)))

	if cmd.Bool("detach") {
		fmt.Fprintln(r.output, "  Detached, playback will not be paused automatically.")
		result.Stop.Cancel()
		return nil
	}

	select {
	case <-result.Stop.Done():
		color.New(color.FgCyan).Fprintln(r.output, "■ Loop finished, playback paused")
	case <-ctx.Done():
		result.Stop.Cancel()
		fmt.Fprintln(r.output, "Interrupted, playback keeps going.")
	}

	return nil
}

// Pause pauses playback.
func (r *Runner) Pause(ctx context.Context, cmd *cli.Command) error {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	msg, err := spotify.PausePlayback(ctx, client, cmd.String("device"))
	if err != nil {
		return err
	}

	fmt.Fprintln(r.output, msg)
	return nil
}

// Devices prints the available Connect devices.
func (r *Runner) Devices(ctx context.Context, cmd *cli.Command) error {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	devices, err := client.PlayerDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(r.output)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	}

	hint := cmd.String("hint")
	if hint == "" {
		hint = r.cfg.DefaultDeviceName
	}

	var target spotifyLib.ID
	if d, ok := loop.SelectDevice(hint, devices); ok {
		target = d.ID
	}

	spotify.PrintDevicesTable(r.output, devices, target)
	return nil
}

// Status prints what is currently playing.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	p, err := spotify.CurrentPlayback(ctx, client)
	if err != nil {
		return err
	}

	if p.Device == "" {
		fmt.Fprintln(r.output, "Nothing is playing.")
		return nil
	}

	state := "Paused"
	if p.Playing {
		state = color.GreenString("Playing")
	}

	fmt.Fprintf(r.output, "%s on %s\n", state, color.New(color.Bold).Sprint(p.Device))
	if p.Track != "" {
		fmt.Fprintf(r.output, "  Track:   %s - %s (%s)\n", p.Track, p.Artist,
			(time.Duration(p.ProgressMS) * time.Millisecond).Truncate(time.Second))
	}
	if p.Context != "" {
		fmt.Fprintf(r.output, "  Context: %s\n", p.Context)
	}
	fmt.Fprintf(r.output, "  Shuffle: %v  Repeat: %s\n", p.Shuffle, p.Repeat)

	return nil
}

//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Spotify loop agent. Turns commands like
// `play "Song" in loop till 15 minutes on iPhone` into a private session
// playlist looping on a Spotify Connect device, paused at the deadline.
//

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-loop/config"
	"github.com/cloudmanic/spotify-loop/loop"
	"github.com/cloudmanic/spotify-loop/spotify"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

// main is the entry point for the application. It loads configuration,
// wires the loop engine and runs the requested command.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	logger := cfg.NewLogger(nil)

	auth := spotify.NewAuthenticator(
		cfg.SpotifyClientID,
		cfg.SpotifyClientSecret,
		cfg.SpotifyRedirectURI,
		spotify.NewTokenStore(cfg.TokenFile),
		logger,
	)

	runner, err := NewRunner(RunnerOpts{
		Config:   cfg,
		Provider: auth,
		Auth:     auth,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to start", "err", err)
	}

	app := &cli.Command{
		Name:     "spotify-loop",
		Usage:    "Loop Spotify tracks on a Connect device until a deadline",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		var le *loop.Error
		if errors.As(err, &le) {
			color.Red("✗ %v", err)
			stop()
			os.Exit(1)
		}
		logger.Fatal("application error", "err", err)
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API for remote play commands",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				Value:   r.cfg.Port,
			},
		},
		Action: r.Serve,
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Run a play command, e.g. play '\"Song - Artist\" in loop till 15 minutes on iPhone'",
		ArgsUsage: "<command>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "detach",
				Aliases: []string{"d"},
				Usage:   "Return once playback starts instead of waiting for the stop",
			},
		},
		Action: r.Play,
	}
}

func pauseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "pause",
		Usage: "Pause playback",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "device",
				Usage: "Device ID to pause",
			},
		},
		Action: r.Pause,
	}
}

func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List available Spotify Connect devices",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:  "hint",
				Usage: "Device name hint to preview (defaults to DEFAULT_DEVICE_NAME)",
			},
		},
		Action: r.Devices,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show what is playing",
		Action: r.Status,
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Authorize with Spotify and save the token",
		Action: r.Login,
	}
}

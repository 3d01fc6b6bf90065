//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Configuration loaded from the environment and an optional .env file.
//

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-loop/loop"
	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds every setting of the loop agent.
type Config struct {
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRedirectURI  string `env:"SPOTIFY_REDIRECT_URI" default:"http://127.0.0.1:8080/callback"`
	TokenFile           string `env:"TOKEN_FILE" default:".spotify_token.json"`
	APIAccessToken      string `env:"API_ACCESS_TOKEN"`

	Port     string `env:"PORT" default:"8080"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`

	DefaultDeviceName string `env:"DEFAULT_DEVICE_NAME"`
	Timezone          string `env:"LOOP_TIMEZONE"`
	PlaylistPrefix    string `env:"PLAYLIST_PREFIX" default:"Loop Agent"`
	LoopRepeats       int    `env:"LOOP_REPEATS" default:"200"`

	DefaultSessionLength time.Duration `env:"DEFAULT_SESSION_LENGTH" default:"2h"`
	ConsistencyTimeout   time.Duration `env:"CONSISTENCY_TIMEOUT" default:"15s"`
	DeviceWaitTimeout    time.Duration `env:"DEVICE_WAIT_TIMEOUT" default:"8s"`
	StartAttempts        int           `env:"START_ATTEMPTS" default:"2"`
	StartRetryBackoff    time.Duration `env:"START_RETRY_BACKOFF" default:"800ms"`
	AppendRate           float64       `env:"APPEND_RATE" default:"5"`
}

// Load reads .env (if present) and the environment into a validated Config.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		return errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET environment variables are required")
	}
	if cfg.LoopRepeats < 1 {
		return errors.New("LOOP_REPEATS must be at least 1")
	}
	if cfg.StartAttempts < 1 {
		return errors.New("START_ATTEMPTS must be at least 1")
	}
	if cfg.DefaultSessionLength <= 0 {
		return errors.New("DEFAULT_SESSION_LENGTH must be positive")
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the zone play commands are interpreted in, the host's
// local zone when LOOP_TIMEZONE is unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("LOOP_TIMEZONE is invalid: %w", err)
	}
	return loc, nil
}

// EngineOptions maps the configuration onto loop engine options.
func (c *Config) EngineOptions() loop.Options {
	opts := loop.DefaultOptions()
	opts.DefaultDevice = c.DefaultDeviceName
	opts.DefaultLength = c.DefaultSessionLength
	opts.PlaylistPrefix = c.PlaylistPrefix
	opts.Repeats = c.LoopRepeats
	opts.ConsistencyTimeout = c.ConsistencyTimeout
	opts.AppendRate = c.AppendRate
	opts.Timings.DeviceWait = c.DeviceWaitTimeout
	opts.Timings.Attempts = c.StartAttempts
	opts.Timings.RetryBackoff = c.StartRetryBackoff
	return opts
}

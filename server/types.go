//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Request and response types for the HTTP API.
//

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudmanic/spotify-loop/loop"
	"github.com/cloudmanic/spotify-loop/spotify"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// Orchestrator runs play commands. *loop.Engine implements it.
type Orchestrator interface {
	Orchestrate(ctx context.Context, command string, now time.Time) (*loop.Result, error)
}

// Authorizer runs the OAuth consent flow. *spotify.Authenticator implements it.
type Authorizer interface {
	AuthURL() string
	Complete(r *http.Request) error
}

// APIResponse represents a standard JSON response for the API.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PlayRequest is the body of POST /play.
type PlayRequest struct {
	Command string `json:"command"`
}

// PlayResponse is returned once a loop is playing.
type PlayResponse struct {
	Status   string `json:"status"`
	Count    int    `json:"count"`
	StopAt   string `json:"stop_at"`
	Device   string `json:"device"`
	Playlist string `json:"playlist"`
}

// StatusResponse wraps the current playback for GET /status.
type StatusResponse struct {
	Success  bool             `json:"success"`
	Playback spotify.Playback `json:"playback"`
}

// DevicesResponse lists devices for GET /devices.
type DevicesResponse struct {
	Success bool                      `json:"success"`
	Devices []spotifyLib.PlayerDevice `json:"devices"`
}

//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Playback control and status helpers shared by the CLI and API.
//

package spotify

import (
	"context"
	"fmt"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// Playback is a flattened view of the player state.
type Playback struct {
	Playing    bool   `json:"playing"`
	DeviceID   string `json:"device_id,omitempty"`
	Device     string `json:"device,omitempty"`
	Track      string `json:"track,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Context    string `json:"context,omitempty"`
	ProgressMS int    `json:"progress_ms"`
	Shuffle    bool   `json:"shuffle"`
	Repeat     string `json:"repeat,omitempty"`
}

// PausePlayback pauses playback, on deviceID when it is not empty.
func PausePlayback(ctx context.Context, client Client, deviceID string) (string, error) {
	opts := &spotifyLib.PlayOptions{}
	if deviceID != "" {
		id := spotifyLib.ID(deviceID)
		opts.DeviceID = &id
	}

	if err := client.PauseOpt(ctx, opts); err != nil {
		return "", fmt.Errorf("failed to pause playback: %w", err)
	}

	return "Playback paused", nil
}

// CurrentPlayback reads the player state. Nothing playing anywhere yields
// a zero Playback.
func CurrentPlayback(ctx context.Context, client Client) (Playback, error) {
	state, err := client.PlayerState(ctx)
	if err != nil {
		return Playback{}, fmt.Errorf("failed to get player state: %w", err)
	}
	if state == nil {
		return Playback{}, nil
	}

	p := Playback{
		Playing:    state.Playing,
		DeviceID:   string(state.Device.ID),
		Device:     state.Device.Name,
		Context:    string(state.PlaybackContext.URI),
		ProgressMS: int(state.Progress),
		Shuffle:    state.ShuffleState,
		Repeat:     state.RepeatState,
	}
	if state.Item != nil {
		p.Track = state.Item.Name
		if len(state.Item.Artists) > 0 {
			p.Artist = state.Item.Artists[0].Name
		}
	}

	return p, nil
}

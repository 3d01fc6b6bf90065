//
// Date: 2026-10-12
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Type definitions and interfaces for the Spotify client layer.
//

package spotify

import (
	"context"
	"errors"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// ErrNotAuthenticated is returned by a Provider when no usable token exists.
var ErrNotAuthenticated = errors.New("spotify not authenticated: visit /login to authorize")

// RepeatContext repeats the whole playback context (the session playlist).
const RepeatContext = "context"

// Client defines the interface for Spotify API operations used by the loop
// agent. The production implementation embeds *spotify.Client; tests mock it.
type Client interface {
	CurrentUser(ctx context.Context) (*spotifyLib.PrivateUser, error)
	Search(ctx context.Context, query string, t spotifyLib.SearchType, opts ...spotifyLib.RequestOption) (*spotifyLib.SearchResult, error)
	PlayerDevices(ctx context.Context) ([]spotifyLib.PlayerDevice, error)
	PlayerState(ctx context.Context, opts ...spotifyLib.RequestOption) (*spotifyLib.PlayerState, error)
	PlayOpt(ctx context.Context, opts *spotifyLib.PlayOptions) error
	PauseOpt(ctx context.Context, opts *spotifyLib.PlayOptions) error
	TransferPlayback(ctx context.Context, deviceID spotifyLib.ID, play bool) error
	ShuffleOpt(ctx context.Context, shuffle bool, opts *spotifyLib.PlayOptions) error
	RepeatOpt(ctx context.Context, state string, opts *spotifyLib.PlayOptions) error
	SeekOpt(ctx context.Context, position int, opts *spotifyLib.PlayOptions) error
	CreatePlaylistForUser(ctx context.Context, userID, playlistName, description string, public bool, collaborative bool) (*spotifyLib.FullPlaylist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID spotifyLib.ID, trackIDs ...spotifyLib.ID) (string, error)
	GetPlaylist(ctx context.Context, playlistID spotifyLib.ID, opts ...spotifyLib.RequestOption) (*spotifyLib.FullPlaylist, error)
	PlaybackDisallows(ctx context.Context) (Disallows, error)
}

// Provider hands out a Client backed by a currently valid credential.
// Callers ask for a fresh Client per unit of work instead of holding one.
type Provider interface {
	Client(ctx context.Context) (Client, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context) (Client, error)

// Client calls f(ctx).
func (f ProviderFunc) Client(ctx context.Context) (Client, error) {
	return f(ctx)
}

// Disallows mirrors the "actions.disallows" block of the player endpoint.
// A true value means the control is currently not allowed on the device.
type Disallows struct {
	Pausing               bool `json:"pausing"`
	Resuming              bool `json:"resuming"`
	Seeking               bool `json:"seeking"`
	TogglingShuffle       bool `json:"toggling_shuffle"`
	TogglingRepeatContext bool `json:"toggling_repeat_context"`
	TogglingRepeatTrack   bool `json:"toggling_repeat_track"`
}

//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Mock Spotify client shared by package tests.
//

// Package spotifytest provides a configurable fake of spotify.Client.
package spotifytest

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/cloudmanic/spotify-loop/spotify"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// MockClient is a mock implementation of the spotify.Client interface. Each
// method calls the matching Func field when set and otherwise returns a
// harmless default. Every call is recorded by method name.
type MockClient struct {
	CurrentUserFunc           func(ctx context.Context) (*spotifyLib.PrivateUser, error)
	SearchFunc                func(ctx context.Context, query string, t spotifyLib.SearchType, opts ...spotifyLib.RequestOption) (*spotifyLib.SearchResult, error)
	PlayerDevicesFunc         func(ctx context.Context) ([]spotifyLib.PlayerDevice, error)
	PlayerStateFunc           func(ctx context.Context, opts ...spotifyLib.RequestOption) (*spotifyLib.PlayerState, error)
	PlayOptFunc               func(ctx context.Context, opts *spotifyLib.PlayOptions) error
	PauseOptFunc              func(ctx context.Context, opts *spotifyLib.PlayOptions) error
	TransferPlaybackFunc      func(ctx context.Context, deviceID spotifyLib.ID, play bool) error
	ShuffleOptFunc            func(ctx context.Context, shuffle bool, opts *spotifyLib.PlayOptions) error
	RepeatOptFunc             func(ctx context.Context, state string, opts *spotifyLib.PlayOptions) error
	SeekOptFunc               func(ctx context.Context, position int, opts *spotifyLib.PlayOptions) error
	CreatePlaylistForUserFunc func(ctx context.Context, userID, playlistName, description string, public bool, collaborative bool) (*spotifyLib.FullPlaylist, error)
	AddTracksToPlaylistFunc   func(ctx context.Context, playlistID spotifyLib.ID, trackIDs ...spotifyLib.ID) (string, error)
	GetPlaylistFunc           func(ctx context.Context, playlistID spotifyLib.ID, opts ...spotifyLib.RequestOption) (*spotifyLib.FullPlaylist, error)
	PlaybackDisallowsFunc     func(ctx context.Context) (spotify.Disallows, error)

	mu    sync.Mutex
	calls []string
}

var _ spotify.Client = (*MockClient)(nil)

func (m *MockClient) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

// Calls returns the names of the methods called so far, in order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Count returns how many times the named method was called.
func (m *MockClient) Count(name string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

// Provider returns a spotify.Provider that always hands out m.
func (m *MockClient) Provider() spotify.Provider {
	return spotify.ProviderFunc(func(ctx context.Context) (spotify.Client, error) {
		return m, nil
	})
}

// CurrentUser returns the current user.
func (m *MockClient) CurrentUser(ctx context.Context) (*spotifyLib.PrivateUser, error) {
	m.record("CurrentUser")
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return &spotifyLib.PrivateUser{
		User: spotifyLib.User{
			DisplayName: "Test User",
			ID:          "testuser123",
		},
	}, nil
}

// Search returns no results unless SearchFunc is set.
func (m *MockClient) Search(ctx context.Context, query string, t spotifyLib.SearchType, opts ...spotifyLib.RequestOption) (*spotifyLib.SearchResult, error) {
	m.record("Search")
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, t, opts...)
	}
	return &spotifyLib.SearchResult{Tracks: &spotifyLib.FullTrackPage{}}, nil
}

// PlayerDevices returns available devices.
func (m *MockClient) PlayerDevices(ctx context.Context) ([]spotifyLib.PlayerDevice, error) {
	m.record("PlayerDevices")
	if m.PlayerDevicesFunc != nil {
		return m.PlayerDevicesFunc(ctx)
	}
	return []spotifyLib.PlayerDevice{
		{ID: "device123", Name: "Living Room Speaker", Type: "Speaker", Active: true},
		{ID: "device456", Name: "Kitchen Speaker", Type: "Speaker", Active: false},
	}, nil
}

// PlayerState returns an idle player unless PlayerStateFunc is set.
func (m *MockClient) PlayerState(ctx context.Context, opts ...spotifyLib.RequestOption) (*spotifyLib.PlayerState, error) {
	m.record("PlayerState")
	if m.PlayerStateFunc != nil {
		return m.PlayerStateFunc(ctx, opts...)
	}
	return &spotifyLib.PlayerState{}, nil
}

// PlayOpt starts playback with options.
func (m *MockClient) PlayOpt(ctx context.Context, opts *spotifyLib.PlayOptions) error {
	m.record("PlayOpt")
	if m.PlayOptFunc != nil {
		return m.PlayOptFunc(ctx, opts)
	}
	return nil
}

// PauseOpt pauses playback.
func (m *MockClient) PauseOpt(ctx context.Context, opts *spotifyLib.PlayOptions) error {
	m.record("PauseOpt")
	if m.PauseOptFunc != nil {
		return m.PauseOptFunc(ctx, opts)
	}
	return nil
}

// TransferPlayback moves playback to a device.
func (m *MockClient) TransferPlayback(ctx context.Context, deviceID spotifyLib.ID, play bool) error {
	m.record("TransferPlayback")
	if m.TransferPlaybackFunc != nil {
		return m.TransferPlaybackFunc(ctx, deviceID, play)
	}
	return nil
}

// ShuffleOpt sets shuffle mode.
func (m *MockClient) ShuffleOpt(ctx context.Context, shuffle bool, opts *spotifyLib.PlayOptions) error {
	m.record("ShuffleOpt")
	if m.ShuffleOptFunc != nil {
		return m.ShuffleOptFunc(ctx, shuffle, opts)
	}
	return nil
}

// RepeatOpt sets repeat mode.
func (m *MockClient) RepeatOpt(ctx context.Context, state string, opts *spotifyLib.PlayOptions) error {
	m.record("RepeatOpt")
	if m.RepeatOptFunc != nil {
		return m.RepeatOptFunc(ctx, state, opts)
	}
	return nil
}

// SeekOpt seeks within the current track.
func (m *MockClient) SeekOpt(ctx context.Context, position int, opts *spotifyLib.PlayOptions) error {
	m.record("SeekOpt")
	if m.SeekOptFunc != nil {
		return m.SeekOptFunc(ctx, position, opts)
	}
	return nil
}

// CreatePlaylistForUser creates a playlist.
func (m *MockClient) CreatePlaylistForUser(ctx context.Context, userID, playlistName, description string, public bool, collaborative bool) (*spotifyLib.FullPlaylist, error) {
	m.record("CreatePlaylistForUser")
	if m.CreatePlaylistForUserFunc != nil {
		return m.CreatePlaylistForUserFunc(ctx, userID, playlistName, description, public, collaborative)
	}
	return &spotifyLib.FullPlaylist{
		SimplePlaylist: spotifyLib.SimplePlaylist{
			ID:   "session123",
			Name: playlistName,
			URI:  "spotify:playlist:session123",
		},
	}, nil
}

// AddTracksToPlaylist appends items to a playlist.
func (m *MockClient) AddTracksToPlaylist(ctx context.Context, playlistID spotifyLib.ID, trackIDs ...spotifyLib.ID) (string, error) {
	m.record("AddTracksToPlaylist")
	if m.AddTracksToPlaylistFunc != nil {
		return m.AddTracksToPlaylistFunc(ctx, playlistID, trackIDs...)
	}
	return "snapshot", nil
}

// GetPlaylist returns a playlist by ID.
func (m *MockClient) GetPlaylist(ctx context.Context, playlistID spotifyLib.ID, opts ...spotifyLib.RequestOption) (*spotifyLib.FullPlaylist, error) {
	m.record("GetPlaylist")
	if m.GetPlaylistFunc != nil {
		return m.GetPlaylistFunc(ctx, playlistID, opts...)
	}
	return PlaylistWithTotal(string(playlistID), "Test Playlist", 0), nil
}

// PlaybackDisallows reports that every control is allowed.
func (m *MockClient) PlaybackDisallows(ctx context.Context) (spotify.Disallows, error) {
	m.record("PlaybackDisallows")
	if m.PlaybackDisallowsFunc != nil {
		return m.PlaybackDisallowsFunc(ctx)
	}
	return spotify.Disallows{}, nil
}

// PlaylistWithTotal creates a FullPlaylist with the track total set via JSON
// unmarshaling. This is necessary because the page struct is unexported.
func PlaylistWithTotal(id, name string, total int) *spotifyLib.FullPlaylist {
	jsonStr := `{"id":"` + id + `","name":"` + name + `","uri":"spotify:playlist:` + id + `","tracks":{"total":` + strconv.Itoa(total) + `}}`
	var playlist spotifyLib.FullPlaylist
	_ = json.Unmarshal([]byte(jsonStr), &playlist)
	return &playlist
}

// SearchResult builds a track search result holding the given tracks.
func SearchResult(tracks ...spotifyLib.FullTrack) *spotifyLib.SearchResult {
	return &spotifyLib.SearchResult{Tracks: &spotifyLib.FullTrackPage{Tracks: tracks}}
}

// Track builds a catalog track with the given ID and name.
func Track(id, name string) spotifyLib.FullTrack {
	return spotifyLib.FullTrack{
		SimpleTrack: spotifyLib.SimpleTrack{
			ID:   spotifyLib.ID(id),
			Name: name,
			URI:  spotifyLib.URI("spotify:track:" + id),
		},
	}
}

// PlayingState builds a player state playing contextURI at progressMS.
func PlayingState(contextURI string, progressMS int) *spotifyLib.PlayerState {
	state := &spotifyLib.PlayerState{}
	state.PlaybackContext.URI = spotifyLib.URI(contextURI)
	state.Progress = spotifyLib.Numeric(progressMS)
	state.Playing = true
	state.Item = &spotifyLib.FullTrack{}
	return state
}

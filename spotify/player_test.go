//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Unit tests for playback and playlist helpers.
//

package spotify_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cloudmanic/spotify-loop/spotify"
	"github.com/cloudmanic/spotify-loop/spotify/spotifytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// TestPausePlayback_Success tests successful pause.
func TestPausePlayback_Success(t *testing.T) {
	var target *spotifyLib.ID
	mock := &spotifytest.MockClient{
		PauseOptFunc: func(ctx context.Context, opts *spotifyLib.PlayOptions) error {
			target = opts.DeviceID
			return nil
		},
	}

	result, err := spotify.PausePlayback(context.Background(), mock, "device123")
	require.NoError(t, err)
	assert.Equal(t, "Playback paused", result)
	require.NotNil(t, target)
	assert.Equal(t, spotifyLib.ID("device123"), *target)
}

func TestPausePlayback_AnyDevice(t *testing.T) {
	mock := &spotifytest.MockClient{
		PauseOptFunc: func(ctx context.Context, opts *spotifyLib.PlayOptions) error {
			assert.Nil(t, opts.DeviceID)
			return nil
		},
	}

	_, err := spotify.PausePlayback(context.Background(), mock, "")
	assert.NoError(t, err)
}

// TestPausePlayback_Error tests pause with API error.
func TestPausePlayback_Error(t *testing.T) {
	mock := &spotifytest.MockClient{
		PauseOptFunc: func(ctx context.Context, opts *spotifyLib.PlayOptions) error {
			return errors.New("playback error")
		},
	}

	_, err := spotify.PausePlayback(context.Background(), mock, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "playback error")
}

func TestCurrentPlayback(t *testing.T) {
	mock := &spotifytest.MockClient{
		PlayerStateFunc: func(ctx context.Context, opts ...spotifyLib.RequestOption) (*spotifyLib.PlayerState, error) {
			state := spotifytest.PlayingState("spotify:playlist:session123", 42000)
			state.Device = spotifyLib.PlayerDevice{ID: "device456", Name: "Kitchen Speaker"}
			state.Item.Name = "Numb"
			state.Item.Artists = []spotifyLib.SimpleArtist{{Name: "Linkin Park"}}
			state.RepeatState = "context"
			return state, nil
		},
	}

	p, err := spotify.CurrentPlayback(context.Background(), mock)
	require.NoError(t, err)
	assert.Equal(t, spotify.Playback{
		Playing:    true,
		DeviceID:   "device456",
		Device:     "Kitchen Speaker",
		Track:      "Numb",
		Artist:     "Linkin Park",
		Context:    "spotify:playlist:session123",
		ProgressMS: 42000,
		Repeat:     "context",
	}, p)
}

func TestCurrentPlayback_Idle(t *testing.T) {
	mock := &spotifytest.MockClient{
		PlayerStateFunc: func(ctx context.Context, opts ...spotifyLib.RequestOption) (*spotifyLib.PlayerState, error) {
			return nil, nil
		},
	}

	p, err := spotify.CurrentPlayback(context.Background(), mock)
	require.NoError(t, err)
	assert.Equal(t, spotify.Playback{}, p)
}

func TestAddTracksInBatches(t *testing.T) {
	var sizes []int
	mock := &spotifytest.MockClient{
		AddTracksToPlaylistFunc: func(ctx context.Context, id spotifyLib.ID, ids ...spotifyLib.ID) (string, error) {
			sizes = append(sizes, len(ids))
			return "snap", nil
		},
	}
	ids := make([]spotifyLib.ID, 250)

	waits := 0
	err := spotify.AddTracksInBatches(context.Background(), mock, "pl", ids, func(ctx context.Context) error {
		waits++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 50}, sizes)
	assert.Equal(t, 3, waits)
}

func TestAddTracksInBatches_StopsOnError(t *testing.T) {
	mock := &spotifytest.MockClient{
		AddTracksToPlaylistFunc: func(ctx context.Context, id spotifyLib.ID, ids ...spotifyLib.ID) (string, error) {
			return "", errors.New("429 rate limited")
		},
	}

	err := spotify.AddTracksInBatches(context.Background(), mock, "pl", make([]spotifyLib.ID, 300), nil)
	require.Error(t, err)
	assert.Equal(t, 1, mock.Count("AddTracksToPlaylist"))
}

func TestPlaylistItemCount(t *testing.T) {
	mock := &spotifytest.MockClient{
		GetPlaylistFunc: func(ctx context.Context, id spotifyLib.ID, opts ...spotifyLib.RequestOption) (*spotifyLib.FullPlaylist, error) {
			assert.Len(t, opts, 1)
			return spotifytest.PlaylistWithTotal(string(id), "Session", 400), nil
		},
	}

	n, err := spotify.PlaylistItemCount(context.Background(), mock, "pl")
	require.NoError(t, err)
	assert.Equal(t, 400, n)
}

func TestPlaylistURI(t *testing.T) {
	assert.Equal(t, spotifyLib.URI("spotify:playlist:abc"), spotify.PlaylistURI("abc"))
}

func TestPrintDevicesTable(t *testing.T) {
	var buf bytes.Buffer
	spotify.PrintDevicesTable(&buf, []spotifyLib.PlayerDevice{
		{ID: "device123", Name: "Living Room Speaker", Type: "Speaker", Active: true, Volume: 40},
		{ID: "device456", Name: "Kitchen Speaker", Type: "Speaker", Restricted: true},
	}, "device456")

	out := buf.String()
	assert.Contains(t, out, "Living Room Speaker")
	assert.Contains(t, out, "Kitchen Speaker")
	assert.Contains(t, out, "device456")
	assert.Contains(t, out, "40%")
	assert.Contains(t, out, "▶")
	assert.Contains(t, out, "Total devices: 2")
}

func TestPrintDevicesTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	spotify.PrintDevicesTable(&buf, nil, "")
	assert.Contains(t, buf.String(), "No Connect devices found")
}

func TestDeviceState(t *testing.T) {
	tests := []struct {
		device spotifyLib.PlayerDevice
		want   string
	}{
		{spotifyLib.PlayerDevice{}, "idle"},
		{spotifyLib.PlayerDevice{Active: true}, "active"},
		{spotifyLib.PlayerDevice{Restricted: true}, "restricted"},
		{spotifyLib.PlayerDevice{Active: true, Restricted: true}, "active, restricted"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, spotify.DeviceState(tt.device))
	}
}

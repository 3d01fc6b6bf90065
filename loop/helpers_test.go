//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Shared fixtures for loop package tests.
//

package loop

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-loop/spotify/spotifytest"
	"github.com/jonboulle/clockwork"

	spotifyLib "github.com/zmb3/spotify/v2"
)

var testNow = time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// testTimings keeps the device wait window but drops every sleep, so the
// fake clock only moves when a test moves it.
func testTimings() Timings {
	return Timings{
		DeviceWait:        8 * time.Second,
		Attempts:          2,
		ProgressThreshold: 2 * time.Second,
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.ConsistencyPoll = 0
	opts.AppendRate = 0
	opts.Timings = testTimings()
	return opts
}

// consistentPlaylist makes m behave like a playlist that reports every item
// appended so far.
func consistentPlaylist(m *spotifytest.MockClient) *[][]spotifyLib.ID {
	var mu sync.Mutex
	var batches [][]spotifyLib.ID
	total := 0

	m.AddTracksToPlaylistFunc = func(ctx context.Context, playlistID spotifyLib.ID, trackIDs ...spotifyLib.ID) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, append([]spotifyLib.ID(nil), trackIDs...))
		total += len(trackIDs)
		return "snapshot", nil
	}
	m.GetPlaylistFunc = func(ctx context.Context, playlistID spotifyLib.ID, opts ...spotifyLib.RequestOption) (*spotifyLib.FullPlaylist, error) {
		mu.Lock()
		defer mu.Unlock()
		return spotifytest.PlaylistWithTotal(string(playlistID), "Session", total), nil
	}

	return &batches
}

// searchByTitle answers searches from a title to track ID table.
func searchByTitle(tracks map[string]string) func(ctx context.Context, query string, t spotifyLib.SearchType, opts ...spotifyLib.RequestOption) (*spotifyLib.SearchResult, error) {
	return func(ctx context.Context, query string, t spotifyLib.SearchType, opts ...spotifyLib.RequestOption) (*spotifyLib.SearchResult, error) {
		for title, id := range tracks {
			if query == searchQuery(title) {
				return spotifytest.SearchResult(spotifytest.Track(id, title)), nil
			}
		}
		return spotifytest.SearchResult(), nil
	}
}

// advancingDevices returns a device poll that moves clock forward by step
// on every call, reporting devices once visibleAfter calls were made.
func advancingDevices(clock *clockwork.FakeClock, step time.Duration, visibleAfter int, devices []spotifyLib.PlayerDevice) func(ctx context.Context) ([]spotifyLib.PlayerDevice, error) {
	var mu sync.Mutex
	calls := 0
	return func(ctx context.Context) ([]spotifyLib.PlayerDevice, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		clock.Advance(step)
		if calls > visibleAfter {
			return devices, nil
		}
		return nil, nil
	}
}

//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: End-to-end tests of play command orchestration.
//

package loop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudmanic/spotify-loop/metrics"
	"github.com/cloudmanic/spotify-loop/spotify"
	"github.com/cloudmanic/spotify-loop/spotify/spotifytest"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// newLoopingMock returns a client where searches resolve, the playlist is
// consistent and the device confirms the session playlist.
func newLoopingMock() *spotifytest.MockClient {
	mock := &spotifytest.MockClient{
		SearchFunc: searchByTitle(map[string]string{
			"A":                  "trackA",
			"B":                  "trackB",
			"Numb - Linkin Park": "numb",
		}),
		PlayerStateFunc: func(ctx context.Context, opts ...spotifyLib.RequestOption) (*spotifyLib.PlayerState, error) {
			return spotifytest.PlayingState(string(sessionURI), 0), nil
		},
	}
	consistentPlaylist(mock)
	return mock
}

func newTestEngine(mock *spotifytest.MockClient, clock clockwork.Clock, opts Options) *Engine {
	return NewEngine(mock.Provider(), clock, testLogger(), opts)
}

func orchestrate(t *testing.T, e *Engine, command string) (*Result, error) {
	t.Helper()
	result, err := e.Orchestrate(context.Background(), command, testNow)
	if result != nil {
		t.Cleanup(result.Stop.Cancel)
	}
	return result, err
}

func TestEngine_KitchenSpeaker(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	mock := newLoopingMock()
	var playedOn spotifyLib.ID
	mock.PlayOptFunc = func(ctx context.Context, opts *spotifyLib.PlayOptions) error {
		playedOn = *opts.DeviceID
		return nil
	}

	result, err := orchestrate(t, newTestEngine(mock, clock, testOptions()),
		`play "A" "B" in loop till 15 minutes on kitchen`)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TrackCount)
	assert.Equal(t, testNow.Add(15*time.Minute), result.StopAt)
	assert.Equal(t, spotifyLib.ID("device456"), result.DeviceID)
	assert.Equal(t, "Kitchen Speaker", result.DeviceName)
	assert.Equal(t, sessionURI, result.PlaylistURI)
	assert.Equal(t, spotifyLib.ID("device456"), playedOn)

	assert.Equal(t, 1, mock.Count("CreatePlaylistForUser"))
	assert.Equal(t, 4, mock.Count("AddTracksToPlaylist"))
	assert.Equal(t, 1, mock.Count("ShuffleOpt"))
	assert.Equal(t, 1, mock.Count("RepeatOpt"))
}

func TestEngine_StopsAtDeadline(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	mock := newLoopingMock()

	result, err := orchestrate(t, newTestEngine(mock, clock, testOptions()),
		`play "Numb - Linkin Park" in loop till 15 minutes`)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Count("PauseOpt"), "only the hard-start pause so far")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(15 * time.Minute)
	waitDone(t, result.Stop)

	assert.Equal(t, 2, mock.Count("PauseOpt"))
}

func TestEngine_CallerCancelAfterPlayStillSchedulesStop(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	mock := newLoopingMock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mock.PlayOptFunc = func(context.Context, *spotifyLib.PlayOptions) error {
		// The caller goes away right after the device started playing.
		cancel()
		return nil
	}

	result, err := newTestEngine(mock, clock, testOptions()).Orchestrate(ctx, `play "A" in loop till 15 minutes`, testNow)
	require.NoError(t, err)
	require.NotNil(t, result.Stop)
	t.Cleanup(result.Stop.Cancel)

	assert.Equal(t, testNow.Add(15*time.Minute), result.StopAt)
	assert.Equal(t, 1, mock.Count("PlayOpt"))
	assert.Equal(t, 1, mock.Count("RepeatOpt"))

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	clock.Advance(15 * time.Minute)
	waitDone(t, result.Stop)
	assert.Equal(t, 2, mock.Count("PauseOpt"))
}

func TestEngine_CanceledBeforeStartMutatesNothing(t *testing.T) {
	mock := newLoopingMock()
	ctx, cancel := context.WithCancel(context.Background())
	mock.SearchFunc = func(context.Context, string, spotifyLib.SearchType, ...spotifyLib.RequestOption) (*spotifyLib.SearchResult, error) {
		cancel()
		return nil, context.Canceled
	}

	_, err := newTestEngine(mock, clockwork.NewFakeClockAt(testNow), testOptions()).Orchestrate(ctx, `play "A" in loop`, testNow)
	require.Error(t, err)
	assert.Zero(t, mock.Count("CreatePlaylistForUser"))
	assert.Zero(t, mock.Count("PlayOpt"))
}

func TestNewEngine_ZeroOptionsUseDefaults(t *testing.T) {
	engine := NewEngine(newLoopingMock().Provider(), clockwork.NewFakeClockAt(testNow), testLogger(), Options{})

	assert.Equal(t, DefaultTimings(), engine.opts.Timings)
	assert.Equal(t, DefaultTimings(), engine.activator.timings)
	assert.Equal(t, DefaultConsistencyPoll, engine.sessions.consistencyPoll)
	assert.Equal(t, DefaultConsistencyTimeout, engine.sessions.consistencyTimeout)
	assert.Equal(t, DefaultSessionLength, engine.opts.DefaultLength)
	assert.Equal(t, DefaultRepeats, engine.sessions.repeats)
	assert.Equal(t, DefaultPlaylistPrefix, engine.sessions.prefix)
}

func TestNewEngine_KeepsExplicitTimings(t *testing.T) {
	engine := NewEngine(newLoopingMock().Provider(), clockwork.NewFakeClockAt(testNow), testLogger(), testOptions())

	assert.Equal(t, testTimings(), engine.activator.timings)
}

func TestEngine_DefaultSessionLength(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)

	result, err := orchestrate(t, newTestEngine(newLoopingMock(), clock, testOptions()), `play "A" in loop`)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(2*time.Hour), result.StopAt)
	// No hint: the active device is used.
	assert.Equal(t, "Living Room Speaker", result.DeviceName)
}

func TestEngine_DefaultDeviceOption(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	opts := testOptions()
	opts.DefaultDevice = "Kitchen"

	result, err := orchestrate(t, newTestEngine(newLoopingMock(), clock, opts), `play "A" in loop till 5 minutes`)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen Speaker", result.DeviceName)
}

func TestEngine_TrackNotFoundCreatesNothing(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	mock := newLoopingMock()

	_, err := orchestrate(t, newTestEngine(mock, clock, testOptions()),
		`play "A" "Nonexistent Song XYZ" in loop till 10 minutes`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTrackNotFound))
	assert.Contains(t, err.Error(), "Nonexistent Song XYZ")

	assert.Zero(t, mock.Count("CreatePlaylistForUser"))
	assert.Zero(t, mock.Count("PlayOpt"))
	assert.Zero(t, mock.Count("PauseOpt"))
}

func TestEngine_NoDeviceAvailable(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	mock := newLoopingMock()
	mock.PlayerDevicesFunc = func(ctx context.Context) ([]spotifyLib.PlayerDevice, error) {
		return nil, nil
	}

	_, err := orchestrate(t, newTestEngine(mock, clock, testOptions()), `play "A" in loop till 10 minutes`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoDeviceAvailable))
	assert.Zero(t, mock.Count("CreatePlaylistForUser"))
}

func TestEngine_ParseAndTimeErrorsMakeNoCalls(t *testing.T) {
	tests := []struct {
		command string
		want    error
	}{
		{"play something in loop", ErrMalformedCommand},
		{`play "A" in loop till whenever`, ErrInvalidTimeExpression},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			mock := newLoopingMock()
			_, err := orchestrate(t, newTestEngine(mock, clockwork.NewFakeClockAt(testNow), testOptions()), tt.command)
			assert.True(t, errors.Is(err, tt.want))
			assert.Empty(t, mock.Calls())
		})
	}
}

func TestEngine_Unauthenticated(t *testing.T) {
	provider := spotify.ProviderFunc(func(ctx context.Context) (spotify.Client, error) {
		return nil, spotify.ErrNotAuthenticated
	})
	engine := NewEngine(provider, clockwork.NewFakeClockAt(testNow), testLogger(), testOptions())

	_, err := engine.Orchestrate(context.Background(), `play "A" in loop`, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.True(t, errors.Is(err, spotify.ErrNotAuthenticated))
}

func TestEngine_DeviceNeverVisible(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	mock := newLoopingMock()
	listed := false
	mock.PlayerDevicesFunc = func(ctx context.Context) ([]spotifyLib.PlayerDevice, error) {
		// The first listing picks the device, then it drops off Connect.
		if !listed {
			listed = true
			return []spotifyLib.PlayerDevice{{ID: "phone", Name: "iPhone"}}, nil
		}
		clock.Advance(time.Second)
		return nil, nil
	}

	_, err := orchestrate(t, newTestEngine(mock, clock, testOptions()), `play "A" in loop till 10 minutes on iPhone`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeviceNotActive))
	assert.Zero(t, mock.Count("PlayOpt"))
}

func TestEngine_PlaybackStartFailed(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	mock := newLoopingMock()
	mock.PlayerStateFunc = func(ctx context.Context, opts ...spotifyLib.RequestOption) (*spotifyLib.PlayerState, error) {
		return spotifytest.PlayingState("spotify:playlist:previous", 0), nil
	}
	failures := testutil.ToFloat64(metrics.OrchestrationsTotal.WithLabelValues(string(CodePlaybackStartFailed)))

	result, err := orchestrate(t, newTestEngine(mock, clock, testOptions()), `play "A" in loop till 10 minutes`)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrPlaybackStartFailed))
	assert.Equal(t, failures+1, testutil.ToFloat64(metrics.OrchestrationsTotal.WithLabelValues(string(CodePlaybackStartFailed))))
}

func TestEngine_SerializesOrchestrations(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	mock := newLoopingMock()

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	mock.CreatePlaylistForUserFunc = func(ctx context.Context, userID, name, desc string, public bool, collaborative bool) (*spotifyLib.FullPlaylist, error) {
		mu.Lock()
		inFlight++
		maxInFlight = max(maxInFlight, inFlight)
		mu.Unlock()
		return &spotifyLib.FullPlaylist{SimplePlaylist: spotifyLib.SimplePlaylist{ID: "session123", URI: sessionURI}}, nil
	}
	mock.PlayOptFunc = func(ctx context.Context, opts *spotifyLib.PlayOptions) error {
		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	}

	engine := newTestEngine(mock, clock, testOptions())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := engine.Orchestrate(context.Background(), `play "A" in loop till 10 minutes`, testNow)
			if assert.NoError(t, err) {
				result.Stop.Cancel()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
	assert.Equal(t, 4, mock.Count("CreatePlaylistForUser"))
}

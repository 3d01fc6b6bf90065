//
// Date: 2026-10-14
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Creation of the private session playlist that carries the loop.
//

package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-loop/spotify"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	spotifyLib "github.com/zmb3/spotify/v2"
)

const (
	DefaultPlaylistPrefix     = "Loop Agent"
	DefaultRepeats            = 200
	DefaultConsistencyTimeout = 15 * time.Second
	DefaultConsistencyPoll    = 250 * time.Millisecond

	sessionDescription = "Auto-loop session playlist"
	sessionTimestamp   = "20060102-150405"
)

// Session is the playlist created for one play request.
type Session struct {
	ID       spotifyLib.ID
	URI      spotifyLib.URI
	Name     string
	Expected int
	// Consistent is false when the playlist had not reported all items
	// before the consistency bound ran out.
	Consistent bool
}

// SessionBuilder creates and fills session playlists.
type SessionBuilder struct {
	clock              clockwork.Clock
	logger             *log.Logger
	prefix             string
	repeats            int
	consistencyTimeout time.Duration
	consistencyPoll    time.Duration
	limiter            *rate.Limiter
}

// NewSessionBuilder returns a builder configured from opts.
func NewSessionBuilder(clock clockwork.Clock, logger *log.Logger, opts Options) *SessionBuilder {
	limit := rate.Inf
	if opts.AppendRate > 0 {
		limit = rate.Limit(opts.AppendRate)
	}

	return &SessionBuilder{
		clock:              clock,
		logger:             logger,
		prefix:             opts.PlaylistPrefix,
		repeats:            opts.Repeats,
		consistencyTimeout: opts.ConsistencyTimeout,
		consistencyPoll:    opts.ConsistencyPoll,
		limiter:            rate.NewLimiter(limit, 1),
	}
}

// Build creates a private playlist owned by the current user, appends the
// tracks repeated b.repeats times and waits for Spotify to report them all.
// Running out of the consistency bound is not an error.
func (b *SessionBuilder) Build(ctx context.Context, client spotify.Client, tracks []Track) (*Session, error) {
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, remoteError("get current user", err)
	}

	name := fmt.Sprintf("%s (%s)", b.prefix, b.clock.Now().Format(sessionTimestamp))
	playlist, err := client.CreatePlaylistForUser(ctx, user.ID, name, sessionDescription, false, false)
	if err != nil {
		return nil, remoteError("create session playlist", err)
	}

	session := &Session{
		ID:       playlist.ID,
		URI:      playlist.URI,
		Name:     name,
		Expected: len(tracks) * b.repeats,
	}
	if session.URI == "" {
		session.URI = spotify.PlaylistURI(playlist.ID)
	}

	if err := b.fill(ctx, client, session.ID, tracks); err != nil {
		return nil, err
	}

	session.Consistent = b.waitForItems(ctx, client, session)
	if !session.Consistent {
		b.logger.Warn("session playlist not fully visible yet, continuing",
			"playlist", session.ID, "expected", session.Expected)
	}

	return session, nil
}

// fill appends the repeated track list in batches, paced by the limiter.
func (b *SessionBuilder) fill(ctx context.Context, client spotify.Client, playlistID spotifyLib.ID, tracks []Track) error {
	ids := make([]spotifyLib.ID, 0, len(tracks)*b.repeats)
	for i := 0; i < b.repeats; i++ {
		for _, t := range tracks {
			ids = append(ids, t.ID)
		}
	}

	if err := spotify.AddTracksInBatches(ctx, client, playlistID, ids, b.limiter.Wait); err != nil {
		return remoteError("add tracks to session playlist", err)
	}
	return nil
}

// waitForItems polls the playlist's item count until it reaches the expected
// total or the consistency timeout passes.
func (b *SessionBuilder) waitForItems(ctx context.Context, client spotify.Client, session *Session) bool {
	deadline := b.clock.Now().Add(b.consistencyTimeout)

	for {
		count, err := spotify.PlaylistItemCount(ctx, client, session.ID)
		if err == nil && count >= session.Expected {
			return true
		}
		if err != nil {
			b.logger.Debug("playlist count read failed", "playlist", session.ID, "err", err)
		}

		if !b.clock.Now().Before(deadline) {
			return false
		}
		if err := sleep(ctx, b.clock, b.consistencyPoll); err != nil {
			return false
		}
	}
}

//
// Date: 2026-10-14
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Playlist helpers for batched appends and item counts.
//

package spotify

import (
	"context"
	"fmt"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// MaxBatchSize is the most items Spotify accepts per add request.
const MaxBatchSize = 100

// PlaylistURI returns the URI of the playlist with the given ID.
func PlaylistURI(id spotifyLib.ID) spotifyLib.URI {
	return spotifyLib.URI("spotify:playlist:" + string(id))
}

// AddTracksInBatches appends ids to the playlist in order, at most
// MaxBatchSize per request. When wait is set it is called before each
// request, typically to pace them.
func AddTracksInBatches(ctx context.Context, client Client, playlistID spotifyLib.ID, ids []spotifyLib.ID, wait func(context.Context) error) error {
	for start := 0; start < len(ids); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(ids))

		if wait != nil {
			if err := wait(ctx); err != nil {
				return err
			}
		}
		if _, err := client.AddTracksToPlaylist(ctx, playlistID, ids[start:end]...); err != nil {
			return fmt.Errorf("failed to add items %d-%d: %w", start, end-1, err)
		}
	}

	return nil
}

// PlaylistItemCount returns the item total Spotify currently reports for
// the playlist, requesting only that field.
func PlaylistItemCount(ctx context.Context, client Client, playlistID spotifyLib.ID) (int, error) {
	playlist, err := client.GetPlaylist(ctx, playlistID, spotifyLib.Fields("tracks.total"))
	if err != nil {
		return 0, fmt.Errorf("failed to get playlist: %w", err)
	}
	if playlist == nil {
		return 0, nil
	}
	return int(playlist.Tracks.Total), nil
}

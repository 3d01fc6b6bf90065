//
// Date: 2026-10-13
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Resolution of track queries against the Spotify catalog.
//

package loop

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudmanic/spotify-loop/spotify"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// Track is a query resolved to exactly one catalog track.
type Track struct {
	Query string
	ID    spotifyLib.ID
	URI   spotifyLib.URI
	Name  string
}

// SplitQuery splits "Title - Artist" on the first " - ". The artist is empty
// when the query has no separator.
func SplitQuery(query string) (title, artist string) {
	title, artist, _ = strings.Cut(query, " - ")
	return strings.TrimSpace(title), strings.TrimSpace(artist)
}

// searchQuery builds the field-filtered catalog query for a track query.
func searchQuery(query string) string {
	title, artist := SplitQuery(query)
	q := fmt.Sprintf("track:%q", title)
	if artist != "" {
		q += fmt.Sprintf(" artist:%q", artist)
	}
	return q
}

// ResolveTracks looks up each query in order and keeps the best-ranked hit.
// It stops at the first query without results and returns ErrTrackNotFound
// for it; no further lookups are made.
func ResolveTracks(ctx context.Context, client spotify.Client, queries []string) ([]Track, error) {
	tracks := make([]Track, 0, len(queries))

	for _, query := range queries {
		results, err := client.Search(ctx, searchQuery(query), spotifyLib.SearchTypeTrack, spotifyLib.Limit(1))
		if err != nil {
			return nil, remoteError(fmt.Sprintf("search for %q", query), err)
		}

		if results == nil || results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
			return nil, trackNotFound(query)
		}

		hit := results.Tracks.Tracks[0]
		tracks = append(tracks, Track{
			Query: query,
			ID:    hit.ID,
			URI:   hit.URI,
			Name:  hit.Name,
		})
	}

	return tracks, nil
}

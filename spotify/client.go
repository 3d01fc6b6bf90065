//
// Date: 2026-10-12
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Production Spotify client built on zmb3/spotify.
//

package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	spotifyLib "github.com/zmb3/spotify/v2"
)

const defaultBaseURL = "https://api.spotify.com/v1/"

// apiClient wraps the library client and adds the few endpoints the library
// does not model, such as the player's action disallows.
type apiClient struct {
	*spotifyLib.Client

	httpClient *http.Client
	baseURL    string
}

// NewClient returns a Client that issues requests through httpClient, which
// is expected to carry the OAuth token (see Authenticator.Client).
func NewClient(httpClient *http.Client) Client {
	return &apiClient{
		Client:     spotifyLib.New(httpClient),
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
}

// playerActions is the subset of GET /me/player we decode ourselves.
type playerActions struct {
	Actions struct {
		Disallows Disallows `json:"disallows"`
	} `json:"actions"`
}

// PlaybackDisallows reads which transport controls Spotify currently refuses
// for the active device and context. No active playback yields an empty set.
func (c *apiClient) PlaybackDisallows(ctx context.Context) (Disallows, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"me/player", nil)
	if err != nil {
		return Disallows{}, fmt.Errorf("failed to build player request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Disallows{}, fmt.Errorf("failed to read player state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return Disallows{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Disallows{}, fmt.Errorf("failed to read player state: unexpected status %d", resp.StatusCode)
	}

	var state playerActions
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return Disallows{}, fmt.Errorf("failed to decode player state: %w", err)
	}

	return state.Actions.Disallows, nil
}

//
// Date: 2026-10-12
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Authentication logic for the Spotify OAuth flow and the
// per-call credential provider.
//

package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// ErrStateMismatch is returned when the OAuth callback carries a state value
// this authenticator did not issue.
var ErrStateMismatch = errors.New("oauth state mismatch")

// StateTTL is how long an issued OAuth state stays valid.
const StateTTL = 10 * time.Minute

// Scopes needed to search, build private session playlists and drive playback.
var Scopes = []string{
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopeUserReadCurrentlyPlaying,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Authenticator runs the authorization code flow and, once a token is stored,
// acts as the Provider handing out authenticated clients.
type Authenticator struct {
	auth   *spotifyauth.Authenticator
	config *oauth2.Config
	store  *TokenStore
	logger *log.Logger
	clock  clockwork.Clock

	mu     sync.Mutex
	states map[string]time.Time
}

// NewAuthenticator initializes the Spotify authenticator with the provided
// credentials. Tokens are read from and written to store.
func NewAuthenticator(clientID, clientSecret, redirectURI string, store *TokenStore, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = log.Default()
	}

	return &Authenticator{
		auth: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithRedirectURL(redirectURI),
			spotifyauth.WithScopes(Scopes...),
		),
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		store:  store,
		logger: logger,
		clock:  clockwork.NewRealClock(),
		states: make(map[string]time.Time),
	}
}

// AuthURL returns a Spotify consent page URL carrying a fresh state that
// expires after StateTTL.
func (a *Authenticator) AuthURL() string {
	state := uuid.NewString()

	a.mu.Lock()
	now := a.clock.Now()
	for s, expires := range a.states {
		if !now.Before(expires) {
			delete(a.states, s)
		}
	}
	a.states[state] = now.Add(StateTTL)
	a.mu.Unlock()

	return a.auth.AuthURL(state)
}

// consumeState reports whether state was issued and has not expired. A
// state is accepted at most once.
func (a *Authenticator) consumeState(state string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	expires, ok := a.states[state]
	if !ok {
		return false
	}
	delete(a.states, state)
	return a.clock.Now().Before(expires)
}

// Complete handles the OAuth callback: it checks the state, exchanges the
// code for a token and saves it for future use.
func (a *Authenticator) Complete(r *http.Request) error {
	state := r.FormValue("state")
	if state == "" || !a.consumeState(state) {
		return ErrStateMismatch
	}

	tok, err := a.auth.Token(r.Context(), state, r)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	if err := a.store.Save(tok); err != nil {
		return err
	}

	a.logger.Info("spotify token saved", "file", a.store.Path())
	return nil
}

// Client loads the stored token and returns a client for this call only.
// Refreshed tokens are written back to the store.
func (a *Authenticator) Client(ctx context.Context) (Client, error) {
	tok, err := a.store.Load()
	if err != nil {
		return nil, err
	}

	// The refresh client must outlive ctx, which usually belongs to a request.
	bg := context.Background()
	src := &savingTokenSource{
		base:  a.config.TokenSource(bg, tok),
		store: a.store,
		last:  tok.AccessToken,
		onErr: func(err error) {
			a.logger.Warn("failed to persist refreshed token", "err", err)
		},
	}

	return NewClient(oauth2.NewClient(bg, src)), nil
}

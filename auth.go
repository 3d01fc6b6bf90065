//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Interactive OAuth login for the CLI.
//

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

// Login starts the OAuth flow. It starts a local HTTP server on the redirect
// URI to handle the callback from Spotify, then verifies the saved token.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return errors.New("OAuth login is not configured")
	}

	redirect, err := url.Parse(r.cfg.SpotifyRedirectURI)
	if err != nil {
		return fmt.Errorf("SPOTIFY_REDIRECT_URI is invalid: %w", err)
	}
	path := redirect.Path
	if path == "" {
		path = "/callback"
	}

	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		if err := r.auth.Complete(req); err != nil {
			http.Error(w, "Couldn't get token", http.StatusForbidden)
			finish(err)
			return
		}
		fmt.Fprint(w, "Authentication successful! You can close this window.")
		finish(nil)
	})

	srv := &http.Server{Addr: redirect.Host, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			finish(fmt.Errorf("callback server failed: %w", err))
		}
	}()
	defer srv.Shutdown(context.Background())

	fmt.Fprintln(r.output, "Please visit this URL to authenticate:")
	fmt.Fprintln(r.output, r.auth.AuthURL())

	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get user info: %w", err)
	}

	color.New(color.FgGreen, color.Bold).Fprintf(r.output, "Authenticated as: %s\n", user.DisplayName)
	return nil
}

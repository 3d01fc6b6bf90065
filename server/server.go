//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: HTTP API server and request handlers.
//

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-loop/loop"
	"github.com/cloudmanic/spotify-loop/metrics"
	"github.com/cloudmanic/spotify-loop/spotify"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server. Only Engine and Provider are required.
type Options struct {
	Engine   Orchestrator
	Auth     Authorizer
	Provider spotify.Provider
	// AccessToken guards the control endpoints; empty disables the check.
	AccessToken string
	Clock       clockwork.Clock
	Location    *time.Location
	Logger      *log.Logger
}

// Server is the remote-control API for the loop agent.
type Server struct {
	engine      Orchestrator
	auth        Authorizer
	provider    spotify.Provider
	accessToken string
	clock       clockwork.Clock
	location    *time.Location
	logger      *log.Logger
}

// New returns a Server with defaults filled in.
func New(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Server{
		engine:      opts.Engine,
		auth:        opts.Auth,
		provider:    opts.Provider,
		accessToken: opts.AccessToken,
		clock:       opts.Clock,
		location:    opts.Location,
		logger:      opts.Logger,
	}
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, instrument(pattern, h))
	}

	handle("GET /{$}", s.handleRoot)
	handle("GET /ping", s.handlePing)
	handle("GET /login", s.handleLogin)
	handle("GET /callback", s.handleCallback)
	handle("POST /play", s.handlePlay)
	handle("POST /pause", s.handlePause)
	handle("GET /status", s.handleStatus)
	handle("GET /devices", s.handleDevices)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.loggingMiddleware(mux)
}

// ListenAndServe serves the API on port until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("api server listening", "port", port)

	select {
	case err := <-errCh:
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// loggingResponseWriter wraps http.ResponseWriter to capture the status code.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it.
func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware wraps an http.Handler and logs each request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", lrw.statusCode,
			"duration", s.clock.Since(start))
	})
}

// instrument counts requests per route pattern.
func instrument(pattern string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(lrw, r)
		metrics.HTTPRequestsTotal.WithLabelValues(pattern, strconv.Itoa(lrw.statusCode)).Inc()
	})
}

// authorized checks the access token from the query string or the
// Authorization header.
func (s *Server) authorized(r *http.Request) bool {
	if s.accessToken == "" {
		return true
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	return token == s.accessToken
}

// handleRoot handles requests to the root path with a simple message.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "spotify loop agent: POST /play {\"command\": \"play \\\"Song\\\" in loop till 15 minutes\"}")
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "pong")
}

// handleLogin redirects the user to Spotify's authorization page.
// Requires the API access token for security.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "Unauthorized: Invalid or missing access token", http.StatusUnauthorized)
		return
	}
	if s.auth == nil {
		http.Error(w, "OAuth login is not configured", http.StatusNotFound)
		return
	}

	http.Redirect(w, r, s.auth.AuthURL(), http.StatusTemporaryRedirect)
}

// handleCallback handles the OAuth callback from Spotify after user authorization.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		http.Error(w, "OAuth login is not configured", http.StatusNotFound)
		return
	}

	if err := s.auth.Complete(r); err != nil {
		s.logger.Warn("oauth callback failed", "err", err)
		http.Error(w, "Failed to get token: "+err.Error(), http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "Authentication successful! You can close this window.")
}

// handlePlay runs a play command and answers once the loop is playing.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Error: "Invalid or missing access token"})
		return
	}

	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Command) == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Error:   string(loop.CodeMalformedCommand),
			Message: "Missing 'command'",
		})
		return
	}

	now := s.clock.Now().In(s.location)
	result, err := s.engine.Orchestrate(r.Context(), req.Command, now)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PlayResponse{
		Status:   "playing",
		Count:    result.TrackCount,
		StopAt:   result.StopAt.Format(time.RFC3339),
		Device:   result.DeviceName,
		Playlist: string(result.PlaylistURI),
	})
}

// handlePause pauses playback, on ?device=<id> when given.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Error: "Invalid or missing access token"})
		return
	}

	client, ok := s.client(w, r)
	if !ok {
		return
	}

	msg, err := spotify.PausePlayback(r.Context(), client, r.URL.Query().Get("device"))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, APIResponse{
			Error:   string(loop.CodeRemoteService),
			Message: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Error: "Invalid or missing access token"})
		return
	}

	client, ok := s.client(w, r)
	if !ok {
		return
	}

	playback, err := spotify.CurrentPlayback(r.Context(), client)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, APIResponse{
			Error:   string(loop.CodeRemoteService),
			Message: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Playback: playback})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Error: "Invalid or missing access token"})
		return
	}

	client, ok := s.client(w, r)
	if !ok {
		return
	}

	devices, err := client.PlayerDevices(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, APIResponse{
			Error:   string(loop.CodeRemoteService),
			Message: "failed to get devices: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, DevicesResponse{Success: true, Devices: devices})
}

// client gets a Spotify client for this request, answering 401 or 502 on
// failure.
func (s *Server) client(w http.ResponseWriter, r *http.Request) (spotify.Client, bool) {
	client, err := s.provider.Client(r.Context())
	if errors.Is(err, spotify.ErrNotAuthenticated) {
		writeJSON(w, http.StatusUnauthorized, APIResponse{
			Error:   string(loop.CodeUnauthenticated),
			Message: err.Error(),
		})
		return nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, APIResponse{
			Error:   string(loop.CodeRemoteService),
			Message: err.Error(),
		})
		return nil, false
	}
	return client, true
}

// StatusFor maps a loop error code onto an HTTP status.
func StatusFor(code loop.Code) int {
	switch code {
	case loop.CodeMalformedCommand:
		return http.StatusBadRequest
	case loop.CodeInvalidTimeExpression:
		return http.StatusUnprocessableEntity
	case loop.CodeTrackNotFound:
		return http.StatusNotFound
	case loop.CodeNoDeviceAvailable:
		return http.StatusConflict
	case loop.CodeDeviceNotActive:
		return http.StatusGatewayTimeout
	case loop.CodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := loop.CodeOf(err)
	writeJSON(w, StatusFor(code), APIResponse{
		Error:   string(code),
		Message: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

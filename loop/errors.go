//
// Date: 2026-10-13
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Typed errors returned by the loop engine.
//

package loop

import (
	"errors"
	"fmt"
)

// Code is the machine-readable kind of a loop failure.
type Code string

const (
	CodeMalformedCommand      Code = "malformed_command"
	CodeInvalidTimeExpression Code = "invalid_time_expression"
	CodeTrackNotFound         Code = "track_not_found"
	CodeNoDeviceAvailable     Code = "no_device_available"
	CodeDeviceNotActive       Code = "device_not_active"
	CodePlaybackStartFailed   Code = "playback_start_failed"
	CodeRemoteService         Code = "remote_service_error"
	CodeUnauthenticated       Code = "unauthenticated"
)

// Sentinels for errors.Is. They match any *Error with the same Code.
var (
	ErrMalformedCommand      = &Error{Code: CodeMalformedCommand}
	ErrInvalidTimeExpression = &Error{Code: CodeInvalidTimeExpression}
	ErrTrackNotFound         = &Error{Code: CodeTrackNotFound}
	ErrNoDeviceAvailable     = &Error{Code: CodeNoDeviceAvailable}
	ErrDeviceNotActive       = &Error{Code: CodeDeviceNotActive}
	ErrPlaybackStartFailed   = &Error{Code: CodePlaybackStartFailed}
	ErrRemoteService         = &Error{Code: CodeRemoteService}
	ErrUnauthenticated       = &Error{Code: CodeUnauthenticated}
)

// Error is a loop failure with its kind, a user-facing message and,
// for remote failures, the underlying cause.
type Error struct {
	Code    Code
	Message string
	Query   string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a loop error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the Code carried by err. Errors that did not originate in
// the engine are reported as remote service errors.
func CodeOf(err error) Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return CodeRemoteService
}

func newError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func trackNotFound(query string) *Error {
	return &Error{
		Code:    CodeTrackNotFound,
		Message: fmt.Sprintf("could not find %q, try \"Title - Artist\"", query),
		Query:   query,
	}
}

func remoteError(action string, cause error) *Error {
	return newError(CodeRemoteService, "failed to "+action, cause)
}

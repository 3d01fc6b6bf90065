//
// Date: 2026-10-13
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Parsing of natural-language play commands.
//

package loop

import (
	"regexp"
	"strings"
)

var (
	quotedPattern = regexp.MustCompile(`"([^"]*)"`)

	// Both keyword scans run over the command with quoted titles blanked, so
	// a title like "Left on Read" never leaks into either field.
	tillPattern   = regexp.MustCompile(`(?i)\btill\s+(.+?)(?:\s+on\s|$)`)
	devicePattern = regexp.MustCompile(`(?i)\bon\s+(.+?)(?:\s+till\s|\s+in\s+loop\b|$)`)
)

// Command is the structured intent of a play command.
type Command struct {
	// Queries are the quoted track queries in order of appearance.
	Queries []string
	// Until is the stop-time expression, empty when absent.
	Until string
	// Device is the device name hint, empty when absent.
	Device string
}

// ParseCommand turns a raw command such as
//
//	play "Song A" "Song B - Artist" in loop till 15 minutes on iPhone
//
// into a Command. It fails with ErrMalformedCommand when no quoted title is
// present.
func ParseCommand(raw string) (*Command, error) {
	cmd := &Command{}
	for _, m := range quotedPattern.FindAllStringSubmatch(raw, -1) {
		if q := strings.TrimSpace(m[1]); q != "" {
			cmd.Queries = append(cmd.Queries, q)
		}
	}

	if len(cmd.Queries) == 0 {
		return nil, newError(CodeMalformedCommand,
			`use quotes: play "Song A" "Song B" in loop till 10 minutes [on iPhone]`, nil)
	}

	rest := quotedPattern.ReplaceAllString(raw, `""`)
	if m := tillPattern.FindStringSubmatch(rest); m != nil {
		cmd.Until = strings.TrimSpace(m[1])
	}
	if m := devicePattern.FindStringSubmatch(rest); m != nil {
		cmd.Device = strings.TrimSpace(m[1])
	}

	return cmd, nil
}

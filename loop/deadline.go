//
// Date: 2026-10-13
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Resolution of stop-time expressions into absolute deadlines.
//

package loop

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultSessionLength is used when a command has no "till" clause.
const DefaultSessionLength = 2 * time.Hour

var durationPattern = regexp.MustCompile(`(?i)^\s*(\d{1,6})\s*(min|mins|minute|minutes|hr|hrs|hour|hours)?\s*$`)

// Accepted clock-time layouts, matched against the upper-cased expression.
var clockLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
	"3:04:05PM",
	"3 PM",
	"3PM",
	"15:04",
	"15:04:05",
}

// ResolveDeadline turns a stop-time expression into an absolute time in
// now's location.
//
// An empty expression yields now+fallback (DefaultSessionLength when
// fallback is not positive). "<n> [minutes|hours]" is relative to now.
// Anything else is read as a clock time today, moved to tomorrow when it is
// not strictly after now.
func ResolveDeadline(expr string, now time.Time, fallback time.Duration) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		if fallback <= 0 {
			fallback = DefaultSessionLength
		}
		return now.Add(fallback), nil
	}

	if m := durationPattern.FindStringSubmatch(expr); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty <= 0 {
			return time.Time{}, invalidTime(expr)
		}
		unit := time.Minute
		if strings.HasPrefix(strings.ToLower(m[2]), "h") {
			unit = time.Hour
		}
		return now.Add(time.Duration(qty) * unit), nil
	}

	clock, ok := parseClock(expr)
	if !ok {
		return time.Time{}, invalidTime(expr)
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}

	return target, nil
}

func parseClock(expr string) (time.Time, bool) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(expr), " "))
	normalized = strings.NewReplacer("A.M.", "AM", "P.M.", "PM").Replace(normalized)

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func invalidTime(expr string) *Error {
	return newError(CodeInvalidTimeExpression,
		fmt.Sprintf("could not understand stop time %q, try \"15 minutes\" or \"10:30 pm\"", expr), nil)
}

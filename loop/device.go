//
// Date: 2026-10-14
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Target device selection.
//

package loop

import (
	"strings"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// SelectDevice picks the playback target from the visible devices:
// exact case-insensitive name match, then substring match, then the active
// device, then the first listed. ok is false only when devices is empty.
func SelectDevice(hint string, devices []spotifyLib.PlayerDevice) (device spotifyLib.PlayerDevice, ok bool) {
	if len(devices) == 0 {
		return spotifyLib.PlayerDevice{}, false
	}

	want := strings.ToLower(strings.TrimSpace(hint))
	if want != "" {
		for _, d := range devices {
			if strings.ToLower(strings.TrimSpace(d.Name)) == want {
				return d, true
			}
		}
		for _, d := range devices {
			if strings.Contains(strings.ToLower(strings.TrimSpace(d.Name)), want) {
				return d, true
			}
		}
	}

	for _, d := range devices {
		if d.Active {
			return d, true
		}
	}

	return devices[0], true
}

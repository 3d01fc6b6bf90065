//
// Date: 2026-10-12
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Connect device table for the devices command.
//

package spotify

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// DeviceState describes a device for display.
func DeviceState(d spotifyLib.PlayerDevice) string {
	switch {
	case d.Restricted && d.Active:
		return "active, restricted"
	case d.Restricted:
		return "restricted"
	case d.Active:
		return "active"
	default:
		return "idle"
	}
}

// PrintDevicesTable writes the device list. The row matching target, if
// any, is marked as the one a loop session would play on.
func PrintDevicesTable(w io.Writer, devices []spotifyLib.PlayerDevice, target spotifyLib.ID) {
	if len(devices) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No Connect devices found. Open Spotify on a device and try again.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"", "Name", "Type", "Volume", "State", "Device ID"})

	for _, d := range devices {
		mark := ""
		if target != "" && d.ID == target {
			mark = color.GreenString("▶")
		}

		state := DeviceState(d)
		if d.Active {
			state = color.GreenString(state)
		}

		t.AppendRow(table.Row{
			mark,
			color.New(color.Bold).Sprint(d.Name),
			d.Type,
			fmt.Sprintf("%d%%", d.Volume),
			state,
			color.HiBlackString(string(d.ID)),
		})
	}
	t.Render()

	fmt.Fprintf(w, "Total devices: %d\n", len(devices))
}

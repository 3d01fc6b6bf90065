//
// Date: 2026-10-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Prometheus metrics for the loop agent.
//

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrchestrationsTotal counts play commands by outcome ("ok" or error code).
	OrchestrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loop_orchestrations_total",
			Help: "Play commands handled, by outcome",
		},
		[]string{"outcome"},
	)

	// HardStartAttempts counts hard-start sequences by result
	// (verified, unverified, error).
	HardStartAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loop_hard_start_attempts_total",
			Help: "Hard-start sequences run, by result",
		},
		[]string{"result"},
	)

	// PendingStops tracks stop tasks that have not fired yet.
	PendingStops = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loop_pending_stops",
			Help: "Scheduled stops waiting for their deadline",
		},
	)

	// StopsTotal counts finished stop tasks by result (fired, failed, canceled).
	StopsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loop_stops_total",
			Help: "Stop tasks finished, by result",
		},
		[]string{"result"},
	)

	// HTTPRequestsTotal counts API requests by route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loop_http_requests_total",
			Help: "HTTP requests served, by path and status",
		},
		[]string{"path", "status"},
	)
)

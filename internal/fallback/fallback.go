// Package fallback provides the fixed synthetic results shown when live
// signals are disabled or unavailable.
package fallback

import (
	"time"

	"github.com/Veraticus/signal-deck/internal/model"
)

// ErrorMessage is the diagnostic shown alongside the error snapshot.
const ErrorMessage = "Signal service unreachable. Showing cached demo signals instead."

// DemoMessage is the service-style message attached to demo snapshots.
const DemoMessage = "Demo mode: live model calls are disabled."

// snapshotTime is the fixed timestamp carried by every synthetic result.
var snapshotTime = time.Date(2025, time.November, 9, 6, 0, 0, 0, time.UTC)

var snapshot = model.InferenceResult{
	Recommendations: []model.Recommendation{
		{
			Action:      "restake",
			Probability: 0.54,
			Rationale:   "Weighted price action inputs favoured restake.",
		},
		{
			Action:      "stake",
			Probability: 0.31,
			Rationale:   "Weighted price action inputs favoured stake.",
		},
		{
			Action:      "liquid_stake",
			Probability: 0.15,
			Rationale:   "Weighted price action inputs favoured liquid stake.",
		},
	},
	Cluster: &model.ClusterInsight{
		ID:          0,
		Label:       "Restake skew",
		Description: "APR momentum trending higher alongside elevated withdrawer counts.",
		Drivers: []string{
			"Daily APR sits at the higher end of recent range.",
			"Withdrawals dominate flows but deposits remain elevated.",
		},
		Metrics: map[string]float64{
			"daily_apr":     3.12,
			"withdraw":      18450,
			"deposit":       21230,
			"daily_netflow": 2780,
			"withdrawers":   412,
			"depositors":    536,
		},
	},
	Narrative: "Restaking leads the action stack while APR momentum holds near the top of its " +
		"recent range. Withdrawals remain heavy, so keep part of the position liquid until " +
		"netflows settle.",
	GeneratedAt: snapshotTime,
}

// DemoSnapshot returns the canned result used when demo mode is enabled.
func DemoSnapshot() model.InferenceResult {
	result := snapshot.Clone()
	result.Message = DemoMessage
	result.Source = model.SourceDemo
	return result
}

// ErrorSnapshot returns the canned result and diagnostic used when a live
// call fails.
func ErrorSnapshot() (model.InferenceResult, string) {
	result := snapshot.Clone()
	result.Source = model.SourceFallback
	return result, ErrorMessage
}

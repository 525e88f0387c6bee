package signals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/signal-deck/internal/model"
)

// DefaultNarrative is shown when the service returns no narrative.
const DefaultNarrative = "Model narrative unavailable. The action stack reflects the current price and sentiment weighting."

// responsePayload is the wire form of a signal service response.
// Every field is optional.
type responsePayload struct {
	Cluster         *clusterPayload         `json:"cluster"`
	Message         *string                 `json:"message"`
	Narrative       *string                 `json:"narrative"`
	GeneratedAt     *string                 `json:"generated_at"`
	Recommendations []recommendationPayload `json:"recommendations"`
}

type recommendationPayload struct {
	Rationale   *string `json:"rationale"`
	Action      string  `json:"action"`
	Probability float64 `json:"probability"`
}

type clusterPayload struct {
	Label       *string             `json:"label"`
	Description *string             `json:"description"`
	Metrics     map[string]*float64 `json:"metrics"`
	Drivers     []string            `json:"drivers"`
	ID          int                 `json:"id"`
}

// Project maps a raw response payload into a display-ready result.
// Absent fields get defaults; only a payload that is not a JSON object fails.
func Project(raw []byte, now time.Time) (model.InferenceResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.InferenceResult{}, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}

	var payload responsePayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return model.InferenceResult{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	result := model.InferenceResult{
		Recommendations: make([]model.Recommendation, 0, len(payload.Recommendations)),
		Narrative:       DefaultNarrative,
		GeneratedAt:     now,
		Source:          model.SourceLive,
	}

	for _, rec := range payload.Recommendations {
		if strings.TrimSpace(rec.Action) == "" {
			continue
		}
		projected := model.Recommendation{
			Action:      strings.TrimSpace(rec.Action),
			Probability: clampProbability(rec.Probability),
		}
		if rec.Rationale != nil {
			projected.Rationale = *rec.Rationale
		}
		result.Recommendations = append(result.Recommendations, projected)
	}

	if payload.Cluster != nil {
		result.Cluster = projectCluster(*payload.Cluster)
	}

	if payload.Narrative != nil && strings.TrimSpace(*payload.Narrative) != "" {
		result.Narrative = strings.TrimSpace(*payload.Narrative)
	}

	if payload.Message != nil {
		result.Message = *payload.Message
	}

	if payload.GeneratedAt != nil {
		if ts, ok := parseTimestamp(*payload.GeneratedAt); ok {
			result.GeneratedAt = ts
		}
	}

	return result, nil
}

func projectCluster(c clusterPayload) *model.ClusterInsight {
	insight := &model.ClusterInsight{
		ID:      c.ID,
		Drivers: c.Drivers,
	}
	if c.Label != nil {
		insight.Label = *c.Label
	}
	if c.Description != nil {
		insight.Description = *c.Description
	}
	// The service emits null for metrics it could not compute.
	if c.Metrics != nil {
		insight.Metrics = make(map[string]float64, len(c.Metrics))
		for k, v := range c.Metrics {
			if v != nil {
				insight.Metrics[k] = *v
			}
		}
	}
	return insight
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// parseTimestamp accepts RFC 3339 with or without a zone offset.
func parseTimestamp(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

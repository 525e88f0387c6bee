package model

import "time"

// RequestStatus is the externally observable state of the request coordinator.
type RequestStatus int

// Request status constants.
const (
	StatusIdle RequestStatus = iota
	StatusLoading
	StatusError
)

func (s RequestStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ResultSource records where an applied result came from.
type ResultSource string

// Result source constants.
const (
	SourceLive     ResultSource = "live"
	SourceDemo     ResultSource = "demo"
	SourceFallback ResultSource = "fallback"
)

// InferenceRequest is the body posted to the signal service.
// PriceWeight + SentimentWeight is always exactly 1.
type InferenceRequest struct {
	WalletHint      string
	PriceWeight     float64
	SentimentWeight float64
}

// Recommendation is a single ranked action.
type Recommendation struct {
	Action      string
	Rationale   string
	Probability float64
}

// ClusterInsight describes the active regime cluster.
type ClusterInsight struct {
	Metrics     map[string]float64
	Label       string
	Description string
	Drivers     []string
	ID          int
}

// InferenceResult is a display-ready result, live or synthetic.
type InferenceResult struct {
	GeneratedAt     time.Time
	Cluster         *ClusterInsight
	Narrative       string
	Message         string
	Source          ResultSource
	Recommendations []Recommendation
}

// TopRecommendation returns the highest ranked action, if any.
func (r InferenceResult) TopRecommendation() (Recommendation, bool) {
	if len(r.Recommendations) == 0 {
		return Recommendation{}, false
	}
	return r.Recommendations[0], true
}

// Clone returns a deep copy of the result.
func (r InferenceResult) Clone() InferenceResult {
	out := r
	if r.Recommendations != nil {
		out.Recommendations = make([]Recommendation, len(r.Recommendations))
		copy(out.Recommendations, r.Recommendations)
	}
	if r.Cluster != nil {
		c := *r.Cluster
		if r.Cluster.Drivers != nil {
			c.Drivers = make([]string, len(r.Cluster.Drivers))
			copy(c.Drivers, r.Cluster.Drivers)
		}
		if r.Cluster.Metrics != nil {
			c.Metrics = make(map[string]float64, len(r.Cluster.Metrics))
			for k, v := range r.Cluster.Metrics {
				c.Metrics[k] = v
			}
		}
		out.Cluster = &c
	}
	return out
}

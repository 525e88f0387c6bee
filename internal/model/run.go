package model

import "time"

// Run is a persisted record of one applied inference result.
type Run struct {
	CreatedAt  time.Time
	Request    InferenceRequest
	ID         string
	Status     RequestStatus
	Diagnostic string
	Result     InferenceResult
	Generation uint64
}

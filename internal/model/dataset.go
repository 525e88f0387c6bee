package model

import "time"

// DatasetStatus is the verification state of a registry entry.
type DatasetStatus string

// Dataset status constants.
const (
	DatasetOK      DatasetStatus = "ok"
	DatasetMissing DatasetStatus = "missing"
)

// Attestation is a simulated restaking attestation attached to a dataset.
type Attestation struct {
	ProofID    string  `json:"proof_id"`
	Simulated  bool    `json:"simulated"`
	Confidence float64 `json:"confidence"`
}

// ZKPSimulation is a simulated zero-knowledge proof result.
type ZKPSimulation struct {
	Scheme  string `json:"scheme"`
	Status  string `json:"status"`
	Dataset string `json:"dataset"`
}

// DatasetRecord is one entry of the dataset integrity registry.
type DatasetRecord struct {
	LastVerifiedAt time.Time      `json:"last_verified_at"`
	SizeBytes      *int64         `json:"size_bytes"`
	Attestation    *Attestation   `json:"eigenlayer_attestation,omitempty"`
	ZKP            *ZKPSimulation `json:"zkp_simulation,omitempty"`
	ID             string         `json:"id"`
	Label          string         `json:"label"`
	Path           string         `json:"path,omitempty"`
	Status         DatasetStatus  `json:"status"`
	SHA256         string         `json:"sha256,omitempty"`
}

// Verified reports whether the dataset was found and hashed.
func (d DatasetRecord) Verified() bool {
	return d.Status == DatasetOK && d.SHA256 != ""
}

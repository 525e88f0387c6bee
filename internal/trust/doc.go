// Package trust reads and builds the dataset integrity registry.
//
// The registry lists every dataset the signal models were trained on with
// its SHA-256 digest and simulated attestation records. The dashboard only
// renders it; nothing in the request path depends on it.
package trust

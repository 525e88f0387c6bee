// Package signals talks to the model signal service. It posts price and
// sentiment weightings, classifies failures into cancellations, transport
// failures and malformed responses, and projects raw responses into
// display-ready results with defaults for absent fields.
package signals

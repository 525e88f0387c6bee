// Package storage provides the data persistence layer for run history and
// the dataset registry snapshot.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/signal-deck/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidRun     = errors.New("invalid run")
	ErrInvalidDataset = errors.New("invalid dataset")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRun(run *model.Run) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRun)
	}
	if run.Result.Source == "" {
		return fmt.Errorf("%w: missing result source", ErrInvalidRun)
	}
	sum := run.Request.PriceWeight + run.Request.SentimentWeight
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: weights sum to %.4f", ErrInvalidRun, sum)
	}
	return nil
}

func validateDataset(record model.DatasetRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidDataset)
	}
	if record.Status == "" {
		return fmt.Errorf("%w: %s has no status", ErrInvalidDataset, record.ID)
	}
	return nil
}

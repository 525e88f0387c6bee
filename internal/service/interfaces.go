// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/signal-deck/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Run history
	SaveRun(ctx context.Context, run *model.Run) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// Dataset registry snapshot
	ReplaceDatasets(ctx context.Context, records []model.DatasetRecord) error
	ListDatasets(ctx context.Context) ([]model.DatasetRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RegistrySource lists the dataset integrity registry.
type RegistrySource interface {
	Datasets(ctx context.Context) ([]model.DatasetRecord, error)
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/signal-deck/internal/common"
	"github.com/Veraticus/signal-deck/internal/model"
)

// DefaultRunLimit is used when ListRuns is called without a limit.
const DefaultRunLimit = 20

// SaveRun persists an applied result.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	recommendations, err := json.Marshal(run.Result.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}

	var cluster sql.NullString
	if run.Result.Cluster != nil {
		encoded, encErr := json.Marshal(run.Result.Cluster)
		if encErr != nil {
			return fmt.Errorf("failed to encode cluster: %w", encErr)
		}
		cluster = sql.NullString{String: string(encoded), Valid: true}
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, generation, source, status, price_weight, sentiment_weight,
			wallet_hint, diagnostic, message, narrative, recommendations,
			cluster, generated_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		int64(run.Generation),
		string(run.Result.Source),
		run.Status.String(),
		run.Request.PriceWeight,
		run.Request.SentimentWeight,
		run.Request.WalletHint,
		run.Diagnostic,
		run.Result.Message,
		run.Result.Narrative,
		string(recommendations),
		cluster,
		run.Result.GeneratedAt.UTC(),
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	slog.Debug("saved run", "id", run.ID, "source", run.Result.Source, "generation", run.Generation)
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRunLimit
	}

	rows, err := s.db.QueryContext(ctx, runSelect+`
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun returns a single run by id.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, runSelect+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

const runSelect = `
	SELECT id, generation, source, status, price_weight, sentiment_weight,
		wallet_hint, diagnostic, message, narrative, recommendations,
		cluster, generated_at, created_at
	FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.Run, error) {
	var (
		run             model.Run
		generation      int64
		source          string
		status          string
		walletHint      sql.NullString
		diagnostic      sql.NullString
		message         sql.NullString
		narrative       sql.NullString
		recommendations string
		cluster         sql.NullString
	)

	err := row.Scan(
		&run.ID,
		&generation,
		&source,
		&status,
		&run.Request.PriceWeight,
		&run.Request.SentimentWeight,
		&walletHint,
		&diagnostic,
		&message,
		&narrative,
		&recommendations,
		&cluster,
		&run.Result.GeneratedAt,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, err
	}
	if err != nil {
		return model.Run{}, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Generation = uint64(generation)
	run.Status = parseStatus(status)
	run.Request.WalletHint = walletHint.String
	run.Diagnostic = diagnostic.String
	run.Result.Source = model.ResultSource(source)
	run.Result.Message = message.String
	run.Result.Narrative = narrative.String

	if err := json.Unmarshal([]byte(recommendations), &run.Result.Recommendations); err != nil {
		return model.Run{}, fmt.Errorf("%w: run %s recommendations: %w", common.ErrDatabaseCorrupted, run.ID, err)
	}
	if cluster.Valid {
		var insight model.ClusterInsight
		if err := json.Unmarshal([]byte(cluster.String), &insight); err != nil {
			return model.Run{}, fmt.Errorf("%w: run %s cluster: %w", common.ErrDatabaseCorrupted, run.ID, err)
		}
		run.Result.Cluster = &insight
	}

	return run, nil
}

func parseStatus(s string) model.RequestStatus {
	switch s {
	case model.StatusLoading.String():
		return model.StatusLoading
	case model.StatusError.String():
		return model.StatusError
	default:
		return model.StatusIdle
	}
}

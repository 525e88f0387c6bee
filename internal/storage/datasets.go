package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/signal-deck/internal/model"
)

// ReplaceDatasets stores the latest registry snapshot, replacing the previous one.
func (s *SQLiteStorage) ReplaceDatasets(ctx context.Context, records []model.DatasetRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for _, record := range records {
		if err := validateDataset(record); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets`); err != nil {
		return fmt.Errorf("failed to clear datasets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO datasets (id, label, path, status, size_bytes, sha256, last_verified_at, observed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare dataset insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	observedAt := time.Now().UTC()
	for _, record := range records {
		var size sql.NullInt64
		if record.SizeBytes != nil {
			size = sql.NullInt64{Int64: *record.SizeBytes, Valid: true}
		}
		var verifiedAt sql.NullTime
		if !record.LastVerifiedAt.IsZero() {
			verifiedAt = sql.NullTime{Time: record.LastVerifiedAt.UTC(), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			record.ID,
			record.Label,
			record.Path,
			string(record.Status),
			size,
			record.SHA256,
			verifiedAt,
			observedAt,
		); err != nil {
			return fmt.Errorf("failed to save dataset %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit datasets: %w", err)
	}
	return nil
}

// ListDatasets returns the stored registry snapshot ordered by id.
func (s *SQLiteStorage) ListDatasets(ctx context.Context) ([]model.DatasetRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, path, status, size_bytes, sha256, last_verified_at
		FROM datasets
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.DatasetRecord
	for rows.Next() {
		var (
			record     model.DatasetRecord
			path       sql.NullString
			status     string
			size       sql.NullInt64
			sha        sql.NullString
			verifiedAt sql.NullTime
		)
		if err := rows.Scan(&record.ID, &record.Label, &path, &status, &size, &sha, &verifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		record.Path = path.String
		record.Status = model.DatasetStatus(status)
		record.SHA256 = sha.String
		if size.Valid {
			v := size.Int64
			record.SizeBytes = &v
		}
		if verifiedAt.Valid {
			record.LastVerifiedAt = verifiedAt.Time
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datasets: %w", err)
	}
	return records, nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup errors.
var (
	ErrBackupExists      = errors.New("backup already exists")
	ErrBackupUnsupported = errors.New("backups need a file-backed database")
	ErrInvalidBackupTag  = errors.New("invalid backup tag")
)

// BackupInfo describes one database snapshot written next to the database.
type BackupInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Path          string    `json:"path"`
	FileSize      int64     `json:"file_size"`
	Runs          int       `json:"runs"`
	Datasets      int       `json:"datasets"`
	SchemaVersion int       `json:"schema_version"`
}

// BackupDir returns the directory snapshots are written to.
func (s *SQLiteStorage) BackupDir() string {
	return filepath.Join(filepath.Dir(s.dbPath), "backups")
}

// Backup writes a consistent copy of the database with VACUUM INTO and a
// JSON sidecar describing it. An empty tag is replaced by a timestamp.
func (s *SQLiteStorage) Backup(ctx context.Context, tag string) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if s.dbPath == ":memory:" {
		return nil, ErrBackupUnsupported
	}
	if tag == "" {
		tag = "backup-" + time.Now().Format("2006-01-02-150405")
	}
	if strings.ContainsAny(tag, `/\'";`) || strings.Contains(tag, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBackupTag, tag)
	}

	dir, err := filepath.Abs(s.BackupDir())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup directory: %w", err)
	}
	if strings.ContainsAny(dir, `'";`) {
		return nil, fmt.Errorf("backup directory %q contains forbidden characters", dir)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest := filepath.Join(dir, tag+".db")
	if _, err := os.Stat(dest); err == nil {
		return nil, ErrBackupExists
	}

	info := &BackupInfo{ID: tag, Path: dest, CreatedAt: time.Now()}
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&info.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&info.Runs); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM datasets").Scan(&info.Datasets); err != nil {
		return nil, fmt.Errorf("failed to count datasets: %w", err)
	}

	// #nosec G201 - dest is built from a validated tag and directory
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	stat, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}
	info.FileSize = stat.Size()

	if err := writeBackupInfo(filepath.Join(dir, tag+".meta.json"), info); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			slog.Error("failed to remove backup after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	slog.Info("Database backup written", "path", dest, "runs", info.Runs, "datasets", info.Datasets)
	return info, nil
}

// ListBackups returns the snapshots in the backup directory, newest first.
// Unreadable sidecars are skipped.
func (s *SQLiteStorage) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.BackupDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.BackupDir(), entry.Name()))
		if err != nil {
			continue
		}
		var info BackupInfo
		if err := json.Unmarshal(data, &info); err != nil {
			slog.Debug("skipping unreadable backup metadata", "file", entry.Name(), "error", err)
			continue
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

func writeBackupInfo(path string, info *BackupInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

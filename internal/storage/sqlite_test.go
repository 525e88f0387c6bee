package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/signal-deck/internal/fallback"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "deck.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func createTestRun(id string, generation uint64, createdAt time.Time) *model.Run {
	result := fallback.DemoSnapshot()
	return &model.Run{
		ID:         id,
		Generation: generation,
		Status:     model.StatusIdle,
		Request: model.InferenceRequest{
			PriceWeight:     0.6,
			SentimentWeight: 0.4,
			WalletHint:      "0xfeed",
		},
		Result:    result,
		CreatedAt: createdAt,
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	_, err := NewSQLiteStorage("")
	require.ErrorIs(t, err, ErrEmptyString)

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
	assert.Equal(t, ":memory:", store.Path())
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

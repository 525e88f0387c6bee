package trust

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/Veraticus/signal-deck/internal/service"
	"github.com/robfig/cron/v3"
)

// DefaultPollInterval is how often the watcher polls the registry.
const DefaultPollInterval = 30 * time.Second

// SnapshotStore persists the latest registry snapshot.
type SnapshotStore interface {
	ReplaceDatasets(ctx context.Context, records []model.DatasetRecord) error
}

// StatusChange describes a dataset whose status differs from the previous poll.
type StatusChange struct {
	ID   string
	From model.DatasetStatus
	To   model.DatasetStatus
}

func (c StatusChange) String() string {
	if c.From == "" {
		return fmt.Sprintf("%s: %s", c.ID, c.To)
	}
	return fmt.Sprintf("%s: %s -> %s", c.ID, c.From, c.To)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithSnapshotStore persists every successful poll.
func WithSnapshotStore(store SnapshotStore) WatcherOption {
	return func(w *Watcher) {
		w.store = store
	}
}

// WithChangeHandler is called with the changes from each poll that has any.
func WithChangeHandler(fn func([]StatusChange)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// Watcher polls the registry on a schedule and reports status changes.
type Watcher struct {
	source   service.RegistrySource
	store    SnapshotStore
	onChange func([]StatusChange)
	cron     *cron.Cron
	last     map[string]model.DatasetStatus
	interval time.Duration
	mu       sync.Mutex
}

// NewWatcher creates a watcher polling source every interval.
func NewWatcher(source service.RegistrySource, interval time.Duration, opts ...WatcherOption) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	w := &Watcher{
		source:   source,
		interval: interval,
		last:     make(map[string]model.DatasetStatus),
		cron:     cron.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start schedules polling and returns immediately. Polls run with ctx.
func (w *Watcher) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(fmt.Sprintf("@every %s", w.interval), func() {
		if _, err := w.Poll(ctx); err != nil {
			slog.Warn("Trust registry poll failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule registry poll: %w", err)
	}
	w.cron.Start()
	slog.Info("Watching trust registry", "interval", w.interval)
	return nil
}

// Stop halts the schedule and waits for a running poll to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
}

// Poll fetches the registry once and returns the status changes since the
// previous poll. The first poll reports every dataset.
func (w *Watcher) Poll(ctx context.Context) ([]StatusChange, error) {
	records, err := w.source.Datasets(ctx)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	changes := diffStatuses(w.last, records)
	next := make(map[string]model.DatasetStatus, len(records))
	for _, record := range records {
		next[record.ID] = record.Status
	}
	w.last = next
	w.mu.Unlock()

	for _, change := range changes {
		if change.To == model.DatasetMissing {
			slog.Warn("Dataset status changed", "dataset", change.ID, "from", change.From, "to", change.To)
			continue
		}
		slog.Info("Dataset status changed", "dataset", change.ID, "from", change.From, "to", change.To)
	}

	if w.store != nil {
		if err := w.store.ReplaceDatasets(ctx, records); err != nil {
			return changes, fmt.Errorf("failed to store registry snapshot: %w", err)
		}
	}

	if len(changes) > 0 && w.onChange != nil {
		w.onChange(changes)
	}
	return changes, nil
}

func diffStatuses(previous map[string]model.DatasetStatus, records []model.DatasetRecord) []StatusChange {
	var changes []StatusChange
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		seen[record.ID] = struct{}{}
		if before, ok := previous[record.ID]; !ok || before != record.Status {
			changes = append(changes, StatusChange{ID: record.ID, From: previous[record.ID], To: record.Status})
		}
	}
	var removed []string
	for id := range previous {
		if _, ok := seen[id]; !ok && previous[id] != model.DatasetMissing {
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	for _, id := range removed {
		changes = append(changes, StatusChange{ID: id, From: previous[id], To: model.DatasetMissing})
	}
	return changes
}

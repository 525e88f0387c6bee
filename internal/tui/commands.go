package tui

import (
	"context"
	"time"

	"github.com/Veraticus/signal-deck/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	storageTimeout  = 5 * time.Second
	registryTimeout = 20 * time.Second
	historyLimit    = 5
)

// loadRegistry fetches the dataset registry once.
func (m Model) loadRegistry() tea.Cmd {
	if m.registrySource == nil {
		return nil
	}
	ctx, source := m.ctx, m.registrySource
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, registryTimeout)
		defer cancel()

		records, err := source.Datasets(ctx)
		return registryLoadedMsg{records: records, err: err}
	}
}

// scheduleRegistryPoll fires the next registry poll after the interval.
func (m Model) scheduleRegistryPoll() tea.Cmd {
	if m.registrySource == nil {
		return nil
	}
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return registryPollMsg{}
	})
}

// saveRun persists an applied result.
func (m Model) saveRun(run model.Run) tea.Cmd {
	if m.storage == nil {
		return nil
	}
	ctx, store := m.ctx, m.storage
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, storageTimeout)
		defer cancel()

		err := store.SaveRun(ctx, &run)
		return runSavedMsg{id: run.ID, err: err}
	}
}

// loadHistory reads the most recent runs.
func (m Model) loadHistory() tea.Cmd {
	if m.storage == nil {
		return nil
	}
	ctx, store := m.ctx, m.storage
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, storageTimeout)
		defer cancel()

		runs, err := store.ListRuns(ctx, historyLimit)
		return historyLoadedMsg{runs: runs, err: err}
	}
}

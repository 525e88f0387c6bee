package tui

import "github.com/Veraticus/signal-deck/internal/model"

// Registry polling.
type registryPollMsg struct{}

type registryLoadedMsg struct {
	err     error
	records []model.DatasetRecord
}

// Run history.
type runSavedMsg struct {
	err error
	id  string
}

type historyLoadedMsg struct {
	err  error
	runs []model.Run
}

// Package tui implements the interactive signal dashboard.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/signal-deck/internal/bias"
	"github.com/Veraticus/signal-deck/internal/coordinator"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/Veraticus/signal-deck/internal/service"
	"github.com/Veraticus/signal-deck/internal/tui/components"
	"github.com/Veraticus/signal-deck/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Model holds the dashboard state. Every coordinator transition happens in
// Update, so the coordinator never needs locking.
type Model struct {
	ctx            context.Context
	theme          themes.Theme
	storage        service.Storage
	registrySource service.RegistrySource
	saveErr        error
	now            func() time.Time
	coord          coordinator.Coordinator
	signals        components.SignalPanelModel
	registry       components.RegistryPanelModel
	stats          components.StatsPanelModel
	gauge          components.BiasGaugeModel
	help           help.Model
	keymap         KeyMap
	prefs          model.PreferenceState
	pollInterval   time.Duration
	appliedRev     uint64
	width          int
	height         int
	autoRun        bool
	quitting       bool
}

// New creates the dashboard model.
func New(ctx context.Context, opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	prefs := bias.NewState(cfg.InitialWeight)
	coord, err := coordinator.New(ctx, cfg.Coordinator, prefs.EffectiveBias)
	if err != nil {
		return Model{}, fmt.Errorf("failed to create coordinator: %w", err)
	}

	now := cfg.Coordinator.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		ctx:            ctx,
		theme:          cfg.Theme,
		storage:        cfg.Storage,
		registrySource: cfg.Registry,
		now:            now,
		coord:          coord,
		signals:        components.NewSignalPanelModel(cfg.Theme),
		registry:       components.NewRegistryPanelModel(cfg.Theme),
		stats:          components.NewStatsPanelModel(cfg.Theme),
		gauge:          components.NewBiasGaugeModel(prefs, cfg.Theme),
		help:           help.New(),
		keymap:         DefaultKeyMap(),
		prefs:          prefs,
		pollInterval:   cfg.PollInterval,
		autoRun:        cfg.AutoRun,
	}
	m.resize(cfg.Width, cfg.Height)
	return m, nil
}

// Init starts the spinner, the first run and the background loads.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.signals.Init(), m.loadRegistry(), m.loadHistory()}
	if m.autoRun {
		cmds = append(cmds, func() tea.Msg { return coordinator.ManualRunMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.signals, cmd = m.signals.Update(msg)
		return m, cmd

	case registryPollMsg:
		return m, m.loadRegistry()

	case registryLoadedMsg:
		if msg.err != nil {
			slog.Warn("Failed to load trust registry", "error", msg.err)
		}
		m.registry.SetDatasets(msg.records, msg.err)
		return m, m.scheduleRegistryPoll()

	case runSavedMsg:
		if msg.err != nil {
			slog.Error("Failed to save run", "run_id", msg.id, "error", msg.err)
			m.saveErr = msg.err
			return m, nil
		}
		m.saveErr = nil
		return m, m.loadHistory()

	case historyLoadedMsg:
		if msg.err != nil {
			slog.Warn("Failed to load run history", "error", msg.err)
			return m, nil
		}
		m.stats.SetHistory(msg.runs)
		return m, nil
	}

	return m.updateCoordinator(msg)
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// Coordinator exposes the request coordinator state.
func (m Model) Coordinator() coordinator.Coordinator {
	return m.coord
}

// Preferences returns the current bias control state.
func (m Model) Preferences() model.PreferenceState {
	return m.prefs
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		m.coord, _ = m.coord.Update(coordinator.AbortMsg{})
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Lower):
		return m.setPreferences(bias.SetRawWeight(m.prefs, m.prefs.RawWeight-weightStep))

	case key.Matches(msg, m.keymap.Raise):
		return m.setPreferences(bias.SetRawWeight(m.prefs, m.prefs.RawWeight+weightStep))

	case key.Matches(msg, m.keymap.PriceFocus):
		return m.setPreferences(bias.SetFocus(m.prefs, model.FocusPrice))

	case key.Matches(msg, m.keymap.SentimentFocus):
		return m.setPreferences(bias.SetFocus(m.prefs, model.FocusSentiment))

	case key.Matches(msg, m.keymap.Run):
		return m.updateCoordinator(coordinator.ManualRunMsg{})

	case key.Matches(msg, m.keymap.RunWallet):
		return m.updateCoordinator(coordinator.ManualRunMsg{IncludeWalletHint: true})

	case key.Matches(msg, m.keymap.Abort):
		return m.updateCoordinator(coordinator.AbortMsg{})
	}
	return m, nil
}

// setPreferences only notifies the coordinator when the effective bias moved.
func (m Model) setPreferences(prefs model.PreferenceState, changed bool) (tea.Model, tea.Cmd) {
	m.prefs = prefs
	m.gauge.SetState(prefs)
	if !changed {
		return m, nil
	}
	return m.updateCoordinator(coordinator.BiasChangedMsg{Bias: prefs.EffectiveBias})
}

func (m Model) updateCoordinator(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.coord, cmd = m.coord.Update(msg)
	m.signals.SetStatus(m.coord.Status(), m.coord.Diagnostic())

	if m.coord.Revision() == m.appliedRev {
		return m, cmd
	}
	m.appliedRev = m.coord.Revision()

	result, ok := m.coord.Result()
	if !ok {
		return m, cmd
	}
	m.signals.SetResult(result)
	m.stats.RecordApplied(result)

	run := model.Run{
		ID:         uuid.NewString(),
		CreatedAt:  m.now(),
		Request:    m.coord.LastRequest(),
		Status:     m.coord.Status(),
		Diagnostic: m.coord.Diagnostic(),
		Result:     result,
		Generation: m.coord.Generation(),
	}
	return m, tea.Batch(cmd, m.saveRun(run))
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	main, side := m.columns()
	m.gauge.Resize(main)
	m.signals.Resize(main)
	m.registry.Resize(side)
	m.stats.Resize(side)
	m.stats.SetCompact(width < wideLayout)
}

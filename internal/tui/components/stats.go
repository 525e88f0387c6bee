package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/signal-deck/internal/bias"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/Veraticus/signal-deck/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// historyRows is how many recent runs the panel lists.
const historyRows = 5

// StatsPanelModel displays session statistics and recent run history.
type StatsPanelModel struct {
	theme     themes.Theme
	startTime time.Time
	sources   map[model.ResultSource]int
	history   []model.Run
	applied   int
	width     int
	compact   bool
}

// NewStatsPanelModel creates a new stats panel.
func NewStatsPanelModel(theme themes.Theme) StatsPanelModel {
	return StatsPanelModel{
		theme:     theme,
		startTime: time.Now(),
		sources:   make(map[model.ResultSource]int),
	}
}

// RecordApplied counts one applied result.
func (m *StatsPanelModel) RecordApplied(result model.InferenceResult) {
	m.applied++
	m.sources[result.Source]++
}

// SetHistory replaces the recent run list, newest first.
func (m *StatsPanelModel) SetHistory(runs []model.Run) {
	m.history = runs
}

// SetCompact switches to the single-line rendering.
func (m *StatsPanelModel) SetCompact(compact bool) {
	m.compact = compact
}

// Resize adjusts the panel width.
func (m *StatsPanelModel) Resize(width int) {
	m.width = width
}

// View renders the stats panel.
func (m StatsPanelModel) View() string {
	if m.compact {
		return m.renderCompact()
	}

	sections := []string{m.renderSession()}
	if len(m.history) > 0 {
		sections = append(sections, "", m.renderHistory())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m StatsPanelModel) renderCompact() string {
	return m.theme.Faint.Render(fmt.Sprintf(
		"Runs: %d | Live: %d | Demo: %d | Fallback: %d | Up %s",
		m.applied,
		m.sources[model.SourceLive],
		m.sources[model.SourceDemo],
		m.sources[model.SourceFallback],
		formatDuration(time.Since(m.startTime)),
	))
}

func (m StatsPanelModel) renderSession() string {
	title := m.theme.Subtitle.Render("Session")

	items := []struct {
		style lipgloss.Style
		label string
		count int
	}{
		{style: m.theme.StatusSuccess, label: "Live", count: m.sources[model.SourceLive]},
		{style: m.theme.StatusIdle, label: "Demo", count: m.sources[model.SourceDemo]},
		{style: m.theme.StatusWarning, label: "Fallback", count: m.sources[model.SourceFallback]},
	}

	lines := []string{
		fmt.Sprintf("%-10s %d", "Applied:", m.applied),
	}
	for _, item := range items {
		if item.count > 0 {
			lines = append(lines, fmt.Sprintf("%-10s %s", item.label+":", item.style.Render(fmt.Sprintf("%d", item.count))))
		}
	}
	lines = append(lines, fmt.Sprintf("%-10s %s", "Uptime:", formatDuration(time.Since(m.startTime))))

	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Normal.Render(strings.Join(lines, "\n")))
}

func (m StatsPanelModel) renderHistory() string {
	title := m.theme.Subtitle.Render("Recent runs")

	lines := make([]string, 0, historyRows)
	for _, run := range m.history[:min(historyRows, len(m.history))] {
		top := "—"
		if rec, ok := run.Result.TopRecommendation(); ok {
			top = rec.Action
		}
		lines = append(lines, fmt.Sprintf("%s  %-8s %-13s %s",
			run.CreatedAt.Local().Format("15:04:05"),
			run.Result.Source,
			truncate(top, 13),
			m.theme.Faint.Render(bias.Describe(int(run.Request.PriceWeight*100+0.5))),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Normal.Render(strings.Join(lines, "\n")))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/Veraticus/signal-deck/internal/tui/themes"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

// SignalPanelModel renders the current recommendation set and request status.
type SignalPanelModel struct {
	theme      themes.Theme
	spinner    spinner.Model
	diagnostic string
	result     model.InferenceResult
	status     model.RequestStatus
	width      int
	hasResult  bool
}

// NewSignalPanelModel creates an empty signal panel.
func NewSignalPanelModel(theme themes.Theme) SignalPanelModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	return SignalPanelModel{
		theme:   theme,
		spinner: s,
		width:   80,
	}
}

// Init starts the spinner.
func (m SignalPanelModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the spinner.
func (m SignalPanelModel) Update(msg tea.Msg) (SignalPanelModel, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	return m, nil
}

// SetStatus records the coordinator's observable state.
func (m *SignalPanelModel) SetStatus(status model.RequestStatus, diagnostic string) {
	m.status = status
	m.diagnostic = diagnostic
}

// SetResult replaces the displayed result.
func (m *SignalPanelModel) SetResult(result model.InferenceResult) {
	m.result = result
	m.hasResult = true
}

// Resize adjusts the panel width.
func (m *SignalPanelModel) Resize(width int) {
	m.width = width
}

// View renders the panel.
func (m SignalPanelModel) View() string {
	sections := []string{m.renderStatus()}

	if !m.hasResult {
		sections = append(sections, m.theme.Faint.Render("No signals yet. Press r to run."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections,
		"",
		m.renderRecommendations(),
		"",
		m.renderCluster(),
		"",
		m.renderNarrative(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SignalPanelModel) renderStatus() string {
	style := m.theme.StatusStyle(m.status)
	label := style.Render(strings.ToUpper(m.status.String()))

	switch m.status {
	case model.StatusLoading:
		return fmt.Sprintf("%s %s", m.spinner.View(), label)
	case model.StatusError:
		return fmt.Sprintf("%s  %s", label, m.theme.StatusWarning.Render(m.diagnostic))
	}

	if m.hasResult && m.result.Message != "" {
		return fmt.Sprintf("%s  %s", label, m.theme.Faint.Render(m.result.Message))
	}
	return label
}

func (m SignalPanelModel) renderRecommendations() string {
	title := m.theme.Subtitle.Render("Recommended actions")

	if len(m.result.Recommendations) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Faint.Render("No recommendations returned."))
	}

	lines := make([]string, 0, len(m.result.Recommendations)*2)
	for _, rec := range m.result.Recommendations {
		filled := min(max(int(rec.Probability*barWidth+0.5), 0), barWidth)
		bar := lipgloss.NewStyle().Foreground(m.theme.Primary).Render(strings.Repeat("█", filled)) +
			lipgloss.NewStyle().Foreground(m.theme.Border).Render(strings.Repeat("░", barWidth-filled))

		lines = append(lines, fmt.Sprintf("%s %-13s %s %5.1f%%",
			themes.GetActionIcon(rec.Action),
			truncate(rec.Action, 13),
			bar,
			rec.Probability*100,
		))
		if rec.Rationale != "" {
			lines = append(lines, m.theme.Faint.Render("   "+truncate(rec.Rationale, max(20, m.width-4))))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Normal.Render(strings.Join(lines, "\n")))
}

func (m SignalPanelModel) renderCluster() string {
	title := m.theme.Subtitle.Render("Regime cluster")

	cluster := m.result.Cluster
	if cluster == nil {
		return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Faint.Render("No cluster insight."))
	}

	lines := []string{
		fmt.Sprintf("%s %s", m.theme.Bold.Render(cluster.Label), m.theme.Faint.Render(fmt.Sprintf("#%d", cluster.ID))),
	}
	if cluster.Description != "" {
		lines = append(lines, m.wrap(cluster.Description))
	}
	if len(cluster.Drivers) > 0 {
		lines = append(lines, "Drivers: "+strings.Join(cluster.Drivers, ", "))
	}

	keys := make([]string, 0, len(cluster.Metrics))
	for k := range cluster.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("  %-18s %8.3f", k, cluster.Metrics[k]))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Normal.Render(strings.Join(lines, "\n")))
}

func (m SignalPanelModel) renderNarrative() string {
	title := m.theme.Subtitle.Render("Narrative")
	stamp := m.theme.Faint.Render(fmt.Sprintf("generated %s · %s",
		m.result.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
		m.result.Source,
	))
	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Italic.Render(m.wrap(m.result.Narrative)), stamp)
}

func (m SignalPanelModel) wrap(s string) string {
	return lipgloss.NewStyle().Width(max(20, m.width-2)).Render(s)
}

func truncate(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-1]) + "…"
}

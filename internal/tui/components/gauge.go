package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/signal-deck/internal/bias"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/Veraticus/signal-deck/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// BiasGaugeModel renders the price/sentiment control.
type BiasGaugeModel struct {
	theme themes.Theme
	bar   progress.Model
	state model.PreferenceState
	width int
}

// NewBiasGaugeModel creates a gauge for the given preference state.
func NewBiasGaugeModel(state model.PreferenceState, theme themes.Theme) BiasGaugeModel {
	bar := progress.New(progress.WithGradient(theme.GaugeStart, theme.GaugeEnd))
	bar.ShowPercentage = false
	bar.Width = 40

	return BiasGaugeModel{
		theme: theme,
		bar:   bar,
		state: state,
		width: 44,
	}
}

// SetState replaces the displayed preference state.
func (m *BiasGaugeModel) SetState(state model.PreferenceState) {
	m.state = state
}

// Resize adjusts the gauge width.
func (m *BiasGaugeModel) Resize(width int) {
	m.width = width
	m.bar.Width = max(10, min(width-4, 60))
}

// View renders the gauge.
func (m BiasGaugeModel) View() string {
	title := m.theme.Subtitle.Render("Signal bias")

	raw := m.bar.ViewAs(float64(m.state.RawWeight) / float64(bias.MaxWeight))
	scale := m.theme.Faint.Render(fmt.Sprintf("sentiment %s price", strings.Repeat(" ", max(0, m.bar.Width-16))))

	focus := m.theme.Bold.Render(string(m.state.Focus))
	summary := fmt.Sprintf("control %d  →  %s  (focus %s)",
		m.state.RawWeight,
		m.theme.Bold.Render(bias.Describe(m.state.EffectiveBias)),
		focus,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		raw,
		scale,
		m.theme.Normal.Render(summary),
	)
}

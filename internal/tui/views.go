package tui

import (
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// wideLayout is the terminal width at which the side column appears.
const wideLayout = 120

// columns returns the main and side column widths.
func (m Model) columns() (int, int) {
	usable := max(m.width-4, 40)
	if m.width < wideLayout {
		return usable, usable
	}
	main := usable * 3 / 5
	return main, usable - main - 3
}

func (m Model) render() string {
	main := lipgloss.JoinVertical(
		lipgloss.Left,
		m.gauge.View(),
		"",
		m.signals.View(),
	)

	side := lipgloss.JoinVertical(
		lipgloss.Left,
		m.registry.View(),
		"",
		m.stats.View(),
	)

	var body string
	if m.width < wideLayout {
		body = lipgloss.JoinVertical(lipgloss.Left, main, "", side)
	} else {
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			main,
			m.theme.Faint.Render(" │ "),
			side,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.theme.RoundedBox.Render(body),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("signal-deck")

	mode := m.theme.StatusSuccess.Render("LIVE")
	if m.coord.Demo() {
		mode = m.theme.StatusWarning.Render("DEMO")
	}

	pending := ""
	if m.coord.DebouncePending() {
		pending = m.theme.Faint.Render("  waiting for input to settle…")
	} else if m.coord.Status() == model.StatusLoading {
		pending = m.theme.Faint.Render("  request in flight")
	}

	return title + "  " + mode + pending
}

func (m Model) renderFooter() string {
	footer := m.help.View(m.keymap)
	if m.saveErr != nil {
		footer = lipgloss.JoinVertical(
			lipgloss.Left,
			m.theme.StatusError.Render("History not saved: "+m.saveErr.Error()),
			footer,
		)
	}
	return footer
}

// Package themes defines the dashboard color palettes.
package themes

import (
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the dashboard.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Italic        lipgloss.Style
	Faint         lipgloss.Style
	Code          lipgloss.Style
	Selected      lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusIdle    lipgloss.Style
	StatusLoading lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
	Warning       lipgloss.Color
	Success       lipgloss.Color
	GaugeStart    string
	GaugeEnd      string
}

type palette struct {
	primary, secondary, success, warning, danger, info string
	foreground, subtle, border, muted, surface         string
}

func newTheme(p palette) Theme {
	fg := lipgloss.Color(p.foreground)
	return Theme{
		Primary:    lipgloss.Color(p.primary),
		Secondary:  lipgloss.Color(p.secondary),
		Success:    lipgloss.Color(p.success),
		Warning:    lipgloss.Color(p.warning),
		Error:      lipgloss.Color(p.danger),
		Border:     lipgloss.Color(p.border),
		Muted:      lipgloss.Color(p.muted),
		GaugeStart: p.secondary,
		GaugeEnd:   p.primary,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.primary)),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.subtle)),
		Normal:   lipgloss.NewStyle().Foreground(fg),
		Bold:     lipgloss.NewStyle().Bold(true).Foreground(fg),
		Italic:   lipgloss.NewStyle().Italic(true).Foreground(fg),
		Faint:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
		Code: lipgloss.NewStyle().
			Background(lipgloss.Color(p.surface)).
			Foreground(fg).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(p.primary)).
			Foreground(lipgloss.Color(p.surface)).
			Bold(true),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(0, 1),

		StatusIdle:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.info)).Bold(true),
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)).Italic(true),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.danger)).Bold(true),
		StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color(p.warning)).Bold(true),
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color(p.success)).Bold(true),
	}
}

// Default is the default theme.
var Default = newTheme(palette{
	primary:    "#7c3aed",
	secondary:  "#a78bfa",
	success:    "#10b981",
	warning:    "#f59e0b",
	danger:     "#ef4444",
	info:       "#3b82f6",
	foreground: "#fafafa",
	subtle:     "#a3a3a3",
	border:     "#404040",
	muted:      "#737373",
	surface:    "#262626",
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(palette{
	primary:    "#cba6f7",
	secondary:  "#f5c2e7",
	success:    "#a6e3a1",
	warning:    "#f9e2af",
	danger:     "#f38ba8",
	info:       "#89dceb",
	foreground: "#cdd6f4",
	subtle:     "#a6adc8",
	border:     "#45475a",
	muted:      "#6c7086",
	surface:    "#313244",
})

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// StatusStyle returns the style for a request status.
func (t Theme) StatusStyle(status model.RequestStatus) lipgloss.Style {
	switch status {
	case model.StatusLoading:
		return t.StatusLoading
	case model.StatusError:
		return t.StatusError
	default:
		return t.StatusIdle
	}
}

// DatasetStyle returns the style for a registry entry.
func (t Theme) DatasetStyle(status model.DatasetStatus) lipgloss.Style {
	if status == model.DatasetOK {
		return t.StatusSuccess
	}
	return t.StatusWarning
}

// ActionIcons maps recommended actions to glyphs.
var ActionIcons = map[string]string{
	"restake":      "⟳",
	"stake":        "◆",
	"liquid_stake": "≈",
	"unstake":      "↓",
	"hold":         "■",
}

// GetActionIcon returns the glyph for an action.
func GetActionIcon(action string) string {
	if icon, ok := ActionIcons[action]; ok {
		return icon
	}
	return "•"
}

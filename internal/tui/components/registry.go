package components

import (
	"fmt"

	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/Veraticus/signal-deck/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// RegistryPanelModel renders the dataset integrity registry.
type RegistryPanelModel struct {
	theme    themes.Theme
	err      error
	table    table.Model
	datasets []model.DatasetRecord
	width    int
	loaded   bool
}

// NewRegistryPanelModel creates an empty registry panel.
func NewRegistryPanelModel(theme themes.Theme) RegistryPanelModel {
	t := table.New(
		table.WithColumns(registryColumns(60)),
		table.WithHeight(8),
		table.WithFocused(false),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(true)
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)

	return RegistryPanelModel{
		theme: theme,
		table: t,
		width: 60,
	}
}

// SetDatasets replaces the registry snapshot. A failed poll keeps the
// previous snapshot and records the error.
func (m *RegistryPanelModel) SetDatasets(records []model.DatasetRecord, err error) {
	m.err = err
	if err != nil {
		return
	}
	m.loaded = true
	m.datasets = records
	m.table.SetRows(m.buildRows())
	m.table.SetHeight(min(max(len(records)+1, 2), 12))
}

// Verified counts entries that were found and hashed.
func (m RegistryPanelModel) Verified() int {
	n := 0
	for _, d := range m.datasets {
		if d.Verified() {
			n++
		}
	}
	return n
}

// Resize adjusts column widths.
func (m *RegistryPanelModel) Resize(width int) {
	m.width = width
	m.table.SetColumns(registryColumns(width))
	m.table.SetWidth(width)
}

// View renders the panel.
func (m RegistryPanelModel) View() string {
	title := m.theme.Subtitle.Render("Dataset registry")

	var status string
	switch {
	case m.err != nil && !m.loaded:
		return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.StatusWarning.Render("Registry unavailable: "+m.err.Error()))
	case !m.loaded:
		return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Faint.Render("Loading registry..."))
	case m.err != nil:
		status = m.theme.StatusWarning.Render("stale: " + m.err.Error())
	default:
		status = m.theme.Faint.Render(fmt.Sprintf("%d/%d verified", m.Verified(), len(m.datasets)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, m.table.View(), status)
}

func (m RegistryPanelModel) buildRows() []table.Row {
	rows := make([]table.Row, 0, len(m.datasets))
	for _, d := range m.datasets {
		digest := "—"
		if d.SHA256 != "" {
			digest = truncate(d.SHA256, 12)
		}
		label := d.Label
		if label == "" {
			label = d.ID
		}
		rows = append(rows, table.Row{
			label,
			string(d.Status),
			formatSize(d.SizeBytes),
			digest,
		})
	}
	return rows
}

func registryColumns(width int) []table.Column {
	labelWidth := max(12, width-36)
	return []table.Column{
		{Title: "Dataset", Width: labelWidth},
		{Title: "Status", Width: 8},
		{Title: "Size", Width: 9},
		{Title: "SHA-256", Width: 13},
	}
}

func formatSize(size *int64) string {
	if size == nil {
		return "—"
	}
	const unit = 1024
	b := *size
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

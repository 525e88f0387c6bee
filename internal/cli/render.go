package cli

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/signal-deck/internal/bias"
	"github.com/Veraticus/signal-deck/internal/model"
)

const barWidth = 20

// FormatResult renders an applied result for the terminal.
func FormatResult(result model.InferenceResult, status model.RequestStatus, diagnostic string) string {
	var b strings.Builder

	switch status {
	case model.StatusError:
		b.WriteString(FormatWarning(diagnostic) + "\n")
	default:
		if result.Message != "" {
			b.WriteString(FormatInfo(result.Message) + "\n")
		}
	}

	b.WriteString(SubtitleStyle.Render("Recommended actions") + "\n")
	if len(result.Recommendations) == 0 {
		b.WriteString(SubtleStyle.Render("  none") + "\n")
	}
	for _, rec := range result.Recommendations {
		filled := min(max(int(rec.Probability*barWidth+0.5), 0), barWidth)
		fmt.Fprintf(&b, "  %-14s %s%s %5.1f%%\n",
			rec.Action,
			BarStyle.Render(strings.Repeat("█", filled)),
			SubtleStyle.Render(strings.Repeat("░", barWidth-filled)),
			rec.Probability*100,
		)
		if rec.Rationale != "" {
			b.WriteString(SubtleStyle.Render("    "+rec.Rationale) + "\n")
		}
	}

	if c := result.Cluster; c != nil {
		b.WriteString("\n" + SubtitleStyle.Render("Regime cluster") + "\n")
		fmt.Fprintf(&b, "  %s (#%d)\n", BoldStyle.Render(c.Label), c.ID)
		if c.Description != "" {
			b.WriteString("  " + c.Description + "\n")
		}
		if len(c.Drivers) > 0 {
			b.WriteString("  Drivers: " + strings.Join(c.Drivers, ", ") + "\n")
		}
		keys := make([]string, 0, len(c.Metrics))
		for k := range c.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %-18s %8.3f\n", k, c.Metrics[k])
		}
	}

	b.WriteString("\n" + SubtitleStyle.Render("Narrative") + "\n")
	b.WriteString("  " + result.Narrative + "\n")
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("  generated %s · %s",
		result.GeneratedAt.Local().Format(time.DateTime), result.Source)) + "\n")

	return b.String()
}

// FormatRuns renders run history as a table.
func FormatRuns(runs []model.Run) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSOURCE\tSTATUS\tBIAS\tTOP ACTION")
	for _, run := range runs {
		top := "-"
		if rec, ok := run.Result.TopRecommendation(); ok {
			top = fmt.Sprintf("%s (%.0f%%)", rec.Action, rec.Probability*100)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(run.ID),
			run.CreatedAt.Local().Format(time.DateTime),
			run.Result.Source,
			run.Status,
			bias.Describe(int(run.Request.PriceWeight*100+0.5)),
			top,
		)
	}
	_ = w.Flush()
	return buf.String()
}

// FormatDatasets renders registry entries as a table.
func FormatDatasets(records []model.DatasetRecord) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSIZE\tSHA-256\tVERIFIED")
	for _, r := range records {
		size := "-"
		if r.SizeBytes != nil {
			size = fmt.Sprintf("%d", *r.SizeBytes)
		}
		digest := "-"
		if r.SHA256 != "" {
			digest = r.SHA256[:min(16, len(r.SHA256))]
		}
		verified := "-"
		if !r.LastVerifiedAt.IsZero() {
			verified = r.LastVerifiedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Status, size, digest, verified)
	}
	_ = w.Flush()
	return buf.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

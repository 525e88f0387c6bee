package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/signal-deck/internal/bias"
	"github.com/Veraticus/signal-deck/internal/fallback"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatResult(t *testing.T) {
	out := FormatResult(fallback.DemoSnapshot(), model.StatusIdle, "")

	assert.Contains(t, out, fallback.DemoMessage)
	assert.Contains(t, out, "restake")
	assert.Contains(t, out, "54.0%")
	assert.Contains(t, out, "Restake skew")
	assert.Contains(t, out, "Narrative")
}

func TestFormatResultError(t *testing.T) {
	result, msg := fallback.ErrorSnapshot()
	out := FormatResult(result, model.StatusError, msg)

	assert.Contains(t, out, fallback.ErrorMessage)
	assert.Contains(t, out, "fallback")
}

func TestFormatResultEmpty(t *testing.T) {
	out := FormatResult(model.InferenceResult{Narrative: "quiet"}, model.StatusIdle, "")
	assert.Contains(t, out, "none")
	assert.NotContains(t, out, "Regime cluster")
	assert.Contains(t, out, "quiet")
}

func TestFormatRuns(t *testing.T) {
	runs := []model.Run{{
		ID:        "0123456789abcdef",
		CreatedAt: time.Date(2025, 11, 9, 12, 0, 0, 0, time.UTC),
		Request:   bias.NewRequest(bias.Low, ""),
		Status:    model.StatusIdle,
		Result:    fallback.DemoSnapshot(),
	}}

	out := FormatRuns(runs)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "TOP ACTION")
	assert.Contains(t, lines[1], "01234567")
	assert.NotContains(t, lines[1], "89abcdef")
	assert.Contains(t, lines[1], "50% price / 50% sentiment")
	assert.Contains(t, lines[1], "restake (54%)")
}

func TestFormatDatasets(t *testing.T) {
	size := int64(42)
	out := FormatDatasets([]model.DatasetRecord{
		{ID: "eeth_apr", Status: model.DatasetOK, SizeBytes: &size, SHA256: "0123456789abcdef0123"},
		{ID: "holder_retention", Status: model.DatasetMissing},
	})

	assert.Contains(t, out, "eeth_apr")
	assert.Contains(t, out, "0123456789abcdef")
	assert.NotContains(t, out, "0123456789abcdef0123")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "missing")
}

func TestFormatMessages(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), SuccessIcon)
	assert.Contains(t, FormatError("bad"), ErrorIcon)
	assert.Contains(t, FormatWarning("careful"), WarningIcon)
	assert.Contains(t, FormatInfo("note"), InfoIcon)
	assert.Contains(t, FormatTitle("deck"), "deck")
	assert.Contains(t, RenderBox("Title", "body"), "body")
}

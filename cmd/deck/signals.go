package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/signal-deck/internal/bias"
	"github.com/Veraticus/signal-deck/internal/cli"
	"github.com/Veraticus/signal-deck/internal/config"
	"github.com/Veraticus/signal-deck/internal/coordinator"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type signalsOutput struct {
	Recommendations []model.Recommendation `json:"recommendations"`
	Cluster         *model.ClusterInsight  `json:"cluster"`
	GeneratedAt     time.Time              `json:"generated_at"`
	RunID           string                 `json:"run_id,omitempty"`
	Status          string                 `json:"status"`
	Diagnostic      string                 `json:"diagnostic,omitempty"`
	Narrative       string                 `json:"narrative"`
	Message         string                 `json:"message,omitempty"`
	Source          model.ResultSource     `json:"source"`
	PriceWeight     float64                `json:"price_weight"`
	SentimentWeight float64                `json:"sentiment_weight"`
}

func signalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Run one signal request and print the result",
		Long: `Run a single request through the same coordinator the dashboard uses.
Failures fall back to the canned snapshot exactly as the dashboard does.`,
		Example: `  deck signals --weight 40
  deck signals --focus price --wallet
  deck signals --demo --json`,
		RunE: runSignals,
	}

	cmd.Flags().Int("weight", -1, "bias control value 0-100 (default: signals.demo_weight)")
	cmd.Flags().String("focus", "", "focus preset instead of a weight (price, sentiment)")
	cmd.Flags().Bool("wallet", false, "include the configured wallet hint")
	cmd.Flags().Bool("demo", false, "use canned demo signals instead of the live service")
	cmd.Flags().Bool("json", false, "print JSON")
	cmd.Flags().Bool("save", true, "save the result to run history")

	return cmd
}

func runSignals(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("demo") {
		settings.Signals.Demo, _ = cmd.Flags().GetBool("demo")
	}

	weight, _ := cmd.Flags().GetInt("weight")
	if weight < 0 {
		weight = settings.Signals.DemoWeight
	}
	prefs := bias.NewState(weight)

	if focus, _ := cmd.Flags().GetString("focus"); focus != "" {
		mode := model.FocusMode(focus)
		if !mode.Valid() {
			return fmt.Errorf("unknown focus %q (want price or sentiment)", focus)
		}
		prefs, _ = bias.SetFocus(prefs, mode)
	}

	coordCfg, err := newCoordinatorConfig(settings)
	if err != nil {
		return err
	}

	includeWallet, _ := cmd.Flags().GetBool("wallet")
	c, err := runOnce(ctx, coordCfg, prefs.EffectiveBias, includeWallet)
	if err != nil {
		return err
	}

	result, ok := c.Result()
	if !ok {
		return fmt.Errorf("request was cancelled")
	}

	var runID string
	if save, _ := cmd.Flags().GetBool("save"); save {
		runID, err = saveRun(ctx, settings, c, result)
		if err != nil {
			return err
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		req := c.LastRequest()
		out := signalsOutput{
			Recommendations: result.Recommendations,
			Cluster:         result.Cluster,
			GeneratedAt:     result.GeneratedAt,
			RunID:           runID,
			Status:          c.Status().String(),
			Diagnostic:      c.Diagnostic(),
			Narrative:       result.Narrative,
			Message:         result.Message,
			Source:          result.Source,
			PriceWeight:     req.PriceWeight,
			SentimentWeight: req.SentimentWeight,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	cmd.Println(cli.FormatTitle(fmt.Sprintf("Signals at %s", bias.Describe(prefs.EffectiveBias))))
	cmd.Print(cli.FormatResult(result, c.Status(), c.Diagnostic()))
	if runID != "" {
		cmd.Println(cli.SubtleStyle.Render("saved as run " + runID))
	}
	return nil
}

// runOnce drives a coordinator through one manual run, executing each
// command synchronously until it settles.
func runOnce(ctx context.Context, cfg coordinator.Config, effectiveBias int, includeWallet bool) (coordinator.Coordinator, error) {
	c, err := coordinator.New(ctx, cfg, effectiveBias)
	if err != nil {
		return coordinator.Coordinator{}, err
	}

	c, next := c.Update(coordinator.ManualRunMsg{IncludeWalletHint: includeWallet})
	for next != nil {
		c, next = c.Update(next())
	}
	return c, nil
}

// saveRun records the applied result in run history.
func saveRun(ctx context.Context, settings *config.Settings, c coordinator.Coordinator, result model.InferenceResult) (string, error) {
	store, err := initStorage(ctx, settings)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	run := &model.Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Request:    c.LastRequest(),
		Status:     c.Status(),
		Diagnostic: c.Diagnostic(),
		Result:     result,
		Generation: c.Generation(),
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	return run.ID, nil
}

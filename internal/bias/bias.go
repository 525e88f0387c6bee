// Package bias maps the operator's continuous weighting control into the
// quantized bias sent to the signal service.
package bias

import (
	"fmt"

	"github.com/Veraticus/signal-deck/internal/model"
)

const (
	// MinWeight and MaxWeight bound the raw control value.
	MinWeight = 0
	MaxWeight = 100

	// Threshold is the raw weight at which Snap switches to High.
	Threshold = 50
	// Low and High are the only two values Snap produces.
	Low  = 50
	High = 60

	// PriceFocusWeight and SentimentFocusWeight are seeded by a focus toggle.
	PriceFocusWeight     = 75
	SentimentFocusWeight = 25
)

// Snap quantizes a raw control value into an effective bias.
// The control looks continuous but only two biases exist: Low below
// Threshold and High at or above it.
func Snap(raw int) int {
	if clampWeight(raw) < Threshold {
		return Low
	}
	return High
}

// SelectFocus returns the raw weight a focus toggle seeds.
// Unknown modes are treated as price focus.
func SelectFocus(mode model.FocusMode) int {
	if mode == model.FocusSentiment {
		return SentimentFocusWeight
	}
	return PriceFocusWeight
}

// ToRequestWeights converts an effective bias into request weights.
// The pair always sums to exactly 1.
func ToRequestWeights(effectiveBias int) (priceWeight, sentimentWeight float64) {
	priceWeight = float64(effectiveBias) / 100
	if priceWeight < 0 {
		priceWeight = 0
	}
	if priceWeight > 1 {
		priceWeight = 1
	}
	return priceWeight, 1 - priceWeight
}

// NewRequest builds an inference request for the given bias and wallet hint.
func NewRequest(effectiveBias int, walletHint string) model.InferenceRequest {
	price, sentiment := ToRequestWeights(effectiveBias)
	return model.InferenceRequest{
		PriceWeight:     price,
		SentimentWeight: sentiment,
		WalletHint:      walletHint,
	}
}

// Describe renders the bias as the percentage split shown to the operator.
func Describe(effectiveBias int) string {
	price, sentiment := ToRequestWeights(effectiveBias)
	return fmt.Sprintf("%.0f%% price / %.0f%% sentiment", price*100, sentiment*100)
}

// NewState seeds a preference state from a configured raw weight.
func NewState(raw int) model.PreferenceState {
	raw = clampWeight(raw)
	return model.PreferenceState{
		Focus:         focusFor(raw),
		RawWeight:     raw,
		EffectiveBias: Snap(raw),
	}
}

// SetRawWeight moves the control and reports whether the effective bias changed.
func SetRawWeight(state model.PreferenceState, raw int) (model.PreferenceState, bool) {
	raw = clampWeight(raw)
	prev := state.EffectiveBias
	state.RawWeight = raw
	state.Focus = focusFor(raw)
	state.EffectiveBias = Snap(raw)
	return state, state.EffectiveBias != prev
}

// SetFocus applies a focus toggle and reports whether the effective bias changed.
func SetFocus(state model.PreferenceState, mode model.FocusMode) (model.PreferenceState, bool) {
	next, changed := SetRawWeight(state, SelectFocus(mode))
	if mode.Valid() {
		next.Focus = mode
	}
	return next, changed
}

func focusFor(raw int) model.FocusMode {
	if raw >= Threshold {
		return model.FocusPrice
	}
	return model.FocusSentiment
}

func clampWeight(raw int) int {
	if raw < MinWeight {
		return MinWeight
	}
	if raw > MaxWeight {
		return MaxWeight
	}
	return raw
}

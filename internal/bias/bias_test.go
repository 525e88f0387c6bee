package bias

import (
	"testing"

	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSnap(t *testing.T) {
	tests := []struct {
		name string
		raw  int
		want int
	}{
		{"zero", 0, 50},
		{"just below threshold", 49, 50},
		{"threshold", 50, 60},
		{"max", 100, 60},
		{"negative clamps low", -20, 50},
		{"above max clamps high", 250, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Snap(tt.raw))
		})
	}
}

func TestSnapIsTwoValued(t *testing.T) {
	for w := 0; w <= 49; w++ {
		assert.Equal(t, Low, Snap(w), "weight %d", w)
	}
	for w := 50; w <= 100; w++ {
		assert.Equal(t, High, Snap(w), "weight %d", w)
	}
}

func TestSelectFocus(t *testing.T) {
	assert.Equal(t, 75, SelectFocus(model.FocusPrice))
	assert.Equal(t, 25, SelectFocus(model.FocusSentiment))
	assert.Equal(t, 75, SelectFocus("unknown"))
}

func TestToRequestWeights(t *testing.T) {
	for b := -50; b <= 200; b++ {
		price, sentiment := ToRequestWeights(b)
		assert.Equal(t, 1.0, price+sentiment, "bias %d", b)
		assert.GreaterOrEqual(t, price, 0.0)
		assert.LessOrEqual(t, price, 1.0)
	}

	price, sentiment := ToRequestWeights(60)
	assert.InDelta(t, 0.6, price, 1e-12)
	assert.InDelta(t, 0.4, sentiment, 1e-12)

	price, sentiment = ToRequestWeights(150)
	assert.Equal(t, 1.0, price)
	assert.Equal(t, 0.0, sentiment)
}

func TestNewRequest(t *testing.T) {
	req := NewRequest(50, "0xabc")
	assert.InDelta(t, 0.5, req.PriceWeight, 1e-12)
	assert.InDelta(t, 0.5, req.SentimentWeight, 1e-12)
	assert.Equal(t, "0xabc", req.WalletHint)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "60% price / 40% sentiment", Describe(60))
	assert.Equal(t, "50% price / 50% sentiment", Describe(50))
}

func TestPreferenceTransitions(t *testing.T) {
	state := NewState(65)
	assert.Equal(t, 65, state.RawWeight)
	assert.Equal(t, High, state.EffectiveBias)
	assert.Equal(t, model.FocusPrice, state.Focus)

	t.Run("move within the same step", func(t *testing.T) {
		next, changed := SetRawWeight(state, 90)
		assert.False(t, changed)
		assert.Equal(t, 90, next.RawWeight)
		assert.Equal(t, High, next.EffectiveBias)
	})

	t.Run("cross the threshold", func(t *testing.T) {
		next, changed := SetRawWeight(state, 10)
		assert.True(t, changed)
		assert.Equal(t, Low, next.EffectiveBias)
		assert.Equal(t, model.FocusSentiment, next.Focus)
	})

	t.Run("focus toggle", func(t *testing.T) {
		next, changed := SetFocus(state, model.FocusSentiment)
		assert.True(t, changed)
		assert.Equal(t, SentimentFocusWeight, next.RawWeight)
		assert.Equal(t, Low, next.EffectiveBias)
		assert.Equal(t, model.FocusSentiment, next.Focus)

		again, changed := SetFocus(next, model.FocusSentiment)
		assert.False(t, changed)
		assert.Equal(t, next, again)
	})

	t.Run("out of range seed is clamped", func(t *testing.T) {
		assert.Equal(t, 100, NewState(400).RawWeight)
		assert.Equal(t, 0, NewState(-3).RawWeight)
	})
}

package model

// FocusMode is the discrete focus selection that seeds a default bias.
type FocusMode string

// Focus mode constants.
const (
	FocusPrice     FocusMode = "price"
	FocusSentiment FocusMode = "sentiment"
)

// Valid reports whether the mode is one of the known focus modes.
func (f FocusMode) Valid() bool {
	return f == FocusPrice || f == FocusSentiment
}

// PreferenceState is the operator's current weighting preference.
// EffectiveBias always holds a quantized value, never RawWeight itself.
type PreferenceState struct {
	Focus         FocusMode
	RawWeight     int
	EffectiveBias int
}

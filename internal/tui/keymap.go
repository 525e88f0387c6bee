package tui

import "github.com/charmbracelet/bubbles/key"

// weightStep is how far one key press moves the bias control.
const weightStep = 5

// KeyMap defines all keyboard shortcuts.
type KeyMap struct {
	// Bias control
	Lower          key.Binding
	Raise          key.Binding
	PriceFocus     key.Binding
	SentimentFocus key.Binding

	// Requests
	Run       key.Binding
	RunWallet key.Binding
	Abort     key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Lower: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "more sentiment"),
		),
		Raise: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "more price"),
		),
		PriceFocus: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "price focus"),
		),
		SentimentFocus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sentiment focus"),
		),
		Run: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "run now"),
		),
		RunWallet: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "run for wallet"),
		),
		Abort: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "abort"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Lower, k.Raise, k.Run, k.Help, k.Quit}
}

// FullHelp returns all key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Lower, k.Raise, k.PriceFocus, k.SentimentFocus},
		{k.Run, k.RunWallet, k.Abort},
		{k.Help, k.Quit},
	}
}

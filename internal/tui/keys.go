package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up      key.Binding
	Down    key.Binding
	Home    key.Binding
	End     key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Open    key.Binding
	Back    key.Binding

	// Playback
	Play     key.Binding
	Next     key.Binding
	Previous key.Binding
	Stop     key.Binding

	// Collections
	ToggleFavorite key.Binding
	ToggleQueue    key.Binding
	Remove         key.Binding
	Add            key.Binding

	// Catalog
	Search   key.Binding
	Category key.Binding

	// Other
	Filter key.Binding
	Escape key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab", "next view"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("S-tab", "previous view"),
		),

		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open/play"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "back"),
		),

		Play: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "play"),
		),
		Next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next episode"),
		),
		Previous: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "previous episode"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),

		ToggleFavorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle favorite"),
		),
		ToggleQueue: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle in queue"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add by id"),
		),

		Search: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "search podcasts"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "go to category"),
		),

		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel/clear"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.ToggleQueue, k.ToggleFavorite, k.Search, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Home, k.End, k.NextTab, k.PrevTab},
		{k.Open, k.Back, k.Search, k.Category},
		{k.Play, k.Next, k.Previous, k.Stop},
		{k.ToggleQueue, k.ToggleFavorite, k.Remove, k.Add},
		{k.Filter, k.Escape, k.Help, k.Quit},
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()

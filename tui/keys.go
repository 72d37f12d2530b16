package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Reseed  key.Binding
	Policy  key.Binding
	Backend key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Reset   key.Binding
	Pan     key.Binding
	Labels  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Reseed: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reseed"),
	),
	Policy: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "next seed policy"),
	),
	Backend: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "switch backend"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0", "home"),
		key.WithHelp("0", "reset view"),
	),
	Pan: key.NewBinding(
		key.WithKeys(" ", "space"),
		key.WithHelp("space", "pan lock"),
	),
	Labels: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "labels"),
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

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reseed, k.Backend, k.Pan, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Reseed, k.Policy, k.Backend},
		{k.ZoomIn, k.ZoomOut, k.Reset, k.Pan},
		{k.Labels, k.Help, k.Quit},
	}
}

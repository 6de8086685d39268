package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextZone key.Binding
	PrevZone key.Binding
	Open     key.Binding
	Drop     key.Binding
	Leave    key.Binding
	Submit   key.Binding
	Reset    key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var defaultKeys = keyMap{
	NextZone: key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "switch region")),
	PrevZone: key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "previous region")),
	Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "choose file")),
	Drop:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drop a file")),
	Leave:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drop")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "upload")),
	Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "clear")),
	Refresh:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "refresh status")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextZone, k.Open, k.Drop, k.Submit, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextZone, k.PrevZone},
		{k.Open, k.Drop, k.Leave},
		{k.Submit, k.Reset, k.Refresh},
		{k.Help, k.Quit},
	}
}

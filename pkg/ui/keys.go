package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Theme  key.Binding
	Reload key.Binding
	Copy   key.Binding
	Legend key.Binding
	Close  key.Binding
	Quit   key.Binding
}

var _ help.KeyMap = keyMap{}

func defaultKeyMap() keyMap {
	return keyMap{
		Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next theme")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload source")),
		Copy:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy frame")),
		Legend: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "legend")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close legend")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Theme, k.Reload, k.Copy, k.Legend, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Theme, k.Reload, k.Copy},
		{k.Legend, k.Close, k.Quit},
	}
}

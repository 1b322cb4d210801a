package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap lists the chart controls. It implements help.KeyMap.
type keyMap struct {
	NextTask  key.Binding
	PrevTask  key.Binding
	Toggle    key.Binding
	CheckAll  key.Binding
	HoverNext key.Binding
	HoverPrev key.Binding
	Clear     key.Binding
	Copy      key.Binding
	Reload    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTask: key.NewBinding(
			key.WithKeys("tab", "]"),
			key.WithHelp("tab/]", "next task"),
		),
		PrevTask: key.NewBinding(
			key.WithKeys("shift+tab", "["),
			key.WithHelp("shift+tab/[", "prev task"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "toggle condition"),
		),
		CheckAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "check all"),
		),
		HoverNext: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next bar"),
		),
		HoverPrev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev bar"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear hover"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy tooltip"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload data"),
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

// ShortHelp is shown in the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTask, k.Toggle, k.CheckAll, k.HoverNext, k.Copy, k.Help, k.Quit}
}

// FullHelp is shown by help.Model when ShowAll is set.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTask, k.PrevTask, k.Toggle, k.CheckAll},
		{k.HoverNext, k.HoverPrev, k.Clear, k.Copy},
		{k.Reload, k.Help, k.Quit},
	}
}

package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit          key.Binding
	Example         key.Binding
	SwitchFocus     key.Binding
	Up              key.Binding
	Down            key.Binding
	Open            key.Binding
	Download        key.Binding
	DownloadProject key.Binding
	ToggleMarkdown  key.Binding
	PrevProject     key.Binding
	NextProject     key.Binding
	Help            key.Binding
	Quit            key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:          key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "generate")),
		Example:         key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "example prompt")),
		SwitchFocus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Up:              key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:            key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:            key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview")),
		Download:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download file")),
		DownloadProject: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "download zip")),
		ToggleMarkdown:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "render markdown")),
		PrevProject:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev project")),
		NextProject:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next project")),
		Help:            key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:            key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.SwitchFocus, k.Open, k.Download, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Example, k.SwitchFocus},
		{k.Up, k.Down, k.Open, k.ToggleMarkdown},
		{k.Download, k.DownloadProject, k.PrevProject, k.NextProject},
		{k.Help, k.Quit},
	}
}

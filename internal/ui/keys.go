package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	AddPoint   key.Binding
	Focus      key.Binding
	Edit       key.Binding
	Remove     key.Binding
	Move       key.Binding
	AddAct     key.Binding
	Save       key.Binding
	Load       key.Binding
	Export     key.Binding
	ExportBare key.Binding
	CopyAdvice key.Binding
	CopyLegend key.Binding
	Clear      key.Binding
	Theme      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		AddPoint:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "add point at cursor")),
		Focus:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch pane")),
		Edit:       key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter/e", "edit selected")),
		Remove:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove selected")),
		Move:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move point to cursor")),
		AddAct:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add act")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s", "S"), key.WithHelp("S", "save")),
		Load:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "load")),
		Export:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "export annotated png")),
		ExportBare: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "export bare png")),
		CopyAdvice: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy advice")),
		CopyLegend: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "copy legend")),
		Clear:      key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear all")),
		Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next theme")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.AddPoint, k.Edit, k.AddAct, k.Save, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Focus, k.AddPoint, k.Move},
		{k.Edit, k.Remove, k.AddAct, k.Clear, k.Theme},
		{k.Save, k.Load, k.Export, k.ExportBare, k.CopyAdvice, k.CopyLegend, k.Help, k.Quit},
	}
}

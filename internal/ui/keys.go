package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Back        key.Binding
	Refresh     key.Binding
	Sort        key.Binding
	Search      key.Binding
	Filter      key.Binding
	ClearColumn key.Binding
	ClearAll    key.Binding
	Copy        key.Binding
	Open        key.Binding
	Info        key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
}

var Keys = KeyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next dashboard")),
	PrevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev dashboard")),
	Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Sort:        key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("s", "sort")),
	Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search column")),
	Filter:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
	ClearColumn: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear column")),
	ClearAll:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear all")),
	Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
	Open:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open link")),
	Info:        key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "row details")),
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/left", "prev column")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/right", "next column")),
	PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
}

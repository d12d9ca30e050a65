package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists every binding the viewer responds to; it also feeds the
// help view.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Prev       key.Binding
	Next       key.Binding
	Toggle     key.Binding
	Healthy    key.Binding
	Life       key.Binding
	Retirement key.Binding
	Clear      key.Binding
	Sort       key.Binding
	Copy       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Prev:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev marker")),
		Next:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next marker")),
		Toggle:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select location")),
		Healthy:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "healthy")),
		Life:       key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "life")),
		Retirement: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "retirement")),
		Clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy tooltip")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Clear, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Prev, k.Next},
		{k.Toggle, k.Healthy, k.Life, k.Retirement, k.Clear},
		{k.Sort, k.Copy, k.Help, k.Quit},
	}
}

package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Tab       key.Binding
	ShiftTab  key.Binding
	Enter     key.Binding
	Add       key.Binding
	Edit      key.Binding
	Done      key.Binding
	Delete    key.Binding
	Move      key.Binding
	Search    key.Binding
	Completed key.Binding
	Priority  key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous quadrant")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next quadrant")),
	Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next quadrant")),
	ShiftTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous quadrant")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle done")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
	Done:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Move:      key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "move to quadrant")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Completed: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "show/hide completed")),
	Priority:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle priority filter")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel / clear search")),
}

// helpOrder lists bindings in the order the help screen shows them
var helpOrder = []key.Binding{
	keys.Tab, keys.ShiftTab, keys.Left, keys.Right, keys.Up, keys.Down,
	keys.Add, keys.Edit, keys.Done, keys.Delete, keys.Move,
	keys.Search, keys.Completed, keys.Priority, keys.Escape, keys.Help, keys.Quit,
}

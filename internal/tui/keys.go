package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the table screen and the plot viewer.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Edit      key.Binding
	AddRow    key.Binding
	AddColumn key.Binding
	Select    key.Binding
	SelectRow key.Binding
	DeleteRow key.Binding
	AddTab    key.Binding
	CloseTab  key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	SQL       key.Binding
	Plot      key.Binding
	Save      key.Binding
	Reload    key.Binding
	Open      key.Binding
	Help      key.Binding
	Back      key.Binding
	Quit      key.Binding

	ZoomIn  key.Binding
	ZoomOut key.Binding
	Reset   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Edit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		AddRow:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		AddColumn: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "add column")),
		Select:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "select")),
		SelectRow: key.NewBinding(key.WithKeys("V"), key.WithHelp("V", "select row")),
		DeleteRow: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete row")),
		AddTab:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "add tab")),
		CloseTab:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "close tab")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		SQL:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sql")),
		Plot:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "plot")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Reload:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Help:      key.NewBinding(key.WithKeys("?", "f1"), key.WithHelp("?", "guide")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		ZoomIn:  key.NewBinding(key.WithKeys("up", "+", "="), key.WithHelp("↑/+", "zoom in")),
		ZoomOut: key.NewBinding(key.WithKeys("down", "-"), key.WithHelp("↓/-", "zoom out")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.AddRow, k.DeleteRow, k.SQL, k.Plot, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Edit},
		{k.AddRow, k.AddColumn, k.Select, k.SelectRow, k.DeleteRow},
		{k.AddTab, k.CloseTab, k.NextTab, k.PrevTab},
		{k.SQL, k.Plot, k.Save, k.Reload, k.Open, k.Help, k.Quit},
	}
}

// viewerKeys is the help shown under a plot.
type viewerKeys KeyMap

func (k viewerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Reset, k.Back}
}

func (k viewerKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

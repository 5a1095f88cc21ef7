package tracing

import "github.com/charmbracelet/bubbles/key"

// keyMap follows display/tui/keys.go, trimmed to this dashboard's three
// tabs and no cache-refresh binding (data arrives pushed, not fetched).
type keyMap struct {
	Quit     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Tab1     key.Binding
	Tab2     key.Binding
	Tab3     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Help     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.NextTab, k.ScrollDown, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Tab1, k.Tab2, k.Tab3},
		{k.ScrollUp, k.ScrollDown},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	NextTab:    key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next tab")),
	PrevTab:    key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "prev tab")),
	Tab1:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "components")),
	Tab2:       key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "game state")),
	Tab3:       key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "ingest")),
	ScrollUp:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "scroll up")),
	ScrollDown: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/dn", "scroll down")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

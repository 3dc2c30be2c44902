package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap documents every global binding globalCommand dispatches, in
// the same key.Binding shape the deleted agtop internal/ui.KeyMap used,
// so the status-bar hint and the help overlay both render off one
// source of truth. The panel-border hints in view.go are separate
// literals.
type KeyMap struct {
	Quit          key.Binding
	NewEntity     key.Binding
	CloseSession  key.Binding
	Delete        key.Binding
	EditProject   key.Binding
	Restart       key.Binding
	Sync          key.Binding
	Undo          key.Binding
	FocusLeft     key.Binding
	FocusTerminal key.Binding
	FocusUp       key.Binding
	FocusDown     key.Binding
	Help          key.Binding
	InfoPanel     key.Binding
}

// DefaultKeyMap mirrors §4.8's global binding table.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:          key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		NewEntity:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		CloseSession:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "close")),
		Delete:        key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		EditProject:   key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "edit")),
		Restart:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "restart")),
		Sync:          key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "sync")),
		Undo:          key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		FocusLeft:     key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "focus left")),
		FocusTerminal: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "focus terminal")),
		FocusUp:       key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "focus up")),
		FocusDown:     key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "focus down")),
		Help:          key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		InfoPanel:     key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "info panel")),
	}
}

// ShortHelp satisfies bubbles/help.KeyMap for the single-line status bar
// hint: the handful of bindings used every session.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewEntity, k.CloseSession, k.Delete, k.Quit, k.Help}
}

// FullHelp satisfies bubbles/help.KeyMap for the F1 overlay: every
// binding, grouped by what it acts on.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewEntity, k.CloseSession, k.Delete, k.EditProject, k.Restart, k.Sync, k.Undo},
		{k.FocusLeft, k.FocusTerminal, k.FocusUp, k.FocusDown},
		{k.Help, k.InfoPanel, k.Quit},
	}
}

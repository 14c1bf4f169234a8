package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"ragchat/config"
)

// keyMap is built from the user's keybinding config so the help modal and
// status bar always show what is actually bound.
type keyMap struct {
	Send              key.Binding
	Quit              key.Binding
	Help              key.Binding
	About             key.Binding
	ClearHistory      key.Binding
	ToggleEvidence    key.Binding
	ToggleAllEvidence key.Binding
	Search            key.Binding
	ModelSelector     key.Binding
	SaveSettings      key.Binding
	FocusSidebar      key.Binding
	YankAnswer        key.Binding
	YankEvidence      key.Binding
	YankConversation  key.Binding
	ClearInput        key.Binding

	ScrollDown   key.Binding
	ScrollUp     key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	PageDown     key.Binding
	PageUp       key.Binding
	Top          key.Binding
	Bottom       key.Binding

	SidebarDown     key.Binding
	SidebarUp       key.Binding
	SidebarDecrease key.Binding
	SidebarIncrease key.Binding
	SidebarSelect   key.Binding

	ListDown key.Binding
	ListUp   key.Binding
	Close    key.Binding
}

func newKeyMap(kb *config.KeyBindingsConfig) keyMap {
	bind := func(action, desc string, extra ...string) key.Binding {
		keys := append([]string{kb.GetActionKey(action)}, extra...)
		return key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(kb.DisplayActionKey(action), desc),
		)
	}

	return keyMap{
		Send:              key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "send")),
		Quit:              bind("quit", "quit", "ctrl+c"),
		Help:              bind("help", "toggle help"),
		About:             bind("about", "about / tool setup"),
		ClearHistory:      bind("clear_history", "clear conversation"),
		ToggleEvidence:    bind("toggle_evidence", "toggle latest evidence"),
		ToggleAllEvidence: bind("toggle_all_evidence", "toggle all evidence"),
		Search:            bind("search_messages", "search conversation"),
		ModelSelector:     bind("model_selector", "pick model"),
		SaveSettings:      bind("save_settings", "save sidebar as defaults"),
		FocusSidebar:      bind("focus_sidebar", "focus sidebar / input"),
		YankAnswer:        bind("yank_last_response", "copy last answer"),
		YankEvidence:      bind("yank_evidence", "copy last evidence"),
		YankConversation:  bind("yank_conversation", "copy conversation"),
		ClearInput:        bind("clear_input", "clear input"),

		ScrollDown:   bind("scroll_down", "scroll down"),
		ScrollUp:     bind("scroll_up", "scroll up"),
		HalfPageDown: bind("half_page_down", "half page down"),
		HalfPageUp:   bind("half_page_up", "half page up"),
		PageDown:     bind("page_down", "page down", "pgdown"),
		PageUp:       bind("page_up", "page up", "pgup"),
		Top:          bind("scroll_to_top", "jump to top"),
		Bottom:       bind("scroll_to_bottom", "jump to bottom"),

		SidebarDown:     bind("sidebar_down", "next field", "down"),
		SidebarUp:       bind("sidebar_up", "previous field", "up"),
		SidebarDecrease: bind("sidebar_decrease", "decrease / previous"),
		SidebarIncrease: bind("sidebar_increase", "increase / next"),
		SidebarSelect:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("Enter", "edit / toggle")),

		ListDown: bind("list_down", "next", "ctrl+n"),
		ListUp:   bind("list_up", "previous", "ctrl+p"),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "close")),
	}
}

// ShortHelp implements help.KeyMap for the status bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.FocusSidebar, k.ToggleEvidence, k.ClearHistory, k.Search, k.YankAnswer, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap for the help modal.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.ClearInput, k.ClearHistory, k.ToggleEvidence, k.ToggleAllEvidence, k.Search, k.Help, k.About, k.Quit},
		{k.FocusSidebar, k.ModelSelector, k.SaveSettings, k.YankAnswer, k.YankEvidence, k.YankConversation},
		{k.ScrollDown, k.ScrollUp, k.HalfPageDown, k.HalfPageUp, k.PageDown, k.PageUp, k.Top, k.Bottom},
		{k.SidebarDown, k.SidebarUp, k.SidebarDecrease, k.SidebarIncrease, k.SidebarSelect},
	}
}

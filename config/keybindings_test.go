package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetActionKey(t *testing.T) {
	tests := []struct {
		name   string
		kb     *KeyBindingsConfig
		action string
		want   string
	}{
		{"primary default", DefaultKeybindings(), "clear_history", "alt+l"},
		{"secondary letter uses uppercase", DefaultKeybindings(), "toggle_all_evidence", "alt+E"},
		{"secondary about", DefaultKeybindings(), "about", "alt+A"},
		{"no modifier", DefaultKeybindings(), "focus_sidebar", "tab"},
		{"special key keeps primary", DefaultKeybindings(), "page_down", "alt+pgdown"},
		{
			"custom modifiers",
			&KeyBindingsConfig{Modifiers: ModifierConfig{Primary: "ctrl", Secondary: "ctrl+shift"}},
			"yank_evidence",
			"ctrl+Y",
		},
		{
			"override wins",
			&KeyBindingsConfig{Actions: map[string]string{"clear_history": "ctrl+l"}},
			"clear_history",
			"ctrl+l",
		},
		{"unknown action", DefaultKeybindings(), "does_not_exist", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kb.GetActionKey(tt.action))
		})
	}
}

func TestDisplayActionKey(t *testing.T) {
	kb := DefaultKeybindings()

	assert.Equal(t, "Alt+L", kb.DisplayActionKey("clear_history"))
	assert.Equal(t, "Alt+Shift+E", kb.DisplayActionKey("toggle_all_evidence"))
	assert.Equal(t, "Tab", kb.DisplayActionKey("focus_sidebar"))
	assert.Equal(t, "", kb.DisplayActionKey("nope"))
}

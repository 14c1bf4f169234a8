package config

import (
	"strings"
)

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions,omitempty"`
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // e.g., "alt", "ctrl"
	Secondary string `toml:"secondary"` // e.g., "alt+shift", "ctrl+shift"
}

// actionDef defines the default modifier and key for an action
type actionDef struct {
	modifier string // "primary", "secondary", or "none"
	key      string
}

// actionRegistry maps action names to their default keybindings.
// Any of these can be overridden in [keybindings.actions].
var actionRegistry = map[string]actionDef{
	// Main view - actions
	"help":                {"primary", "h"},
	"about":               {"secondary", "a"},
	"quit":                {"primary", "q"},
	"clear_history":       {"primary", "l"},
	"toggle_evidence":     {"primary", "e"},
	"toggle_all_evidence": {"secondary", "e"},
	"search_messages":     {"primary", "f"},
	"model_selector":      {"primary", "m"},
	"save_settings":       {"primary", "w"},
	"focus_sidebar":       {"none", "tab"},
	"yank_last_response":  {"primary", "y"},
	"yank_evidence":       {"secondary", "y"},
	"yank_conversation":   {"primary", "c"},
	"clear_input":         {"primary", "u"},

	// Main view - scrolling
	"scroll_down":      {"primary", "j"},
	"scroll_up":        {"primary", "k"},
	"half_page_down":   {"secondary", "j"},
	"half_page_up":     {"secondary", "k"},
	"page_down":        {"primary", "pgdown"},
	"page_up":          {"primary", "pgup"},
	"scroll_to_top":    {"primary", "g"},
	"scroll_to_bottom": {"secondary", "g"},

	// Sidebar (focused, no modifier needed)
	"sidebar_down":     {"none", "j"},
	"sidebar_up":       {"none", "k"},
	"sidebar_decrease": {"none", "left"},
	"sidebar_increase": {"none", "right"},

	// Model selector / search lists (no modifier needed)
	"list_down": {"none", "down"},
	"list_up":   {"none", "up"},
}

// DefaultKeybindings returns default configuration
func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   "alt",
			Secondary: "alt+shift",
		},
	}
}

func (kb *KeyBindingsConfig) applyDefaults() {
	if kb.Modifiers.Primary == "" {
		kb.Modifiers.Primary = "alt"
	}
	if kb.Modifiers.Secondary == "" {
		kb.Modifiers.Secondary = "alt+shift"
	}
}

// Primary returns the primary modifier
func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return "alt"
	}
	return kb.Modifiers.Primary
}

// Secondary returns the secondary modifier
func (kb *KeyBindingsConfig) Secondary() string {
	if kb.Modifiers.Secondary == "" {
		return "alt+shift"
	}
	return kb.Modifiers.Secondary
}

// PrimaryKey builds a keybinding string with primary modifier
// Example: PrimaryKey("l") returns "alt+l" (or "ctrl+l" if primary is "ctrl")
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// SecondaryKey builds a keybinding string with secondary modifier.
// Shifted single letters come through bubbletea as uppercase, so
// SecondaryKey("e") returns "alt+E" rather than "alt+shift+e".
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	secondary := kb.Secondary()

	if strings.Contains(strings.ToLower(secondary), "shift") && len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		modParts := strings.Split(secondary, "+")
		var cleanMods []string
		for _, part := range modParts {
			if strings.ToLower(part) != "shift" {
				cleanMods = append(cleanMods, part)
			}
		}
		if len(cleanMods) > 0 {
			return strings.Join(cleanMods, "+") + "+" + strings.ToUpper(key)
		}
		return strings.ToUpper(key)
	}

	return secondary + "+" + key
}

// GetActionKey returns the keybinding for a specific action.
// User overrides win over the registry defaults; unknown actions return "".
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if kb.Actions != nil {
		if override, exists := kb.Actions[action]; exists && override != "" {
			return override
		}
	}

	if def, exists := actionRegistry[action]; exists {
		switch def.modifier {
		case "primary":
			return kb.PrimaryKey(def.key)
		case "secondary":
			return kb.SecondaryKey(def.key)
		case "none":
			return def.key
		}
	}

	return ""
}

// DisplayActionKey returns a display-friendly version of an action's keybinding
// Example: "ctrl+shift+j" -> "Ctrl+Shift+J"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

// capitalizeKeybinding capitalizes a keybinding string for display.
// Uppercase letters are spelled out as Shift+<letter>.
//
//	"alt+l"  -> "Alt+L"
//	"alt+E"  -> "Alt+Shift+E"
//	"tab"    -> "Tab"
func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	var out []string
	for i, part := range parts {
		if part == "" {
			continue
		}
		isLast := i == len(parts)-1
		if isLast && len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z' {
			out = append(out, "Shift", part)
			continue
		}
		out = append(out, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(out, "+")
}

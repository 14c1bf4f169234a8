package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ragchat/config"
	"ragchat/rag"
)

type sidebarField int

const (
	fieldStorage sidebarField = iota
	fieldTopK
	fieldBackend
	fieldModel
	fieldRerank
	sidebarFieldCount
)

type sidebarState struct {
	focused  bool
	selected sidebarField
	editing  bool
	input    textinput.Model
}

func newSidebarState() sidebarState {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 256
	return sidebarState{input: input}
}

func (s *sidebarState) blur() {
	s.focused = false
	s.editing = false
	s.input.Blur()
}

func (a AppView) handleSidebarUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	if a.sidebar.editing {
		return a.handleSidebarEditMode(msg)
	}

	q := &a.dataModel.Query

	switch {
	case key.Matches(msg, a.keys.FocusSidebar), key.Matches(msg, a.keys.Close):
		return a, a.focusInput()

	case key.Matches(msg, a.keys.SidebarDown):
		if a.sidebar.selected < sidebarFieldCount-1 {
			a.sidebar.selected++
		}
		return a, nil

	case key.Matches(msg, a.keys.SidebarUp):
		if a.sidebar.selected > 0 {
			a.sidebar.selected--
		}
		return a, nil

	case key.Matches(msg, a.keys.SidebarIncrease):
		a.adjustSidebarField(1)
		return a, nil

	case key.Matches(msg, a.keys.SidebarDecrease):
		a.adjustSidebarField(-1)
		return a, nil

	case key.Matches(msg, a.keys.SidebarSelect):
		switch a.sidebar.selected {
		case fieldStorage:
			a.sidebar.editing = true
			a.sidebar.input.SetValue(q.Storage)
			a.sidebar.input.CursorEnd()
			return a, a.sidebar.input.Focus()
		case fieldBackend:
			q.Backend = q.Backend.Next()
		case fieldModel:
			return a.openModelSelector()
		case fieldRerank:
			q.Rerank = !q.Rerank
		}
		return a, nil
	}

	return a, nil
}

// adjustSidebarField handles ←/→ on the selected field.
func (a *AppView) adjustSidebarField(delta int) {
	q := &a.dataModel.Query
	switch a.sidebar.selected {
	case fieldTopK:
		q.K = clampTopK(q.K + delta)
	case fieldBackend:
		if delta > 0 {
			q.Backend = q.Backend.Next()
		} else {
			q.Backend = prevBackend(q.Backend)
		}
	case fieldRerank:
		q.Rerank = !q.Rerank
	}
}

func (a AppView) handleSidebarEditMode(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Close):
		a.sidebar.editing = false
		a.sidebar.input.Blur()
		return a, nil

	case msg.Type == tea.KeyEnter:
		if v := strings.TrimSpace(a.sidebar.input.Value()); v != "" {
			a.dataModel.Query.Storage = v
		}
		a.sidebar.editing = false
		a.sidebar.input.Blur()
		return a, nil

	case key.Matches(msg, a.keys.ClearInput):
		a.sidebar.input.SetValue("")
		return a, nil
	}

	var cmd tea.Cmd
	a.sidebar.input, cmd = a.sidebar.input.Update(msg)
	return a, cmd
}

func clampTopK(k int) int {
	if k < config.MinTopK {
		return config.MinTopK
	}
	if k > config.MaxTopK {
		return config.MaxTopK
	}
	return k
}

func prevBackend(b rag.Backend) rag.Backend {
	for i, known := range rag.Backends {
		if b == known {
			return rag.Backends[(i+len(rag.Backends)-1)%len(rag.Backends)]
		}
	}
	return rag.Backends[0]
}

func (a AppView) renderSidebar(width, height int) string {
	inner := width - 3 // border + padding
	q := a.dataModel.Query
	s := a.strings

	var lines []string
	lines = append(lines, TitleStyle.Render(s.SidebarTitle), "")

	field := func(f sidebarField, label, value string) {
		labelStyle := DimStyle
		valueStyle := lipgloss.NewStyle()
		prefix := "  "
		if a.sidebar.focused && a.sidebar.selected == f {
			prefix = "▶ "
			labelStyle = SelectedStyle
			valueStyle = SelectedStyle
		}
		lines = append(lines, labelStyle.Render(truncate(prefix+label, inner)))
		lines = append(lines, valueStyle.Render("  "+truncate(value, inner-2)), "")
	}

	storage := q.Storage
	if a.sidebar.editing {
		a.sidebar.input.Width = inner - 3
		storage = a.sidebar.input.View()
	}
	field(fieldStorage, s.StorageLabel, storage)
	field(fieldTopK, s.TopKLabel, topKSlider(q.K, inner-2))
	field(fieldBackend, s.BackendLabel, "◀ "+string(q.Backend)+" ▶")

	modelValue := q.Model
	if q.Backend == rag.BackendNone {
		modelValue += " " + s.ModelIgnored
	}
	field(fieldModel, s.ModelLabel, modelValue)

	rerank := "[ ]"
	if q.Rerank {
		rerank = "[x]"
	}
	field(fieldRerank, s.RerankLabel, rerank)

	format := s.FormatPending
	if a.formatSupported != nil {
		format = s.FormatNo
		if *a.formatSupported {
			format = s.FormatYes
		}
	}
	lines = append(lines, DimStyle.Render(truncate(s.FormatLabel+": "+format, inner)))

	style := SidebarStyle
	if a.sidebar.focused {
		style = SidebarFocusedStyle
	}
	return style.Width(width - 1).Height(height).Render(strings.Join(lines, "\n"))
}

// topKSlider draws k as a bar between MinTopK and MaxTopK.
func topKSlider(k, width int) string {
	label := fmt.Sprintf(" %2d", k)
	track := width - runewidth.StringWidth(label)
	steps := config.MaxTopK - config.MinTopK + 1
	if track > steps {
		track = steps
	}
	if track < 1 {
		return label
	}
	filled := (k - config.MinTopK + 1) * track / steps
	return strings.Repeat("█", filled) + strings.Repeat("░", track-filled) + label
}

// truncate cuts s to width display cells, which matters for Japanese labels.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

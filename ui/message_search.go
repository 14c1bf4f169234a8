package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmodel "ragchat/model"
)

// Border(2) + Padding(2) + Title(1) + Blank(1) + SearchInput(1) + Blank(1) +
// "Found X matches:"(1) + Blank(1) + Footer(1) + Blank(1)
const searchFixedOverhead = 12

const searchLinesPerResult = 4

func (a AppView) searchPageSize() int {
	// room for the "more above/below" indicators
	available := a.height - searchFixedOverhead - 4
	return max(available/searchLinesPerResult, 1)
}

func (a AppView) handleMessageSearchUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Close):
		a.closeAllModals()
		return a, nil

	case key.Matches(msg, a.keys.ListUp):
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
		}
		if a.selectedSearchIdx < a.messageSearchScrollIdx {
			a.messageSearchScrollIdx = a.selectedSearchIdx
		}
		return a, nil

	case key.Matches(msg, a.keys.ListDown):
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
		}
		if a.selectedSearchIdx >= a.messageSearchScrollIdx+a.searchPageSize() {
			a.messageSearchScrollIdx = a.selectedSearchIdx - a.searchPageSize() + 1
		}
		return a, nil

	case msg.Type == tea.KeyEnter:
		if a.selectedSearchIdx >= 0 && a.selectedSearchIdx < len(a.messageSearchResults) {
			match := a.messageSearchResults[a.selectedSearchIdx]
			a.closeAllModals()
			return a, a.scrollToMessage(match.MessageIndex)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)
	a.messageSearchResults = a.dataModel.SearchMessages(a.messageSearchInput.Value())
	a.selectedSearchIdx = 0
	a.messageSearchScrollIdx = 0
	return a, cmd
}

func (a AppView) renderMessageSearch(width, height int) string {
	modalWidth := width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	title := TitleStyle.Render(a.strings.SearchTitle)
	results := a.messageSearchResults

	resultsView := ""
	if len(results) == 0 {
		if a.messageSearchInput.Value() == "" {
			resultsView = DimStyle.Render(a.strings.SearchEmpty)
		} else {
			resultsView = DimStyle.Render(a.strings.SearchNoMatches)
		}
	} else {
		startIdx := a.messageSearchScrollIdx
		endIdx := min(startIdx+a.searchPageSize(), len(results))

		resultsView = fmt.Sprintf("Found %d matches:\n\n", len(results))

		if startIdx > 0 {
			resultsView += DimStyle.Render(fmt.Sprintf("↑ %d more above\n\n", startIdx))
		}

		for i := startIdx; i < endIdx; i++ {
			match := results[i]

			roleStyle, roleName := UserStyle, a.strings.You
			if match.Role == appmodel.RoleAssistant {
				roleStyle, roleName = AssistantStyle, a.strings.Assistant
			}

			matchText := fmt.Sprintf("%s\n  %s",
				roleStyle.Render(roleName),
				truncate(match.Preview, modalWidth-10),
			)

			if i == a.selectedSearchIdx {
				matchText = SelectedStyle.Render("> " + matchText)
			} else {
				matchText = "  " + matchText
			}

			resultsView += matchText + "\n\n"
		}

		if endIdx < len(results) {
			resultsView += DimStyle.Render(fmt.Sprintf("↓ %d more below", len(results)-endIdx))
		}
	}

	footer := FormatFooter("Type", "to search", "↑/↓", "Navigate", "Enter", "Jump", "Esc", "Close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		a.messageSearchInput.View(),
		"",
		resultsView,
		"",
		footer,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}

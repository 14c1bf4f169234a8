package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render(a.strings.HelpTitle)

	h := a.help
	h.Width = 0
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(accentColor)
	h.Styles.FullDesc = lipgloss.NewStyle()
	h.Styles.FullSeparator = lipgloss.NewStyle()
	h.FullSeparator = "    "

	tips := lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.NewStyle().Foreground(accentColor).Render("## Tips"),
		"• Sidebar changes apply to the next question",
		"• Evidence is the tool's raw output, stderr included",
		"• Text selection works! (Mouse)",
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(fmt.Sprintf("Press %s or Esc to close this help", a.keys.Help.Help().Key))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		h.FullHelpView(a.keys.FullHelp()),
		"",
		tips,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderAboutModal shows the version and where the ask tool is run from,
// which is the first thing to check when every answer is the placeholder.
func (a AppView) renderAboutModal(width, height int) string {
	cfg := a.dataModel.Config

	labelStyle := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(dimColor)

	format := a.strings.FormatPending
	if a.formatSupported != nil {
		format = a.strings.FormatNo
		if *a.formatSupported {
			format = a.strings.FormatYes
		}
	}

	settingsPath := cfg.Path()
	if settingsPath == "" {
		settingsPath = "(defaults, not saved)"
	}

	rows := [][2]string{
		{"Version", a.dataModel.Version},
		{"Command", fmt.Sprintf("%s -m %s", cfg.Tool.Python, cfg.Tool.Module)},
		{"Repo root", cfg.Tool.RepoRoot},
		{"Timeout", cfg.Timeout().String()},
		{"--format", fmt.Sprintf("%s (%s)", format, cfg.Tool.FormatSupport)},
		{"Settings", settingsPath},
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Foreground(successColor).Bold(true).Render(a.strings.Title))
	sb.WriteString("\n\n")
	for _, row := range rows {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", row[0])))
		sb.WriteString(valueStyle.Render(truncate(row[1], max(width-30, 20))))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(valueStyle.Render(fmt.Sprintf("Press Esc or %s to close", a.keys.About.Help().Key)))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(sb.String()))
}

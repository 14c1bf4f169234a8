package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"ragchat/provider"
)

// openModelSelector shows the picker for the sidebar's current backend and
// starts fetching its model list (cached by the data model).
func (a AppView) openModelSelector() (AppView, tea.Cmd) {
	a.closeAllModals()
	a.showModelSelector = true
	a.modelList = nil
	a.filteredModelList = nil
	a.selectedModelIdx = 0
	a.modelsErr = nil
	a.modelsLoading = true
	a.modelFilterInput.SetValue("")

	fetch := a.dataModel.FetchModels()
	if fetch == nil {
		a.modelsLoading = false
	}
	return a, tea.Batch(a.modelFilterInput.Focus(), fetch)
}

func (a AppView) handleModelSelectorUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Close):
		a.closeAllModals()
		return a, nil

	case key.Matches(msg, a.keys.ListDown):
		if a.selectedModelIdx < a.selectorLen()-1 {
			a.selectedModelIdx++
		}
		return a, nil

	case key.Matches(msg, a.keys.ListUp):
		if a.selectedModelIdx > 0 {
			a.selectedModelIdx--
		}
		return a, nil

	case msg.Type == tea.KeyEnter:
		if name, ok := a.selectedModelName(); ok {
			a.dataModel.Query.Model = name
			a.closeAllModals()
		}
		return a, nil

	case key.Matches(msg, a.keys.ClearInput):
		a.modelFilterInput.SetValue("")
		a.refilterModels()
		return a, nil
	}

	var cmd tea.Cmd
	a.modelFilterInput, cmd = a.modelFilterInput.Update(msg)
	a.refilterModels()
	return a, cmd
}

func (a *AppView) refilterModels() {
	filter := strings.TrimSpace(a.modelFilterInput.Value())
	if filter == "" {
		a.filteredModelList = a.modelList
	} else {
		targets := make([]string, len(a.modelList))
		for i, m := range a.modelList {
			targets[i] = m.ID
		}
		matches := fuzzy.Find(filter, targets)
		a.filteredModelList = make([]provider.ModelInfo, len(matches))
		for i, match := range matches {
			a.filteredModelList[i] = a.modelList[match.Index]
		}
	}

	if a.selectedModelIdx >= a.selectorLen() {
		a.selectedModelIdx = max(a.selectorLen()-1, 0)
	}
}

func (a *AppView) selectCurrentModel() {
	for i, m := range a.filteredModelList {
		if m.ID == a.dataModel.Query.Model {
			a.selectedModelIdx = i
			return
		}
	}
}

// typedModelName is the filter text when it names no listed model; the
// picker then offers it as an extra last row.
func (a AppView) typedModelName() string {
	filter := strings.TrimSpace(a.modelFilterInput.Value())
	if filter == "" {
		return ""
	}
	for _, m := range a.modelList {
		if m.ID == filter {
			return ""
		}
	}
	return filter
}

func (a AppView) selectorLen() int {
	n := len(a.filteredModelList)
	if a.typedModelName() != "" {
		n++
	}
	return n
}

func (a AppView) selectedModelName() (string, bool) {
	if a.selectedModelIdx < len(a.filteredModelList) {
		return a.filteredModelList[a.selectedModelIdx].ID, true
	}
	if typed := a.typedModelName(); typed != "" {
		return typed, true
	}
	return "", false
}

func (a AppView) renderModelSelector(width, height int) string {
	modalWidth := width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}
	modalHeight := height - 6
	current := a.dataModel.Query.Model

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(fmt.Sprintf("%s (%s)", a.strings.SelectModel, a.dataModel.Query.Backend))

	header := a.modelFilterInput.View()
	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	emptyStyle := lipgloss.NewStyle().
		Foreground(dimColor).
		Italic(true).
		Align(lipgloss.Center).
		Width(modalWidth)

	var modelLines []string
	maxLines := max(modalHeight-8, 1)
	typed := a.typedModelName()

	switch {
	case a.modelsLoading:
		modelLines = append(modelLines, emptyStyle.Render(a.strings.LoadingModels))
	case a.modelsErr != nil:
		errLines := strings.Split(wordWrap(a.modelsErr.Error(), modalWidth-4), "\n")
		for _, l := range errLines {
			modelLines = append(modelLines, ErrorStyle.Width(modalWidth).Render(l))
		}
	case len(a.filteredModelList) == 0 && typed == "":
		modelLines = append(modelLines, emptyStyle.Render(a.strings.NoModels))
	}

	total := a.selectorLen()
	startIdx, endIdx := 0, total
	if total > maxLines {
		if a.selectedModelIdx < maxLines/2 {
			endIdx = maxLines
		} else if a.selectedModelIdx >= total-maxLines/2 {
			startIdx = total - maxLines
		} else {
			startIdx = a.selectedModelIdx - maxLines/2
			endIdx = startIdx + maxLines
		}
	}

	for i := startIdx; i < endIdx; i++ {
		indicator := "  "
		if i == a.selectedModelIdx {
			indicator = "▶ "
		}

		var name, owner string
		if i < len(a.filteredModelList) {
			name = a.filteredModelList[i].ID
			owner = a.filteredModelList[i].OwnedBy
		} else {
			name = fmt.Sprintf("%s: %s", a.strings.UseTyped, typed)
		}

		currentMarker := ""
		if name == current {
			currentMarker = " (current)"
		}

		maxNameWidth := modalWidth - 24
		name = truncate(name, maxNameWidth)

		spacing := modalWidth - runewidth.StringWidth(indicator+name+currentMarker+owner) - 4
		if spacing < 1 {
			spacing = 1
		}
		line := indicator + name + currentMarker + strings.Repeat(" ", spacing) + DimStyle.Render(owner)

		lineStyle := lipgloss.NewStyle()
		if i == a.selectedModelIdx {
			lineStyle = lineStyle.Foreground(successColor).Bold(true)
		} else if name == current {
			lineStyle = lineStyle.Foreground(accentColor).Bold(true)
		}
		modelLines = append(modelLines, lipgloss.NewStyle().Width(modalWidth).Render(lineStyle.Render(line)))
	}

	emptyLine := strings.Repeat(" ", modalWidth)
	modelLines = append([]string{emptyLine}, modelLines...)
	modelLines = append(modelLines, emptyLine)

	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(FormatFooter("Type", "Filter", "↑/↓", "Navigate", "Enter", "Select", "Esc", "Cancel"))

	sections := []string{titleSection, headerSection}
	sections = append(sections, modelLines...)
	sections = append(sections, footerSection)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

package ui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragchat/config"
	appmodel "ragchat/model"
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Update spinner FIRST to handle TickMsg before anything else
	if a.dataModel.Querying {
		if _, ok := msg.(spinner.TickMsg); ok {
			a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
			a.updateViewportContent(true)
			return a, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		widthChanged := msg.Width != a.width
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.ready = true
		a.updateViewportContent(true)

		if widthChanged && len(a.dataModel.Messages) > 0 {
			return a, a.rerenderAll()
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case queryDoneMsg, capabilityProbedMsg, markdownRenderedMsg, configSavedMsg, flashTickMsg, modelsFetchedMsg:
		return a.handleUIMessage(msg)
	}

	// Everything else (cursor blink, etc.) goes to the focused input
	if !a.sidebar.focused {
		a.textarea, cmd = a.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key dismisses the last status line
	a.setStatus("", false)

	// PRIORITY 0: Always-global shortcuts (quit, help toggle)
	if key.Matches(msg, a.keys.Quit) {
		if config.DebugLog != nil {
			config.DebugLog.Debugf("[UI] quit requested")
		}
		a.dataModel.Quitting = true
		return a, tea.Quit
	}

	if key.Matches(msg, a.keys.Help) {
		wasOpen := a.showHelp
		a.closeAllModals()
		a.showHelp = !wasOpen
		return a, nil
	}

	// PRIORITY 1: Modal toggle shortcuts (close current modal, open new one)
	switch {
	case key.Matches(msg, a.keys.ModelSelector):
		if a.showModelSelector {
			a.closeAllModals()
			return a, nil
		}
		a.closeAllModals()
		return a.openModelSelector()

	case key.Matches(msg, a.keys.About):
		wasOpen := a.showAbout
		a.closeAllModals()
		a.showAbout = !wasOpen
		return a, nil

	case key.Matches(msg, a.keys.Search):
		wasOpen := a.showMessageSearch
		a.closeAllModals()
		a.showMessageSearch = !wasOpen
		if a.showMessageSearch {
			a.messageSearchInput.SetValue("")
			a.messageSearchResults = nil
			a.selectedSearchIdx = 0
			a.messageSearchScrollIdx = 0
			return a, a.messageSearchInput.Focus()
		}
		return a, nil
	}

	// PRIORITY 2: Modal-specific key handling (order matches View rendering)
	if a.showHelp {
		if key.Matches(msg, a.keys.Close) {
			a.showHelp = false
		}
		return a, nil
	}

	if a.showModelSelector {
		return a.handleModelSelectorUpdate(msg)
	}

	if a.showMessageSearch {
		return a.handleMessageSearchUpdate(msg)
	}

	if a.showAbout {
		if key.Matches(msg, a.keys.Close) || msg.Type == tea.KeyEnter {
			a.showAbout = false
		}
		return a, nil
	}

	// PRIORITY 3: Actions that work from both the input and the sidebar
	switch {
	case key.Matches(msg, a.keys.SaveSettings):
		return a, a.dataModel.SaveQueryDefaults()

	case key.Matches(msg, a.keys.ClearHistory):
		a.dataModel.ClearHistory()
		a.expandedEvidence = make(map[string]bool)
		a.highlightedMessageID = ""
		a.highlightFlashCount = 0
		a.updateViewportContent(true)
		a.setStatus(a.strings.Cleared, false)
		return a, nil

	case key.Matches(msg, a.keys.ToggleEvidence):
		if last, ok := a.dataModel.LastAssistant(); ok && last.HasEvidence() {
			a.expandedEvidence[last.ID] = !a.expandedEvidence[last.ID]
			a.updateViewportContent(true)
		}
		return a, nil

	case key.Matches(msg, a.keys.ToggleAllEvidence):
		a.toggleAllEvidence()
		a.updateViewportContent(false)
		return a, nil

	case key.Matches(msg, a.keys.YankAnswer):
		last, ok := a.dataModel.LastAssistant()
		a.yank(last.Content, ok)
		return a, nil

	case key.Matches(msg, a.keys.YankEvidence):
		last, ok := a.dataModel.LastAssistant()
		a.yank(last.Evidence, ok && last.HasEvidence())
		return a, nil

	case key.Matches(msg, a.keys.YankConversation):
		transcript := a.dataModel.Transcript()
		a.yank(transcript, transcript != "")
		return a, nil

	case key.Matches(msg, a.keys.HalfPageDown):
		a.viewport.HalfPageDown()
		return a, nil

	case key.Matches(msg, a.keys.HalfPageUp):
		a.viewport.HalfPageUp()
		return a, nil

	case key.Matches(msg, a.keys.ScrollDown):
		a.viewport.ScrollDown(1)
		return a, nil

	case key.Matches(msg, a.keys.ScrollUp):
		a.viewport.ScrollUp(1)
		return a, nil

	case key.Matches(msg, a.keys.PageDown):
		a.viewport.PageDown()
		return a, nil

	case key.Matches(msg, a.keys.PageUp):
		a.viewport.PageUp()
		return a, nil

	case key.Matches(msg, a.keys.Top):
		a.viewport.GotoTop()
		return a, nil

	case key.Matches(msg, a.keys.Bottom):
		a.viewport.GotoBottom()
		return a, nil
	}

	if a.sidebar.focused {
		return a.handleSidebarUpdate(msg)
	}

	// PRIORITY 4: Chat input
	if key.Matches(msg, a.keys.FocusSidebar) {
		a.sidebar.focused = true
		a.textarea.Blur()
		return a, nil
	}

	if key.Matches(msg, a.keys.ClearInput) {
		a.textarea.Reset()
		return a, nil
	}

	// Enter submits; Alt+Enter falls through to the textarea as a newline
	if msg.Type == tea.KeyEnter && !msg.Alt {
		return a.submit()
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// submit sends the textarea content to the runner. Input is ignored while a
// query is already in flight.
func (a AppView) submit() (tea.Model, tea.Cmd) {
	if a.dataModel.Querying {
		a.setStatus(a.strings.Busy, false)
		return a, nil
	}

	queryCmd := a.dataModel.StartQuery(a.textarea.Value())
	if queryCmd == nil {
		return a, nil
	}
	a.textarea.Reset()

	userMsg := a.dataModel.Messages[len(a.dataModel.Messages)-1]

	if config.DebugLog != nil {
		config.DebugLog.Debugf("[UI] Enter pressed - sending query %q", userMsg.Content)
	}

	a.loadingSpinner = spinner.New()
	a.loadingSpinner.Spinner = spinner.Dot
	a.loadingSpinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	// Loading line, removed again when the answer arrives
	loading := appmodel.NewMessage(appmodel.RoleSystem, a.strings.Searching)
	a.dataModel.Messages = append(a.dataModel.Messages, loading)

	a.highlightedMessageID = ""
	a.updateViewportContent(true)

	return a, tea.Batch(
		a.renderMarkdownAsync(userMsg.ID, userMsg.Content),
		queryCmd,
		a.loadingSpinner.Tick,
	)
}

func (a *AppView) removeLoadingMessage() {
	n := len(a.dataModel.Messages)
	if n > 0 && a.dataModel.Messages[n-1].Role == appmodel.RoleSystem {
		a.dataModel.Messages = a.dataModel.Messages[:n-1]
	}
}

// toggleAllEvidence expands every panel unless all are already open.
func (a *AppView) toggleAllEvidence() {
	allOpen := true
	found := false
	for _, msg := range a.dataModel.Messages {
		if !msg.HasEvidence() {
			continue
		}
		found = true
		if !a.expandedEvidence[msg.ID] {
			allOpen = false
		}
	}
	if !found {
		return
	}
	for _, msg := range a.dataModel.Messages {
		if msg.HasEvidence() {
			a.expandedEvidence[msg.ID] = !allOpen
		}
	}
}

func (a *AppView) yank(text string, ok bool) {
	if !ok || text == "" {
		a.setStatus(a.strings.NothingToYank, true)
		return
	}
	if err := copyToClipboard(text); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Warnf("[UI] clipboard write failed: %v", err)
		}
		a.setStatus(a.strings.CopyFailed+": "+err.Error(), true)
		return
	}
	a.setStatus(a.strings.Copied, false)
}

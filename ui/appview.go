package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmodel "ragchat/model"
	"ragchat/provider"
)

const (
	sidebarMaxWidth = 34
	sidebarMinWidth = 24

	// title, separator, textarea (3) and status bar
	chromeHeight = 6
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	strings Strings
	keys    keyMap
	help    help.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	showHelp  bool
	showAbout bool

	// Loading spinner (bubbles/spinner)
	loadingSpinner spinner.Model

	sidebar sidebarState

	// Evidence panels are collapsed unless their message ID is in here
	expandedEvidence map[string]bool

	// Model selector
	showModelSelector bool
	modelList         []provider.ModelInfo
	filteredModelList []provider.ModelInfo
	selectedModelIdx  int
	modelFilterInput  textinput.Model
	modelsLoading     bool
	modelsErr         error

	showMessageSearch      bool
	messageSearchInput     textinput.Model
	messageSearchResults   []appmodel.MessageMatch
	selectedSearchIdx      int
	messageSearchScrollIdx int

	highlightedMessageID string
	highlightFlashCount  int

	// nil until the --format probe reports back
	formatSupported *bool

	statusMsg   string
	statusError bool
}

func NewAppView(dataModel *appmodel.Model) AppView {
	s := LocaleFor(dataModel.Config.Language)
	keys := newKeyMap(&dataModel.Config.Keybindings)

	ta := textarea.New()
	ta.Placeholder = s.InputPlaceholder
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone submits (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	modelFilterInput := textinput.New()
	modelFilterInput.Prompt = "Filter: "
	modelFilterInput.CharLimit = 128

	messageSearchInput := textinput.New()
	messageSearchInput.Prompt = "Search: "
	messageSearchInput.CharLimit = 100

	h := help.New()
	h.ShortSeparator = "  "

	return AppView{
		dataModel:          dataModel,
		strings:            s,
		keys:               keys,
		help:               h,
		textarea:           ta,
		viewport:           viewport.New(0, 0),
		sidebar:            newSidebarState(),
		expandedEvidence:   make(map[string]bool),
		modelFilterInput:   modelFilterInput,
		messageSearchInput: messageSearchInput,
	}
}

func (a AppView) Init() tea.Cmd {
	// Markdown waits for WindowSizeMsg so it renders at the right width
	return tea.Batch(
		textarea.Blink,
		a.dataModel.ProbeCapability(),
	)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading " + a.strings.Title + "..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Help (can peek while in other modals)
	// 2. Model selector
	// 3. Message search
	// 4. About
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.showModelSelector {
		return a.renderModelSelector(a.width, a.height)
	}

	if a.showMessageSearch {
		return a.renderMessageSearch(a.width, a.height)
	}

	if a.showAbout {
		return a.renderAboutModal(a.width, a.height)
	}

	// Title bar - "RAG Chat - backend/model | k=4"
	q := a.dataModel.Query
	title := AssistantStyle.Render(a.strings.Title) +
		TitleStyle.Render(fmt.Sprintf(" - %s", a.backendLabel())) +
		DimStyle.Render(fmt.Sprintf(" | k=%d", q.K))
	if a.dataModel.Querying {
		title += DimStyle.Render(" | " + a.loadingSpinner.View())
	}

	separator := ""

	chat := lipgloss.JoinVertical(
		lipgloss.Left,
		a.viewport.View(),
		a.textarea.View(),
	)

	body := chat
	if w := a.sidebarWidth(); w > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, chat, a.renderSidebar(w, a.height-3))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		separator,
		body,
		a.renderStatusBar(),
	)
}

func (a AppView) backendLabel() string {
	q := a.dataModel.Query
	if q.Model == "" || q.Backend == "none" {
		return string(q.Backend)
	}
	return fmt.Sprintf("%s/%s", q.Backend, q.Model)
}

func (a AppView) renderStatusBar() string {
	if a.statusMsg != "" {
		style := lipgloss.NewStyle().Foreground(successColor).Bold(true)
		if a.statusError {
			style = ErrorStyle.Bold(true)
		}
		return StatusStyle.Render(style.Render(a.statusMsg))
	}

	// Status bar with bold user green descriptions
	h := a.help
	h.Width = a.width
	h.Styles.ShortKey = StatusStyle
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	h.Styles.ShortSeparator = StatusStyle
	return h.ShortHelpView(a.keys.ShortHelp())
}

// sidebarWidth is zero when the terminal is too narrow to show it.
func (a AppView) sidebarWidth() int {
	w := a.width / 3
	if w > sidebarMaxWidth {
		w = sidebarMaxWidth
	}
	if w < sidebarMinWidth {
		return 0
	}
	return w
}

func (a AppView) chatWidth() int {
	return a.width - a.sidebarWidth()
}

func (a *AppView) resize() {
	a.viewport.Width = a.chatWidth()
	a.viewport.Height = max(a.height-chromeHeight, 1)
	a.textarea.SetWidth(a.chatWidth())
	a.help.Width = a.width
}

func (a *AppView) setStatus(msg string, isErr bool) {
	a.statusMsg = msg
	a.statusError = isErr
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showModelSelector = false
	a.showMessageSearch = false
	a.showAbout = false

	if a.modelFilterInput.Focused() {
		a.modelFilterInput.Blur()
	}
	if a.messageSearchInput.Focused() {
		a.messageSearchInput.Blur()
	}
}

// focusInput returns keyboard focus to the chat textarea.
func (a *AppView) focusInput() tea.Cmd {
	a.sidebar.blur()
	return a.textarea.Focus()
}

// Querying exposes whether input is currently blocked. Used by tests and main.
func (a AppView) Querying() bool {
	return a.dataModel.Querying
}

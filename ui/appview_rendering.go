package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"ragchat/config"
	appmodel "ragchat/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	if len(a.dataModel.Messages) == 0 {
		a.viewport.SetContent(DimStyle.Render(a.strings.NoMessages))
		return
	}

	var content strings.Builder
	for _, msg := range a.dataModel.Messages {
		content.WriteString(a.renderMessage(msg))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// renderMessage renders one history entry including its trailing blank line.
func (a AppView) renderMessage(msg appmodel.Message) string {
	highlightPrefix := ""
	if msg.ID != "" && msg.ID == a.highlightedMessageID && a.highlightFlashCount%2 == 1 {
		highlightPrefix = HighlightStyle.Render(">>> ")
	}

	timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

	renderedContent := msg.Rendered
	if renderedContent == "" {
		renderedContent = msg.Content
	}

	switch msg.Role {
	case appmodel.RoleUser:
		return formatUserMessage(highlightPrefix, timestamp, UserStyle.Render(a.strings.You), renderedContent)

	case appmodel.RoleAssistant:
		var b strings.Builder
		fmt.Fprintf(&b, "%s%s %s\n%s\n", highlightPrefix, timestamp, AssistantStyle.Render(a.strings.Assistant), renderedContent)
		if msg.HasEvidence() {
			b.WriteString(a.renderEvidence(msg))
		}
		b.WriteString("\n")
		return b.String()
	}

	// Loading line carries the spinner
	if a.dataModel.Querying && msg.Content == a.strings.Searching {
		renderedContent = fmt.Sprintf("%s %s", a.loadingSpinner.View(), msg.Content)
	}
	return fmt.Sprintf("%s%s %s\n%s\n\n", highlightPrefix, timestamp, DimStyle.Render(a.strings.System), renderedContent)
}

// renderEvidence draws the collapsible panel under an answer. The body is
// shown verbatim, never as markdown.
func (a AppView) renderEvidence(msg appmodel.Message) string {
	lines := strings.Count(msg.Evidence, "\n") + 1

	if !a.expandedEvidence[msg.ID] {
		return EvidenceLabelStyle.Render(fmt.Sprintf("▸ %s (%d)", a.strings.EvidenceLabel, lines)) + "\n"
	}

	header := EvidenceLabelStyle.Render("▾ " + a.strings.EvidenceLabel)
	body := EvidenceBodyStyle.Width(max(a.chatWidth()-4, 10)).Render(msg.Evidence)
	return header + "\n" + body + "\n"
}

func formatUserMessage(highlightPrefix, timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s%s %s %s\n", highlightPrefix, bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// messageOffset returns the viewport line where message idx starts.
func (a AppView) messageOffset(idx int) int {
	lines := 0
	for i := 0; i < idx && i < len(a.dataModel.Messages); i++ {
		lines += strings.Count(a.renderMessage(a.dataModel.Messages[i]), "\n")
	}
	return lines
}

// scrollToMessage centres message idx in the viewport and starts the flash.
func (a *AppView) scrollToMessage(idx int) tea.Cmd {
	if idx < 0 || idx >= len(a.dataModel.Messages) {
		return nil
	}

	a.highlightedMessageID = a.dataModel.Messages[idx].ID
	a.highlightFlashCount = 1
	a.updateViewportContent(false)

	viewportHeight := a.viewport.Height
	centerOffset := a.messageOffset(idx) - (viewportHeight / 2)
	totalLines := a.viewport.TotalLineCount()
	if centerOffset > totalLines-viewportHeight {
		centerOffset = totalLines - viewportHeight
	}
	centerOffset = max(centerOffset, 0)
	a.viewport.SetYOffset(centerOffset)

	return flashTick()
}

func flashTick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(time.Time) tea.Msg {
		return flashTickMsg{}
	})
}

func postProcessMarkdown(rendered string, width int) string {
	// 1. Inline code: blue background becomes red text
	rendered = fixInlineCode(rendered)

	// 2. Color plain URLs red (autolink disabled keeps URLs plain)
	rendered = fixMarkdownLinks(rendered)

	// 3. Frame code blocks with horizontal lines
	rendered = frameCodeBlocks(rendered, width)

	return rendered
}

// preprocessLinks strips [text](url) down to url so every link renders the same.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// Code block lines carry the ┃ prefix
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}
	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"
	lineLen := max(width-4, 8)
	bottom := darkGray + strings.Repeat("━", lineLen) + reset

	for _, line := range lines {
		if strings.Contains(line, "┃") {
			if !inCodeBlock {
				inCodeBlock = true
				label := "[code]"
				leftLen := (lineLen - len(label)) / 2
				rightLen := max(lineLen-len(label)-leftLen, 0)
				top := darkGray + strings.Repeat("━", max(leftLen, 0)) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset
				result = append(result, "", top, "")
			}
			result = append(result, stripCodeBlockPrefix(line))
			continue
		}

		if inCodeBlock {
			result = append(result, "", bottom, "")
			inCodeBlock = false
		}
		result = append(result, line)
	}

	if inCodeBlock {
		result = append(result, "", bottom, "")
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, "┃")
	if idx < 0 {
		return line
	}
	after := idx + len("┃")
	if after < len(line) && line[after] == ' ' {
		after++
	}
	return line[after:]
}

// renderMarkdown turns an answer into terminal text at the given width.
func renderMarkdown(content string, width int) string {
	content = preprocessLinks(content)

	// Autolink off keeps plain URLs as text so terminals can detect them
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(max(width-4, 10), 0)
	doc := p.Parse([]byte(content))
	rendered := gomarkdown.Render(doc, r)

	return strings.TrimRight(postProcessMarkdown(string(rendered), width), "\n")
}

func (a AppView) renderMarkdownAsync(messageID, content string) tea.Cmd {
	width := a.chatWidth()
	return func() tea.Msg {
		start := time.Now()
		rendered := renderMarkdown(content, width)
		if config.DebugLog != nil {
			config.DebugLog.Debugf("[UI] markdown for %s rendered in %v (%d chars)", messageID, time.Since(start), len(content))
		}
		return markdownRenderedMsg{MessageID: messageID, Rendered: rendered}
	}
}

// rerenderAll re-renders every message, used after a resize.
func (a AppView) rerenderAll() tea.Cmd {
	var cmds []tea.Cmd
	// Newest first since the viewport shows the bottom
	for i := len(a.dataModel.Messages) - 1; i >= 0; i-- {
		msg := a.dataModel.Messages[i]
		if msg.Role == appmodel.RoleSystem {
			continue
		}
		cmds = append(cmds, a.renderMarkdownAsync(msg.ID, msg.Content))
	}
	return tea.Batch(cmds...)
}

// stripANSI removes ANSI escape codes for accurate length calculation
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

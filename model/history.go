package model

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"ragchat/rag"
)

// ErrorLabel heads the evidence section that carries a runner error.
const ErrorLabel = "[error]"

const previewLen = 100

// AppendUserMessage records the question so it is shown before the answer
// arrives.
func (m *Model) AppendUserMessage(content string) Message {
	msg := NewMessage(RoleUser, content)
	m.Messages = append(m.Messages, msg)
	return msg
}

// FoldAnswer turns a runner outcome into an assistant message and appends it.
// Empty or failed answers get placeholder as content; a runner error is
// appended to the evidence under ErrorLabel so it stays visible.
func (m *Model) FoldAnswer(ans rag.Answer, err error, placeholder string) Message {
	msg := NewMessage(RoleAssistant, strings.TrimSpace(ans.Text))
	msg.Evidence = strings.TrimSpace(ans.Evidence)

	if err != nil {
		section := ErrorLabel + "\n" + err.Error()
		if msg.Evidence == "" {
			msg.Evidence = section
		} else {
			msg.Evidence += "\n\n" + section
		}
		msg.Failed = true
	}

	if msg.Content == "" {
		msg.Content = placeholder
		msg.Failed = true
	}

	m.Messages = append(m.Messages, msg)
	return msg
}

// ClearHistory drops every message regardless of count.
func (m *Model) ClearHistory() {
	m.Messages = nil
}

// LastAssistant returns the most recent answer.
func (m *Model) LastAssistant() (Message, bool) {
	for i := len(m.Messages) - 1; i >= 0; i-- {
		if m.Messages[i].Role == RoleAssistant {
			return m.Messages[i], true
		}
	}
	return Message{}, false
}

// Transcript renders the conversation as plain markdown for the clipboard.
func (m *Model) Transcript() string {
	var b strings.Builder
	for _, msg := range m.Messages {
		if msg.Role == RoleSystem {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s] %s:\n%s", msg.Timestamp.Format("15:04"), msg.Role, msg.Content)
		if msg.Evidence != "" {
			fmt.Fprintf(&b, "\n\n---\n%s", msg.Evidence)
		}
	}
	return b.String()
}

// MessageMatch represents a search result within the session
type MessageMatch struct {
	MessageIndex int
	MessageID    string
	Role         Role
	Preview      string
	Score        int
}

type messageSource []Message

func (s messageSource) String(i int) string { return s[i].Content + "\n" + s[i].Evidence }
func (s messageSource) Len() int            { return len(s) }

// SearchMessages fuzzy-matches query against content and evidence of every
// non-system message, best match first.
func (m *Model) SearchMessages(query string) []MessageMatch {
	if strings.TrimSpace(query) == "" {
		return []MessageMatch{}
	}

	var history messageSource
	var indexes []int
	for i, msg := range m.Messages {
		if msg.Role == RoleSystem {
			continue
		}
		history = append(history, msg)
		indexes = append(indexes, i)
	}

	found := fuzzy.FindFrom(query, history)
	matches := make([]MessageMatch, 0, len(found))
	for _, f := range found {
		msg := history[f.Index]
		matches = append(matches, MessageMatch{
			MessageIndex: indexes[f.Index],
			MessageID:    msg.ID,
			Role:         msg.Role,
			Preview:      preview(msg.Content),
			Score:        f.Score,
		})
	}
	return matches
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > previewLen {
		return string(r[:previewLen]) + "..."
	}
	return s
}

package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ragchat/config"
)

// StartQuery appends the question and returns the command that runs it.
// Returns nil while another query is in flight or when text is blank; the
// caller treats that as "input ignored".
func (m *Model) StartQuery(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if m.Querying || text == "" || m.Runner == nil {
		return nil
	}

	m.AppendUserMessage(text)
	m.Querying = true

	runner := m.Runner
	cfg := m.Query

	if config.DebugLog != nil {
		config.DebugLog.Debugf("[Model] query started: backend=%s k=%d rerank=%v", cfg.Backend, cfg.K, cfg.Rerank)
	}

	return func() tea.Msg {
		start := time.Now()
		ans, err := runner.Ask(context.Background(), text, cfg)
		return QueryDoneMsg{
			Query:    text,
			Answer:   ans,
			Err:      err,
			Duration: time.Since(start),
		}
	}
}

// FinishQuery folds a QueryDoneMsg into the history and unblocks input.
func (m *Model) FinishQuery(msg QueryDoneMsg, placeholder string) Message {
	m.Querying = false

	if config.DebugLog != nil {
		if msg.Err != nil {
			config.DebugLog.Warnf("[Model] query failed after %v: %v", msg.Duration, msg.Err)
		} else {
			config.DebugLog.Debugf("[Model] query done in %v (%d invocations, exit codes %v)",
				msg.Duration, msg.Answer.Invocations, msg.Answer.ExitCodes)
		}
	}

	return m.FoldAnswer(msg.Answer, msg.Err, placeholder)
}

// ProbeCapability resolves --format support in the background so the
// sidebar can show it before the first question.
func (m *Model) ProbeCapability() tea.Cmd {
	caps := m.Capability
	if caps == nil {
		return nil
	}
	return func() tea.Msg {
		return CapabilityProbedMsg{Supported: caps.Supported(context.Background())}
	}
}

// SaveQueryDefaults writes the current sidebar values back to settings.toml.
func (m *Model) SaveQueryDefaults() tea.Cmd {
	q := QueryDefaultsFrom(m.Query)
	m.Config.Query = q
	path := m.Config.Path()

	return func() tea.Msg {
		err := config.SaveQueryDefaults(path, q)
		return ConfigSavedMsg{Path: path, Err: err}
	}
}

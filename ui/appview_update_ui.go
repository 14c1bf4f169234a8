package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"ragchat/config"
)

// handleUIMessage handles results coming back from commands (query, probe,
// markdown, models, settings save, flash).
func (a AppView) handleUIMessage(msg tea.Msg) (AppView, tea.Cmd) {
	switch msg := msg.(type) {
	case queryDoneMsg:
		a.removeLoadingMessage()
		answer := a.dataModel.FinishQuery(msg, a.strings.Placeholder)
		a.updateViewportContent(true)

		if config.DebugLog != nil {
			config.DebugLog.Debugf("[UI] answer %s appended (failed=%v, evidence=%d bytes)", answer.ID, answer.Failed, len(answer.Evidence))
		}
		return a, a.renderMarkdownAsync(answer.ID, answer.Content)

	case capabilityProbedMsg:
		supported := msg.Supported
		a.formatSupported = &supported
		return a, nil

	case markdownRenderedMsg:
		for i := range a.dataModel.Messages {
			if a.dataModel.Messages[i].ID == msg.MessageID {
				a.dataModel.Messages[i].Rendered = msg.Rendered
				gotoBottom := a.highlightedMessageID == ""
				a.updateViewportContent(gotoBottom)
				break
			}
		}
		return a, nil

	case configSavedMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Warnf("[UI] saving settings failed: %v", msg.Err)
			}
			a.setStatus(a.strings.SaveFailed+": "+msg.Err.Error(), true)
			return a, nil
		}
		a.setStatus(a.strings.Saved+": "+msg.Path, false)
		return a, nil

	case flashTickMsg:
		if a.highlightFlashCount > 0 && a.highlightFlashCount < 6 {
			a.highlightFlashCount++
			a.updateViewportContent(false)
			return a, flashTick()
		}
		a.highlightedMessageID = ""
		a.highlightFlashCount = 0
		a.updateViewportContent(false)
		return a, nil

	case modelsFetchedMsg:
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Warnf("[UI] listing %s models failed: %v", msg.Backend, msg.Err)
			}
		} else {
			a.dataModel.CacheModels(msg.Backend, msg.Models)
		}

		// The backend may have changed while the list was loading
		if msg.Backend != a.dataModel.Query.Backend {
			return a, nil
		}
		a.modelsLoading = false
		a.modelsErr = msg.Err
		a.modelList = msg.Models
		a.refilterModels()
		a.selectCurrentModel()
		return a, nil
	}

	return a, nil
}

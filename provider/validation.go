package provider

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ragchat/config"
	"ragchat/rag"
)

// ListTimeout bounds model listing and pings so a dead local server does not
// leave the picker spinning.
const ListTimeout = 10 * time.Second

// ModelsFetchedMsg is sent when models have been fetched from a backend
type ModelsFetchedMsg struct {
	Backend rag.Backend
	Models  []ModelInfo
	Err     error
}

// FetchModels lists the models of one backend for the model picker.
func FetchModels(p ModelLister, backend rag.Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ListTimeout)
		defer cancel()

		models, err := p.ListModels(ctx)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Warnf("[Provider] listing %s models failed: %v", backend, err)
			}
			return ModelsFetchedMsg{Backend: backend, Err: err}
		}

		if config.DebugLog != nil {
			config.DebugLog.Debugf("[Provider] fetched %d models from %s", len(models), backend)
		}
		return ModelsFetchedMsg{Backend: backend, Models: models}
	}
}

// Ping checks one backend with ListTimeout applied.
func Ping(p ModelLister) error {
	ctx, cancel := context.WithTimeout(context.Background(), ListTimeout)
	defer cancel()
	return p.Ping(ctx)
}

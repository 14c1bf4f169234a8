package model

import (
	"context"

	"ragchat/config"
	"ragchat/provider"
	"ragchat/rag"
)

// Asker answers questions. *rag.Runner is the production implementation;
// defining it here keeps the UI testable without spawning processes.
type Asker interface {
	Ask(ctx context.Context, query string, cfg rag.QueryConfig) (rag.Answer, error)
}

// ListerFactory builds a model lister for a backend.
type ListerFactory func(backend rag.Backend) (provider.ModelLister, error)

// ConfigListerFactory resolves endpoints from cfg on every call, so edits
// saved from the sidebar take effect without a restart.
func ConfigListerFactory(cfg *config.Config) ListerFactory {
	return func(backend rag.Backend) (provider.ModelLister, error) {
		return provider.NewProvider(provider.ConfigFor(cfg, backend))
	}
}

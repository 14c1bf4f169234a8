package model

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ragchat/config"
	"ragchat/provider"
	"ragchat/rag"
)

// modelCacheTTL applies to every backend; local servers rarely change their
// model list mid-session and the picker can be refreshed with a restart.
const modelCacheTTL = time.Hour

// FetchModels lists models for the backend currently selected in the
// sidebar. Results come back as provider.ModelsFetchedMsg.
func (m *Model) FetchModels() tea.Cmd {
	backend := m.Query.Backend

	if cached, ok := m.cachedModels(backend); ok {
		if config.DebugLog != nil {
			config.DebugLog.Debugf("[Model] Using cached models for backend %s", backend)
		}
		return func() tea.Msg {
			return provider.ModelsFetchedMsg{Backend: backend, Models: cached}
		}
	}

	if m.NewLister == nil {
		return nil
	}
	lister, err := m.NewLister(backend)
	if err != nil {
		return func() tea.Msg {
			return provider.ModelsFetchedMsg{Backend: backend, Err: err}
		}
	}
	return provider.FetchModels(lister, backend)
}

// CacheModels stores a successful listing. Called from Update.
func (m *Model) CacheModels(backend rag.Backend, models []provider.ModelInfo) {
	if m.ModelCache == nil {
		m.ModelCache = make(map[rag.Backend][]provider.ModelInfo)
		m.CacheExpiry = make(map[rag.Backend]time.Time)
	}
	m.ModelCache[backend] = models
	m.CacheExpiry[backend] = time.Now().Add(modelCacheTTL)

	if config.DebugLog != nil {
		config.DebugLog.Debugf("[Model] Cached %d models for backend %s", len(models), backend)
	}
}

func (m *Model) cachedModels(backend rag.Backend) ([]provider.ModelInfo, bool) {
	cached, ok := m.ModelCache[backend]
	if !ok {
		return nil, false
	}
	if time.Now().After(m.CacheExpiry[backend]) {
		return nil, false
	}
	return cached, true
}

package model

import (
	"time"

	"ragchat/config"
	"ragchat/provider"
	"ragchat/rag"
)

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config     *config.Config
	Runner     Asker
	Capability *rag.Capability
	NewLister  ListerFactory

	// Application data
	Messages []Message
	Query    rag.QueryConfig

	// Model picker cache, per backend
	ModelCache  map[rag.Backend][]provider.ModelInfo
	CacheExpiry map[rag.Backend]time.Time

	// Runtime state (not UI)
	Querying bool
	Quitting bool

	Version string
}

// NewModel creates a new Model with the sidebar seeded from cfg.Query.
// caps may be nil when the runner is a test double.
func NewModel(cfg *config.Config, runner Asker, caps *rag.Capability, version string) *Model {
	return &Model{
		Config:      cfg,
		Runner:      runner,
		Capability:  caps,
		NewLister:   ConfigListerFactory(cfg),
		Query:       QueryConfigFromDefaults(cfg.Query),
		ModelCache:  make(map[rag.Backend][]provider.ModelInfo),
		CacheExpiry: make(map[rag.Backend]time.Time),
		Version:     version,
	}
}

// QueryConfigFromDefaults converts the settings-file section into a request
// config. An unrecognised backend falls back to openai.
func QueryConfigFromDefaults(q config.QueryDefaults) rag.QueryConfig {
	backend, err := rag.ParseBackend(q.LLMBackend)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Warnf("[Model] %v, using %s", err, rag.BackendOpenAI)
		}
		backend = rag.BackendOpenAI
	}
	return rag.QueryConfig{
		Storage: q.Storage,
		K:       q.K,
		Backend: backend,
		Model:   q.LLMModel,
		Rerank:  q.Rerank,
	}
}

// QueryDefaultsFrom is the inverse of QueryConfigFromDefaults.
func QueryDefaultsFrom(c rag.QueryConfig) config.QueryDefaults {
	return config.QueryDefaults{
		Storage:    c.Storage,
		K:          c.K,
		LLMBackend: string(c.Backend),
		LLMModel:   c.Model,
		Rerank:     c.Rerank,
	}
}

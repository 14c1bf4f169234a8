// Package provider lists model names from the LLM backend selected in the
// sidebar.
//
// ragchat never talks to an LLM for answers; scripts.ask does. The only
// reason to reach the backend directly is to fill the model picker, so a
// provider here is just something that can list models and answer a ping.
//
// # Backends
//
// Both the openai and compatible-local backends speak the OpenAI REST API
// (LM Studio, Ollama's /v1 endpoint and vLLM all implement /v1/models), so a
// single OpenAIProvider serves both with different base URLs. The none
// backend has no models and is served by NoneProvider.
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Backend: rag.BackendCompatibleLocal,
//	    BaseURL: "http://localhost:1234/v1",
//	})
//	if err != nil {
//	    // handle error
//	}
//	models, err := p.ListModels(ctx)
package provider

import (
	"context"

	"ragchat/rag"
)

// ModelLister is the narrow view of an LLM backend used by the model picker.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
	Ping(ctx context.Context) error
}

// ModelInfo is one selectable model.
type ModelInfo struct {
	ID      string
	OwnedBy string
	Backend rag.Backend
}

// Config holds the endpoint for one backend.
type Config struct {
	Backend rag.Backend
	BaseURL string
	APIKey  string
}

package provider

import (
	"fmt"
	"os"

	"github.com/openai/openai-go/v3/option"

	"ragchat/config"
	"ragchat/rag"
)

// NewProvider creates the lister for cfg.Backend.
//
// Returns an error if the backend is unknown or the endpoint is incomplete
// (hosted OpenAI without an API key, compatible-local without a base URL).
func NewProvider(cfg Config, opts ...option.RequestOption) (ModelLister, error) {
	switch cfg.Backend {
	case rag.BackendOpenAI, rag.BackendCompatibleLocal:
		return NewOpenAIProvider(cfg.Backend, cfg.BaseURL, cfg.APIKey, opts...)
	case rag.BackendNone:
		return NoneProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown llm backend: %s", cfg.Backend)
	}
}

// ConfigFor resolves the endpoint for backend from the user config. The
// OpenAI endpoint falls back to OPENAI_BASE_URL and OPENAI_API_KEY, the same
// variables scripts.ask reads.
func ConfigFor(cfg *config.Config, backend rag.Backend) Config {
	out := Config{Backend: backend}

	switch backend {
	case rag.BackendOpenAI:
		out.BaseURL = cfg.Backends.OpenAI.BaseURL
		out.APIKey = cfg.Backends.OpenAI.APIKey
		if v := os.Getenv("OPENAI_BASE_URL"); v != "" && (out.BaseURL == "" || out.BaseURL == DefaultOpenAIBaseURL) {
			out.BaseURL = v
		}
		if out.APIKey == "" {
			out.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case rag.BackendCompatibleLocal:
		out.BaseURL = cfg.Backends.CompatibleLocal.BaseURL
		out.APIKey = cfg.Backends.CompatibleLocal.APIKey
	}

	return out
}

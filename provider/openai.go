package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"ragchat/rag"
)

const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// placeholderAPIKey is sent to local servers that ignore authentication but
// still expect the header to be present.
const placeholderAPIKey = "not-needed"

// OpenAIProvider lists models from any OpenAI-compatible endpoint.
type OpenAIProvider struct {
	client  openai.Client
	backend rag.Backend
	baseURL string
}

// NewOpenAIProvider creates a provider for backend at baseURL. An API key is
// required for the hosted OpenAI backend only.
func NewOpenAIProvider(backend rag.Backend, baseURL, apiKey string, opts ...option.RequestOption) (*OpenAIProvider, error) {
	if baseURL == "" {
		if backend != rag.BackendOpenAI {
			return nil, fmt.Errorf("base URL is required for %s backend", backend)
		}
		baseURL = DefaultOpenAIBaseURL
	}
	if apiKey == "" {
		if backend == rag.BackendOpenAI {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		apiKey = placeholderAPIKey
	}

	clientOpts := append([]option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	}, opts...)

	return &OpenAIProvider{
		client:  openai.NewClient(clientOpts...),
		backend: backend,
		baseURL: baseURL,
	}, nil
}

// ListModels returns the endpoint's models sorted by ID.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s models from %s: %w", p.backend, p.baseURL, err)
	}

	result := make([]ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		result = append(result, ModelInfo{
			ID:      m.ID,
			OwnedBy: m.OwnedBy,
			Backend: p.backend,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Ping checks reachability and credentials by listing models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", p.backend, err)
	}
	return nil
}

// NoneProvider backs the none backend, which has no models.
type NoneProvider struct{}

func (NoneProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	return nil, nil
}

func (NoneProvider) Ping(ctx context.Context) error {
	return nil
}

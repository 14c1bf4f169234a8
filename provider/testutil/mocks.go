package testutil

import (
	"context"

	"ragchat/provider"
	"ragchat/rag"
)

// MockLister implements provider.ModelLister for testing
type MockLister struct {
	ListModelsFunc func(ctx context.Context) ([]provider.ModelInfo, error)
	PingFunc       func(ctx context.Context) error
}

// NewMockLister returns a lister that reports the given model IDs
func NewMockLister(backend rag.Backend, ids ...string) *MockLister {
	return &MockLister{
		ListModelsFunc: func(ctx context.Context) ([]provider.ModelInfo, error) {
			out := make([]provider.ModelInfo, 0, len(ids))
			for _, id := range ids {
				out = append(out, provider.ModelInfo{ID: id, Backend: backend})
			}
			return out, nil
		},
		PingFunc: func(ctx context.Context) error { return nil },
	}
}

func (m *MockLister) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockLister) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}

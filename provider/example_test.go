package provider_test

import (
	"context"
	"fmt"
	"log"

	"ragchat/provider"
	"ragchat/rag"
)

// ExampleNewProvider shows that the none backend needs no endpoint.
func ExampleNewProvider() {
	p, err := provider.NewProvider(provider.Config{Backend: rag.BackendNone})
	if err != nil {
		log.Fatal(err)
	}

	models, _ := p.ListModels(context.Background())
	fmt.Printf("%T with %d models\n", p, len(models))
	// Output: provider.NoneProvider with 0 models
}

// ExampleNewOpenAIProvider creates a lister for a local OpenAI-compatible
// server. No request is made until ListModels is called.
func ExampleNewOpenAIProvider() {
	p, err := provider.NewOpenAIProvider(rag.BackendCompatibleLocal, "http://localhost:1234/v1", "")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%T\n", p)
	// Output: *provider.OpenAIProvider
}

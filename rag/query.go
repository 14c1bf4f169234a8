// Package rag drives the external retrieval-augmented-generation tool.
//
// ragchat does no retrieval, ranking or generation itself. Every question is
// handed to `python -m scripts.ask` as a subprocess and the plain-text output
// is split into an answer and its supporting evidence.
//
// # Pieces
//
//   - QueryConfig: the per-request knobs shown in the sidebar
//   - BuildArgs: the fixed argument vector for scripts.ask
//   - Executor: the process boundary (ExecExecutor runs real processes)
//   - Capability: one-shot probe of whether scripts.ask accepts --format
//   - Runner: single invocations (Run) and the two-phase Ask
//
// # Usage
//
//	tool := rag.Tool{RepoRoot: root, Python: "python3", Module: "scripts.ask"}
//	exec := rag.ExecExecutor{}
//	caps := rag.NewCapability(tool, exec, 15*time.Second)
//	runner := rag.NewRunner(tool, caps, rag.WithExecutor(exec))
//	answer, err := runner.Ask(ctx, "東京の人口は？", rag.DefaultQueryConfig())
package rag

import (
	"errors"
	"fmt"
	"strings"
)

// Backend selects the LLM used by scripts.ask to phrase the answer.
type Backend string

const (
	BackendOpenAI          Backend = "openai"
	BackendCompatibleLocal Backend = "compatible-local"
	BackendNone            Backend = "none"
)

// compatibleLocalWireName is what scripts.ask calls an OpenAI-compatible
// local endpoint (LM Studio, Ollama, ...).
const compatibleLocalWireName = "internlm2"

// Backends lists the selectable backends in sidebar order.
var Backends = []Backend{BackendOpenAI, BackendCompatibleLocal, BackendNone}

// ParseBackend accepts the display names plus the tool's own name for the
// compatible-local backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(BackendOpenAI):
		return BackendOpenAI, nil
	case string(BackendCompatibleLocal), compatibleLocalWireName:
		return BackendCompatibleLocal, nil
	case string(BackendNone):
		return BackendNone, nil
	}
	return "", fmt.Errorf("%w: unknown llm backend %q", ErrInvalidConfig, s)
}

// WireName is the value passed to --llm-backend.
func (b Backend) WireName() string {
	if b == BackendCompatibleLocal {
		return compatibleLocalWireName
	}
	return string(b)
}

func (b Backend) Valid() bool {
	for _, known := range Backends {
		if b == known {
			return true
		}
	}
	return false
}

// Next cycles through Backends, used by the sidebar selector.
func (b Backend) Next() Backend {
	for i, known := range Backends {
		if b == known {
			return Backends[(i+1)%len(Backends)]
		}
	}
	return Backends[0]
}

// Format is the structured-output mode requested through --format.
type Format string

const (
	FormatUnspecified Format = ""
	FormatConcise     Format = "concise"
	FormatFull        Format = "full"
)

var ErrInvalidConfig = errors.New("invalid query config")

// QueryConfig is supplied by the caller for every request and never mutated
// by the runner.
type QueryConfig struct {
	Storage string
	K       int
	Backend Backend
	Model   string // ignored when Backend is none
	Rerank  bool
}

func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		Storage: "storage",
		K:       4,
		Backend: BackendOpenAI,
		Model:   "gpt-5-mini",
		Rerank:  true,
	}
}

func (c QueryConfig) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidConfig, c.K)
	}
	if !c.Backend.Valid() {
		return fmt.Errorf("%w: unknown llm backend %q", ErrInvalidConfig, c.Backend)
	}
	if strings.TrimSpace(c.Storage) == "" {
		return fmt.Errorf("%w: storage path is empty", ErrInvalidConfig)
	}
	return nil
}

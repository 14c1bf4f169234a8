package rag

import (
	"strconv"
)

// BuildArgs returns the scripts.ask arguments for one invocation:
//
//	--storage <path> --k <int> --llm-backend <name> --q <text>
//	[--llm-model <name>] [--no-rerank] [--format <concise|full>]
//
// The model flag is never emitted for the none backend. Whether --format is
// actually supported is the caller's decision; BuildArgs emits it whenever a
// format is given.
func BuildArgs(query string, cfg QueryConfig, format Format) []string {
	args := []string{
		"--storage", cfg.Storage,
		"--k", strconv.Itoa(cfg.K),
		"--llm-backend", cfg.Backend.WireName(),
		"--q", query,
	}

	if cfg.Backend != BackendNone && cfg.Model != "" {
		args = append(args, "--llm-model", cfg.Model)
	}
	if !cfg.Rerank {
		args = append(args, "--no-rerank")
	}
	if format != FormatUnspecified {
		args = append(args, "--format", string(format))
	}

	return args
}

package model

import (
	"time"

	"ragchat/rag"
)

// QueryDoneMsg carries the outcome of one Ask back to the event loop.
type QueryDoneMsg struct {
	Query    string
	Answer   rag.Answer
	Err      error
	Duration time.Duration
}

// CapabilityProbedMsg reports whether scripts.ask accepts --format.
type CapabilityProbedMsg struct {
	Supported bool
}

type MarkdownRenderedMsg struct {
	MessageID string
	Rendered  string
}

type ConfigSavedMsg struct {
	Path string
	Err  error
}

type FlashTickMsg struct{}

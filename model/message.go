package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system" // transient status lines, never part of history
)

// Message represents a chat message in the conversation
type Message struct {
	ID        string
	Role      Role
	Content   string
	Evidence  string // Hit fragments and folded stderr, assistant only
	Rendered  string // Cached rendered markdown
	Failed    bool
	Timestamp time.Time
}

func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func (m Message) HasEvidence() bool {
	return m.Evidence != ""
}

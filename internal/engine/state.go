package engine

import (
	"github.com/tavernworks/innkeep/internal/llm"
	"github.com/tavernworks/innkeep/internal/persona"
)

// ChatResponse is the structured model output for one turn.
type ChatResponse struct {
	Message   string `json:"message"`
	Narration string `json:"narration,omitempty"`
}

// State is the single mutable record threaded through the pipeline for
// one user turn. Exactly one State exists per turn and it is never
// shared across concurrent turns.
type State struct {
	Persona     *persona.Persona
	UserMessage string
	Context     map[string]string

	RetrievedMemories []*persona.MemoryEntry
	FormattedMessages []llm.Message
	RawResponse       string
	Parsed            *ChatResponse
	ExtractedMemories []*persona.MemoryEntry
	GeneratedQuests   []persona.Quest

	Err        error
	RetryCount int
	MaxRetries int
}

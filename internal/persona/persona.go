// Package persona defines the data model for configured conversational
// identities: personas, their memories, quests and conversation history.
package persona

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is stamped on new personas and carried through
// export/import. Personas with an older version get their conversation
// history cleared on migration.
const SchemaVersion = "1.0.0"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a persona's conversation history.
type Message struct {
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Narration string    `json:"narration,omitempty" yaml:"narration,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// MemoryEntry is one remembered fact with decaying importance.
// Importance is clamped to [0,10] by the importance update pass, not at
// creation, so a freshly extracted memory can briefly sit outside that
// range.
type MemoryEntry struct {
	ID           string    `json:"id" yaml:"id"`
	Content      string    `json:"content" yaml:"content"`
	Importance   float64   `json:"importance" yaml:"importance"`
	CreatedAt    time.Time `json:"created_at" yaml:"createdAt"`
	LastAccessed time.Time `json:"last_accessed" yaml:"lastAccessed"`
}

// QuestStatus tracks a quest through its lifecycle.
type QuestStatus string

const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
)

// Quest is a structured side-artifact generated during conversation.
type Quest struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description" yaml:"description"`
	Status      QuestStatus `json:"status" yaml:"status"`
	PartySize   int         `json:"party_size" yaml:"partySize"`
	Level       int         `json:"level" yaml:"level"`
	Rewards     string      `json:"rewards,omitempty" yaml:"rewards,omitempty"`
	CreatedAt   time.Time   `json:"created_at" yaml:"createdAt"`
}

// Personality holds the four bounded [0,10] trait sliders. The traits are
// carried through prompts verbatim; the engine does not interpret them.
type Personality struct {
	Friendliness int `json:"friendliness" yaml:"friendliness"`
	Formality    int `json:"formality" yaml:"formality"`
	Verbosity    int `json:"verbosity" yaml:"verbosity"`
	Humor        int `json:"humor" yaml:"humor"`
}

// ModelParams are the sampling parameters used for this persona's model
// calls. Temperature in [0,2], TopP in (0,1], MaxTokens > 0.
type ModelParams struct {
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"topP"`
	MaxTokens   int     `json:"max_tokens" yaml:"maxTokens"`
}

// Type is the closed-set persona type tag. It only influences the
// quest-generation heuristic.
type Type string

const (
	TypeBarkeep            Type = "barkeep"
	TypeShopkeep           Type = "shopkeep"
	TypeQuestNPC           Type = "quest-npc"
	TypeTownGuard          Type = "town-guard"
	TypeTavernPatron       Type = "tavern-patron"
	TypeBlacksmith         Type = "blacksmith"
	TypeHealer             Type = "healer"
	TypeMysteriousStranger Type = "mysterious-stranger"
	TypeVillageElder       Type = "village-elder"
	TypeMerchantCaravan    Type = "merchant-caravan"
	TypeDungeonBoss        Type = "dungeon-boss"
	TypeCustom             Type = "custom"
)

// Persona is a configured conversational identity. The engine mutates the
// Memory set in place during a turn; everything else it only reads. Callers
// own persistence and must serialize concurrent turns per persona.
type Persona struct {
	ID                 string         `json:"id" yaml:"id"`
	Name               string         `json:"name" yaml:"name"`
	Type               Type           `json:"type" yaml:"type"`
	Personality        Personality    `json:"personality" yaml:"personality"`
	SystemPrompt       string         `json:"system_prompt" yaml:"systemPrompt"`
	UserPromptTemplate string         `json:"user_prompt_template" yaml:"userPromptTemplate"`
	ModelParams        ModelParams    `json:"model_params" yaml:"modelParams"`
	History            []Message      `json:"history" yaml:"conversationHistory"`
	Memory             []*MemoryEntry `json:"memory" yaml:"memory"`
	Quests             []Quest        `json:"quests" yaml:"quests"`
	SchemaVersion      string         `json:"schema_version,omitempty" yaml:"schemaVersion,omitempty"`
	CreatedAt          time.Time      `json:"created_at" yaml:"createdAt"`
	UpdatedAt          time.Time      `json:"updated_at" yaml:"updatedAt"`
}

// New creates a blank custom persona with the given name and prompts.
func New(name, systemPrompt, userPromptTemplate string) *Persona {
	now := time.Now()
	return &Persona{
		ID:                 uuid.New().String(),
		Name:               name,
		Type:               TypeCustom,
		SystemPrompt:       systemPrompt,
		UserPromptTemplate: userPromptTemplate,
		ModelParams:        ModelParams{Temperature: 0.7, TopP: 0.9, MaxTokens: 512},
		History:            []Message{},
		Memory:             []*MemoryEntry{},
		Quests:             []Quest{},
		SchemaVersion:      SchemaVersion,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// AppendTurn records one completed exchange in the conversation history.
func (p *Persona) AppendTurn(userMessage string, assistantMessage, narration string) {
	now := time.Now()
	p.History = append(p.History,
		Message{Role: RoleUser, Content: userMessage, Timestamp: now},
		Message{Role: RoleAssistant, Content: assistantMessage, Narration: narration, Timestamp: now},
	)
	p.UpdatedAt = now
}

// FindMemory returns the memory with the given id, or nil.
func (p *Persona) FindMemory(id string) *MemoryEntry {
	for _, m := range p.Memory {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Migrate brings a persona loaded from an older schema up to date. History
// from an incompatible schema is cleared; everything else is preserved.
// Returns true if anything changed.
func (p *Persona) Migrate() bool {
	if p.SchemaVersion == SchemaVersion {
		return false
	}
	p.History = []Message{}
	p.SchemaVersion = SchemaVersion
	p.UpdatedAt = time.Now()
	return true
}

package store

import (
	"fmt"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/tavernworks/innkeep/internal/persona"
)

// personaRecord is the wire shape of a persona row. SurrealDB returns the
// id as a RecordID, everything else matches the persona's JSON layout.
type personaRecord struct {
	ID                 surrealmodels.RecordID `json:"id"`
	Name               string                 `json:"name"`
	Type               string                 `json:"type"`
	Personality        persona.Personality    `json:"personality"`
	SystemPrompt       string                 `json:"system_prompt"`
	UserPromptTemplate string                 `json:"user_prompt_template"`
	ModelParams        persona.ModelParams    `json:"model_params"`
	History            []persona.Message      `json:"history"`
	Memory             []*persona.MemoryEntry `json:"memory"`
	Quests             []persona.Quest        `json:"quests"`
	SchemaVersion      string                 `json:"schema_version,omitempty"`
	Created            time.Time              `json:"created"`
	Updated            time.Time              `json:"updated"`
}

// recordIDString safely extracts the string ID from a SurrealDB RecordID.
func recordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

func (r *personaRecord) toPersona() (*persona.Persona, error) {
	id, err := recordIDString(r.ID)
	if err != nil {
		return nil, err
	}
	return &persona.Persona{
		ID:                 id,
		Name:               r.Name,
		Type:               persona.Type(r.Type),
		Personality:        r.Personality,
		SystemPrompt:       r.SystemPrompt,
		UserPromptTemplate: r.UserPromptTemplate,
		ModelParams:        r.ModelParams,
		History:            r.History,
		Memory:             r.Memory,
		Quests:             r.Quests,
		SchemaVersion:      r.SchemaVersion,
		CreatedAt:          r.Created,
		UpdatedAt:          r.Updated,
	}, nil
}

// recordContent builds the CONTENT payload for an upsert. The id is
// excluded; SurrealDB derives it from the record pointer.
func recordContent(p *persona.Persona) map[string]any {
	history := p.History
	if history == nil {
		history = []persona.Message{}
	}
	mem := p.Memory
	if mem == nil {
		mem = []*persona.MemoryEntry{}
	}
	quests := p.Quests
	if quests == nil {
		quests = []persona.Quest{}
	}
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return map[string]any{
		"name":                 p.Name,
		"type":                 string(p.Type),
		"personality":          p.Personality,
		"system_prompt":        p.SystemPrompt,
		"user_prompt_template": p.UserPromptTemplate,
		"model_params":         p.ModelParams,
		"history":              history,
		"memory":               mem,
		"quests":               quests,
		"schema_version":       p.SchemaVersion,
		"created":              created,
		"updated":              time.Now(),
	}
}

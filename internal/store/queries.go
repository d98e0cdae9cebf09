// Package store provides SurrealDB query functions for persona operations.
package store

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/tavernworks/innkeep/internal/persona"
)

// UpsertPersona creates or fully replaces a persona record.
func (c *Client) UpsertPersona(ctx context.Context, p *persona.Persona) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("persona", $id) CONTENT $data
	`, map[string]any{"id": p.ID, "data": recordContent(p)})
	if err != nil {
		return fmt.Errorf("upsert persona: %w", wrapQueryError(err))
	}
	return nil
}

// GetPersona retrieves a persona by ID.
// Returns ErrNotFound if it does not exist.
func (c *Client) GetPersona(ctx context.Context, id string) (*persona.Persona, error) {
	results, err := surrealdb.Query[[]personaRecord](ctx, c.db, `
		SELECT * FROM type::record("persona", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get persona: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return (*results)[0].Result[0].toPersona()
}

// GetPersonaByName retrieves a persona by its unique display name.
// Returns ErrNotFound if it does not exist.
func (c *Client) GetPersonaByName(ctx context.Context, name string) (*persona.Persona, error) {
	results, err := surrealdb.Query[[]personaRecord](ctx, c.db, `
		SELECT * FROM persona WHERE name = $name LIMIT 1
	`, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("get persona by name: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return (*results)[0].Result[0].toPersona()
}

// ListPersonas returns all personas ordered by name.
func (c *Client) ListPersonas(ctx context.Context) ([]*persona.Persona, error) {
	results, err := surrealdb.Query[[]personaRecord](ctx, c.db, `
		SELECT * FROM persona ORDER BY name
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []*persona.Persona{}, nil
	}

	records := (*results)[0].Result
	personas := make([]*persona.Persona, 0, len(records))
	for i := range records {
		p, err := records[i].toPersona()
		if err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}
	return personas, nil
}

// DeletePersona removes a persona by ID.
func (c *Client) DeletePersona(ctx context.Context, id string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE type::record("persona", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete persona: %w", wrapQueryError(err))
	}
	return nil
}

// SaveTurnState persists the mutable turn outcome (history, memory,
// quests) of a persona after a chat turn, without touching its
// configuration fields.
func (c *Client) SaveTurnState(ctx context.Context, p *persona.Persona) error {
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

	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("persona", $id) SET
			history = $history,
			memory = $memory,
			quests = $quests,
			updated = time::now()
	`, map[string]any{
		"id":      p.ID,
		"history": history,
		"memory":  mem,
		"quests":  quests,
	})
	if err != nil {
		return fmt.Errorf("save turn state: %w", wrapQueryError(err))
	}
	return nil
}

// UpdateMemories replaces the stored memory set of a persona, leaving
// history and configuration untouched. Used after importance updates
// that happen outside a full chat turn.
func (c *Client) UpdateMemories(ctx context.Context, id string, memories []*persona.MemoryEntry) error {
	if memories == nil {
		memories = []*persona.MemoryEntry{}
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("persona", $id) SET
			memory = $memory,
			updated = time::now()
	`, map[string]any{"id": id, "memory": memories})
	if err != nil {
		return fmt.Errorf("update memories: %w", wrapQueryError(err))
	}
	return nil
}

// AppendHistory appends messages to a persona's conversation history.
func (c *Client) AppendHistory(ctx context.Context, id string, messages []persona.Message) error {
	if len(messages) == 0 {
		return nil
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("persona", $id) SET
			history += $messages,
			updated = time::now()
	`, map[string]any{"id": id, "messages": messages})
	if err != nil {
		return fmt.Errorf("append history: %w", wrapQueryError(err))
	}
	return nil
}

// AppendQuests appends generated quests to a persona's quest log.
func (c *Client) AppendQuests(ctx context.Context, id string, quests []persona.Quest) error {
	if len(quests) == 0 {
		return nil
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("persona", $id) SET
			quests += $quests,
			updated = time::now()
	`, map[string]any{"id": id, "quests": quests})
	if err != nil {
		return fmt.Errorf("append quests: %w", wrapQueryError(err))
	}
	return nil
}

// CountPersonas returns the number of stored personas.
func (c *Client) CountPersonas(ctx context.Context) (int, error) {
	results, err := surrealdb.Query[[]struct {
		Count int `json:"count"`
	}](ctx, c.db, `
		SELECT count() AS count FROM persona GROUP ALL
	`, nil)
	if err != nil {
		return 0, fmt.Errorf("count personas: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tavernworks/innkeep/internal/llm"
	"github.com/tavernworks/innkeep/internal/metrics"
	"github.com/tavernworks/innkeep/internal/persona"
)

// Keyword families that hint at quest-like conversation. The conditional
// edge only consults the first three; the generator's own check adds the
// reward family on top. The two checks are intentionally kept separate.
var questKeywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(quest|mission|task|job|adventure)`),
	regexp.MustCompile(`(need|want|looking for|searching)`),
	regexp.MustCompile(`(help|assist|aid)`),
	regexp.MustCompile(`(reward|payment|gold|coins)`),
}

const questSystemPrompt = "You are a quest generation assistant. Generate quests that match the NPC's personality and the conversation context."

// Quest generation uses fixed sampling parameters independent of the
// persona's own.
const (
	questTemperature = 0.7
	questTopP        = 0.9
)

func questKeywordMatch(patterns []*regexp.Regexp, response, userMessage string) bool {
	resp := strings.ToLower(response)
	msg := strings.ToLower(userMessage)
	for _, p := range patterns {
		if p.MatchString(resp) || p.MatchString(msg) {
			return true
		}
	}
	return false
}

func questPersona(p *persona.Persona) bool {
	return p.Type == persona.TypeQuestNPC ||
		strings.Contains(strings.ToLower(p.SystemPrompt), "quest")
}

// shouldGenerateQuest is the conditional edge out of store_memory.
func (e *Engine) shouldGenerateQuest(s *State) bool {
	if s.Parsed == nil {
		return false
	}
	return questKeywordMatch(questKeywordPatterns[:3], s.Parsed.Message, s.UserMessage) ||
		questPersona(s.Persona)
}

func questPrompt(p *persona.Persona, userMessage, npcResponse string) string {
	personality, _ := json.Marshal(p.Personality)
	return fmt.Sprintf(`Based on this conversation, generate an appropriate quest for the party.

Persona: %s
Personality: %s
Last user message: %s
NPC response: %s

Generate a quest as JSON with these exact fields:
{
  "title": "Quest title",
  "description": "Detailed quest description",
  "partySize": 4,
  "level": 5,
  "rewards": "Optional reward description"
}

Respond only with valid JSON, no other text.`, p.Name, personality, userMessage, npcResponse)
}

// generateQuest issues a second, single-purpose model call to produce a
// structured quest. It is best-effort: any invocation or parse failure
// degrades to an empty quest list and never propagates.
func (e *Engine) generateQuest(ctx context.Context, s *State) error {
	s.GeneratedQuests = nil
	if s.Parsed == nil {
		return nil
	}
	if !questKeywordMatch(questKeywordPatterns, s.Parsed.Message, s.UserMessage) && !questPersona(s.Persona) {
		return nil
	}

	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: questSystemPrompt},
		{Role: llm.RoleUser, Content: questPrompt(s.Persona, s.UserMessage, s.Parsed.Message)},
	}

	start := time.Now()
	raw, err := e.invoke(ctx, msgs, llm.Options{Temperature: questTemperature, TopP: questTopP})
	if err != nil {
		slog.Warn("quest generation failed", "persona", s.Persona.Name, "error", err)
		return nil
	}
	e.metrics.RecordModelUsage(metrics.OpQuestGen, time.Since(start), promptChars(msgs), int64(len(raw)))

	var data struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		PartySize   int    `json:"partySize"`
		Level       int    `json:"level"`
		Rewards     string `json:"rewards"`
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("quest response was not valid JSON", "persona", s.Persona.Name, "error", err)
		return nil
	}

	quest := persona.Quest{
		ID:          uuid.NewString(),
		Title:       data.Title,
		Description: data.Description,
		Status:      persona.QuestActive,
		PartySize:   data.PartySize,
		Level:       data.Level,
		Rewards:     data.Rewards,
		CreatedAt:   time.Now(),
	}
	if quest.Title == "" {
		quest.Title = "Untitled Quest"
	}
	if quest.PartySize == 0 {
		quest.PartySize = 4
	}
	if quest.Level == 0 {
		quest.Level = 5
	}

	s.GeneratedQuests = append(s.GeneratedQuests, quest)
	return nil
}

package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/tavernworks/innkeep/internal/llm"
	"github.com/tavernworks/innkeep/internal/memory"
	"github.com/tavernworks/innkeep/internal/metrics"
	"github.com/tavernworks/innkeep/internal/persona"
)

// retrievalLimit is how many memories are injected into each turn's prompt.
const retrievalLimit = 3

func (e *Engine) retrieveMemory(s *State) error {
	start := time.Now()
	s.RetrievedMemories = memory.Retrieve(s.Persona, memory.RetrievalOptions{
		Query: s.UserMessage,
		Limit: retrievalLimit,
	})
	e.metrics.RecordTiming(metrics.OpRetrieval, time.Since(start))
	return nil
}

func (e *Engine) formatPrompt(s *State) error {
	systemPrompt := s.Persona.SystemPrompt
	if len(s.RetrievedMemories) > 0 {
		systemPrompt += memory.FormatForPrompt(s.RetrievedMemories)
	}

	var contextText string
	if s.Context != nil {
		b, err := json.Marshal(s.Context)
		if err == nil {
			contextText = string(b)
		}
	}

	userPrompt := strings.Replace(s.Persona.UserPromptTemplate, "{message}", s.UserMessage, 1)
	userPrompt = strings.Replace(userPrompt, "{context}", contextText, 1)

	msgs := make([]llm.Message, 0, len(s.Persona.History)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, m := range s.Persona.History {
		msgs = append(msgs, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: userPrompt})

	s.FormattedMessages = msgs
	return nil
}

func (e *Engine) llmCall(ctx context.Context, s *State) error {
	start := time.Now()
	opts := llm.Options{
		Temperature: s.Persona.ModelParams.Temperature,
		TopP:        s.Persona.ModelParams.TopP,
		MaxTokens:   s.Persona.ModelParams.MaxTokens,
	}

	raw, err := e.invoke(ctx, s.FormattedMessages, opts)
	if err != nil {
		slog.Warn("model call failed",
			"persona", s.Persona.Name,
			"attempt", s.RetryCount+1,
			"error", err)
		s.Err = err
		return nil
	}

	e.metrics.RecordModelUsage(metrics.OpModelCall, time.Since(start), promptChars(s.FormattedMessages), int64(len(raw)))

	s.RawResponse = raw
	s.Parsed = parseResponse(raw)
	s.Err = nil
	return nil
}

// handleError is the retry loop body. It increments the retry counter,
// re-raises the original error once the budget is spent, and otherwise
// backs off proportionally to the attempt number before looping back to
// the model call.
func (e *Engine) handleError(ctx context.Context, s *State) error {
	newCount := s.RetryCount + 1

	if newCount >= s.MaxRetries {
		if s.Err != nil {
			return s.Err
		}
		return ErrRetriesExhausted
	}

	delay := time.Duration(newCount) * retryBackoffUnit
	slog.Debug("retrying model call", "persona", s.Persona.Name, "attempt", newCount, "delay", delay)
	if err := e.sleep(ctx, delay); err != nil {
		return err
	}

	s.RetryCount = newCount
	s.Err = nil
	return nil
}

func (e *Engine) extractMemory(s *State) error {
	if s.Parsed == nil {
		return nil
	}

	start := time.Now()
	now := time.Now()
	turn := []persona.Message{
		{Role: persona.RoleUser, Content: s.UserMessage, Timestamp: now},
		{Role: persona.RoleAssistant, Content: s.Parsed.Message, Narration: s.Parsed.Narration, Timestamp: now},
	}
	s.ExtractedMemories = memory.ExtractAndStore(s.Persona, turn, memory.DefaultExtractionThreshold, e.extractor)
	e.metrics.RecordTiming(metrics.OpExtraction, time.Since(start))
	return nil
}

func (e *Engine) updateImportance(s *State) error {
	accessed := make([]string, len(s.RetrievedMemories))
	for i, m := range s.RetrievedMemories {
		accessed[i] = m.ID
	}
	memory.UpdateImportanceFromAccess(s.Persona, accessed)
	return nil
}

// storeMemory is a placeholder. Extraction already mutated the persona's
// memory set in place; durable persistence is the caller's job after the
// turn returns.
func (e *Engine) storeMemory(_ *State) error {
	return nil
}

// invoke runs one model call and aggregates its stream into a full string.
func (e *Engine) invoke(ctx context.Context, msgs []llm.Message, opts llm.Options) (string, error) {
	stream, err := e.model.Chat(ctx, msgs, opts)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var b strings.Builder
	for stream.Next() {
		b.WriteString(stream.Current())
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// parseResponse decodes the model output as a structured response and
// falls back to treating the raw text as the message when it is not
// valid JSON or carries an empty message field.
func parseResponse(raw string) *ChatResponse {
	var parsed ChatResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return &ChatResponse{Message: raw}
	}
	if parsed.Message == "" {
		parsed.Message = raw
	}
	return &parsed
}

func promptChars(msgs []llm.Message) int64 {
	var n int64
	for _, m := range msgs {
		n += int64(len(m.Content))
	}
	return n
}

// Package engine orchestrates one conversational turn against a persona:
// memory retrieval, prompt assembly, the model call with bounded retries,
// memory extraction and importance decay, and conditional quest
// generation. The engine mutates the persona's memory set in place and
// leaves persistence to the caller. Callers must serialize concurrent
// turns against the same persona instance.
package engine

import (
	"context"
	"time"

	"github.com/tavernworks/innkeep/internal/llm"
	"github.com/tavernworks/innkeep/internal/memory"
	"github.com/tavernworks/innkeep/internal/metrics"
	"github.com/tavernworks/innkeep/internal/persona"
)

const (
	// DefaultMaxRetries bounds the model-call retry loop per turn.
	DefaultMaxRetries = 3

	// retryBackoffUnit is multiplied by the attempt number for the
	// escalating delay between retries.
	retryBackoffUnit = time.Second
)

// Response is the outcome of one turn.
type Response struct {
	Message   string
	Narration string
	Quests    []persona.Quest
}

// Engine runs the turn pipeline. Safe for concurrent use across
// different personas; the persona passed to Chat is mutated without
// locking.
type Engine struct {
	model      llm.ChatModel
	extractor  memory.Extractor
	metrics    *metrics.Collector
	maxRetries int

	// sleep is swapped out in tests so retry backoff does not stall them.
	sleep func(context.Context, time.Duration) error
}

// New creates an engine around a chat model. A nil collector gets a
// private one; maxRetries <= 0 falls back to the default.
func New(model llm.ChatModel, maxRetries int, collector *metrics.Collector) *Engine {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &Engine{
		model:      model,
		extractor:  memory.RegexExtractor{},
		metrics:    collector,
		maxRetries: maxRetries,
		sleep:      sleepContext,
	}
}

// Metrics exposes the engine's collector for stats reporting.
func (e *Engine) Metrics() *metrics.Collector {
	return e.metrics
}

// Chat runs a single turn: the user message goes through the full
// pipeline and the final response comes back along with any generated
// quests. The persona's memory set is mutated in place; appending the
// turn to the conversation history and persisting the persona are the
// caller's responsibility.
func (e *Engine) Chat(ctx context.Context, p *persona.Persona, message string, contextMap map[string]string) (*Response, error) {
	if e.model == nil {
		return nil, ErrModelNotConfigured
	}

	start := time.Now()
	s := &State{
		Persona:     p,
		UserMessage: message,
		Context:     contextMap,
		MaxRetries:  e.maxRetries,
	}

	if err := e.run(ctx, s); err != nil {
		return nil, err
	}
	e.metrics.RecordTiming(metrics.OpTurn, time.Since(start))

	return &Response{
		Message:   s.Parsed.Message,
		Narration: s.Parsed.Narration,
		Quests:    s.GeneratedQuests,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

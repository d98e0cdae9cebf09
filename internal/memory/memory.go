// Package memory implements the scoring engine behind persona long-term
// memory: keyword retrieval, heuristic fact extraction, and the
// importance decay/boost model.
package memory

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tavernworks/innkeep/internal/persona"
)

const (
	// DefaultImportance is assigned to memories added without an explicit score.
	DefaultImportance = 5

	// DefaultExtractionThreshold is the importance assigned to extracted facts.
	DefaultExtractionThreshold = 7

	// minImportanceDelta suppresses no-op importance writes.
	minImportanceDelta = 0.1
)

// Add appends a new memory to the persona and returns it. Importance is
// stored as given; clamping only happens in UpdateImportanceFromAccess.
func Add(p *persona.Persona, content string, importance float64) *persona.MemoryEntry {
	now := time.Now()
	entry := &persona.MemoryEntry{
		ID:           uuid.New().String(),
		Content:      content,
		Importance:   importance,
		CreatedAt:    now,
		LastAccessed: now,
	}
	p.Memory = append(p.Memory, entry)
	return entry
}

// RetrievalOptions configures a memory retrieval.
type RetrievalOptions struct {
	Query    string
	Limit    int
	MinScore float64
}

type scoredMemory struct {
	entry *persona.MemoryEntry
	score float64
}

// Retrieve returns the persona's most relevant memories for a query,
// scored by keyword overlap, importance and recency. Selected memories get
// their LastAccessed timestamp bumped as a side effect of the read.
func Retrieve(p *persona.Persona, opts RetrievalOptions) []*persona.MemoryEntry {
	if len(p.Memory) == 0 {
		return nil
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}

	queryTerms := strings.Fields(strings.ToLower(opts.Query))
	now := time.Now()

	scored := make([]scoredMemory, 0, len(p.Memory))
	for _, m := range p.Memory {
		text := strings.ToLower(m.Content)

		var score float64
		for _, term := range queryTerms {
			if strings.Contains(text, term) {
				score++
			}
		}
		score += m.Importance / 10

		daysSinceCreation := now.Sub(m.CreatedAt).Hours() / 24
		score += 1 / (daysSinceCreation + 1)

		if score >= opts.MinScore {
			scored = append(scored, scoredMemory{entry: m, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}

	results := make([]*persona.MemoryEntry, len(scored))
	for i, sm := range scored {
		sm.entry.LastAccessed = time.Now()
		results[i] = sm.entry
	}

	slog.Debug("memory retrieval",
		"persona", p.ID,
		"query_terms", len(queryTerms),
		"candidates", len(p.Memory),
		"retrieved", len(results),
	)
	return results
}

// ExtractAndStore scans the last six messages of a conversation slice for
// declarative facts and stores any that are not near-duplicates of
// existing memories. New memories get importance = threshold, unclamped.
// Returns the entries appended by this call.
func ExtractAndStore(p *persona.Persona, messages []persona.Message, threshold float64, extractor Extractor) []*persona.MemoryEntry {
	recent := messages
	if len(recent) > 6 {
		recent = recent[len(recent)-6:]
	}

	var added []*persona.MemoryEntry
	for _, msg := range recent {
		if msg.Role != persona.RoleUser && msg.Role != persona.RoleAssistant {
			continue
		}

		fact, ok := extractor.Extract(msg.Content)
		if !ok {
			continue
		}

		if hasNearDuplicate(p, fact) {
			slog.Debug("skipping duplicate memory", "persona", p.ID, "fact", fact)
			continue
		}

		added = append(added, Add(p, fact, threshold))
	}
	return added
}

// hasNearDuplicate reports whether an existing memory contains the fact or
// is contained by it, case-insensitively.
func hasNearDuplicate(p *persona.Persona, fact string) bool {
	factLower := strings.ToLower(fact)
	for _, m := range p.Memory {
		existing := strings.ToLower(m.Content)
		if strings.Contains(existing, factLower) || strings.Contains(factLower, existing) {
			return true
		}
	}
	return false
}

// UpdateImportanceFromAccess applies the decay/boost model to every memory
// of the persona. Memories in accessedIDs are boosted by recency of access;
// the rest decay, with stale old memories decaying faster. Results are
// clamped to [0,10]. Changes smaller than 0.1 are discarded as noise.
func UpdateImportanceFromAccess(p *persona.Persona, accessedIDs []string) {
	accessed := make(map[string]struct{}, len(accessedIDs))
	for _, id := range accessedIDs {
		accessed[id] = struct{}{}
	}

	now := time.Now()
	for _, m := range p.Memory {
		daysSinceAccess := now.Sub(m.LastAccessed).Hours() / 24
		daysSinceCreation := now.Sub(m.CreatedAt).Hours() / 24

		next := m.Importance
		if _, ok := accessed[m.ID]; ok {
			boost := 1 / (daysSinceAccess + 0.1)
			if boost > 2 {
				boost = 2
			}
			next += boost
		} else {
			decayRate := 0.1
			if daysSinceAccess > 7 {
				decayRate = 0.5
			}
			scale := daysSinceAccess / 30
			if scale > 1 {
				scale = 1
			}
			next -= decayRate * scale

			// Old and long-unused memories fade faster.
			if daysSinceCreation > 90 && daysSinceAccess > 30 {
				next -= 0.2
			}
		}

		if next < 0 {
			next = 0
		} else if next > 10 {
			next = 10
		}

		if delta := next - m.Importance; delta > minImportanceDelta || delta < -minImportanceDelta {
			m.Importance = next
		}
	}
}

// FormatForPrompt renders memories as a numbered block for injection into
// a system prompt. Returns "" for an empty list.
func FormatForPrompt(memories []*persona.MemoryEntry) string {
	if len(memories) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n**Important Memories:**")
	for i, m := range memories {
		fmt.Fprintf(&b, "\n%d. %s", i+1, m.Content)
	}
	return b.String()
}

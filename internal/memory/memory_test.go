package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernworks/innkeep/internal/persona"
)

func testPersona() *persona.Persona {
	return persona.New("Test NPC", "You are a test NPC.", "{context}{message}")
}

func addMemoryAt(p *persona.Persona, content string, importance float64, created, accessed time.Time) *persona.MemoryEntry {
	m := Add(p, content, importance)
	m.CreatedAt = created
	m.LastAccessed = accessed
	return m
}

func TestRetrieveEmptyMemory(t *testing.T) {
	p := testPersona()
	got := Retrieve(p, RetrievalOptions{Query: "anything", Limit: 3})
	assert.Empty(t, got)
}

func TestRetrieveRespectsLimit(t *testing.T) {
	p := testPersona()
	for i := 0; i < 10; i++ {
		Add(p, "the dragon lives in the mountain", 5)
	}

	got := Retrieve(p, RetrievalOptions{Query: "dragon", Limit: 3})
	assert.Len(t, got, 3)
}

func TestRetrieveSortsByDescendingScore(t *testing.T) {
	p := testPersona()
	now := time.Now()
	// Same age, same keyword overlap, importance is the tiebreaker.
	addMemoryAt(p, "the dragon hoards gold", 2, now, now)
	addMemoryAt(p, "the dragon breathes fire", 9, now, now)
	addMemoryAt(p, "the dragon sleeps at noon", 5, now, now)

	got := Retrieve(p, RetrievalOptions{Query: "dragon", Limit: 3})
	require.Len(t, got, 3)
	assert.Equal(t, "the dragon breathes fire", got[0].Content)
	assert.Equal(t, "the dragon sleeps at noon", got[1].Content)
	assert.Equal(t, "the dragon hoards gold", got[2].Content)
}

func TestRetrieveScoresKeywordOverlap(t *testing.T) {
	p := testPersona()
	now := time.Now()
	addMemoryAt(p, "the blacksmith sells iron swords", 5, now, now)
	addMemoryAt(p, "the tavern serves warm ale", 5, now, now)

	got := Retrieve(p, RetrievalOptions{Query: "iron swords", Limit: 1})
	require.Len(t, got, 1)
	assert.Equal(t, "the blacksmith sells iron swords", got[0].Content)
}

func TestRetrieveMinScoreFilters(t *testing.T) {
	p := testPersona()
	now := time.Now()
	// No keyword overlap: score is importance/10 + recency, well under 2.
	addMemoryAt(p, "unrelated fact", 5, now, now)
	addMemoryAt(p, "the dragon attacked the village", 5, now, now)

	got := Retrieve(p, RetrievalOptions{Query: "dragon village", Limit: 5, MinScore: 2})
	require.Len(t, got, 1)
	assert.Equal(t, "the dragon attacked the village", got[0].Content)
}

func TestRetrieveBumpsLastAccessed(t *testing.T) {
	p := testPersona()
	old := time.Now().Add(-48 * time.Hour)
	m := addMemoryAt(p, "the dragon is angry", 5, old, old)

	before := m.LastAccessed
	got := Retrieve(p, RetrievalOptions{Query: "dragon", Limit: 1})
	require.Len(t, got, 1)
	assert.True(t, m.LastAccessed.After(before), "retrieval must bump LastAccessed")
}

func TestRetrieveDoesNotBumpUnselected(t *testing.T) {
	p := testPersona()
	old := time.Now().Add(-48 * time.Hour)
	addMemoryAt(p, "the dragon is angry", 9, old, old)
	loser := addMemoryAt(p, "unrelated fact", 1, old, old)

	Retrieve(p, RetrievalOptions{Query: "dragon", Limit: 1})
	assert.Equal(t, old.Unix(), loser.LastAccessed.Unix(), "unselected memories keep LastAccessed")
}

func TestExtractAndStoreNameScenario(t *testing.T) {
	p := testPersona()
	msgs := []persona.Message{
		{Role: persona.RoleUser, Content: "My name is John", Timestamp: time.Now()},
	}

	added := ExtractAndStore(p, msgs, DefaultExtractionThreshold, RegexExtractor{})

	require.Len(t, p.Memory, 1)
	require.Len(t, added, 1)
	assert.Regexp(t, `(?i)my name is john`, p.Memory[0].Content)
	assert.Equal(t, float64(DefaultExtractionThreshold), p.Memory[0].Importance)
}

func TestExtractAndStoreSuppressesDuplicates(t *testing.T) {
	p := testPersona()
	msgs := []persona.Message{
		{Role: persona.RoleUser, Content: "My name is John", Timestamp: time.Now()},
	}

	ExtractAndStore(p, msgs, DefaultExtractionThreshold, RegexExtractor{})
	added := ExtractAndStore(p, msgs, DefaultExtractionThreshold, RegexExtractor{})

	assert.Len(t, p.Memory, 1, "same fact twice must not create two entries")
	assert.Empty(t, added)
}

func TestExtractAndStoreIgnoresSystemMessages(t *testing.T) {
	p := testPersona()
	msgs := []persona.Message{
		{Role: persona.RoleSystem, Content: "Remember that the sky is blue"},
	}

	ExtractAndStore(p, msgs, DefaultExtractionThreshold, RegexExtractor{})
	assert.Empty(t, p.Memory)
}

func TestExtractAndStoreOnlyLastSixMessages(t *testing.T) {
	p := testPersona()
	msgs := []persona.Message{
		{Role: persona.RoleUser, Content: "My name is Ancient Fact"},
	}
	for i := 0; i < 6; i++ {
		msgs = append(msgs, persona.Message{Role: persona.RoleUser, Content: "nothing declarative here"})
	}

	ExtractAndStore(p, msgs, DefaultExtractionThreshold, RegexExtractor{})
	assert.Empty(t, p.Memory, "messages outside the last six are not scanned")
}

func TestExtractAndStoreAtMostOnePerMessage(t *testing.T) {
	p := testPersona()
	// Content matches both "my name is" and "i have"; first match wins and
	// only one memory is created for the message.
	msgs := []persona.Message{
		{Role: persona.RoleUser, Content: "My name is John and I have a sword"},
	}

	added := ExtractAndStore(p, msgs, DefaultExtractionThreshold, RegexExtractor{})
	assert.Len(t, added, 1)
}

func TestExtractionThresholdNotClampedAtCreation(t *testing.T) {
	// Importance is only clamped by the update pass, so an out-of-range
	// threshold sits as-is until then.
	p := testPersona()
	msgs := []persona.Message{
		{Role: persona.RoleUser, Content: "My name is John"},
	}

	ExtractAndStore(p, msgs, 15, RegexExtractor{})
	require.Len(t, p.Memory, 1)
	assert.Equal(t, float64(15), p.Memory[0].Importance)

	UpdateImportanceFromAccess(p, nil)
	assert.LessOrEqual(t, p.Memory[0].Importance, 10.0)
}

func TestUpdateImportanceBoostsAccessed(t *testing.T) {
	p := testPersona()
	now := time.Now()
	m := addMemoryAt(p, "the dragon is angry", 5, now, now)

	UpdateImportanceFromAccess(p, []string{m.ID})
	assert.Greater(t, m.Importance, 5.0)
	assert.LessOrEqual(t, m.Importance, 7.0, "boost is capped at 2")
}

func TestUpdateImportanceDecaysUnaccessed(t *testing.T) {
	p := testPersona()
	created := time.Now().Add(-20 * 24 * time.Hour)
	accessed := time.Now().Add(-10 * 24 * time.Hour)
	m := addMemoryAt(p, "forgotten lore", 5, created, accessed)

	UpdateImportanceFromAccess(p, nil)
	assert.Less(t, m.Importance, 5.0)
}

func TestUpdateImportanceMonotonicDecay(t *testing.T) {
	p := testPersona()
	accessed := time.Now().Add(-100 * 24 * time.Hour)
	m := addMemoryAt(p, "ancient lore", 6, accessed, accessed)

	before := m.Importance
	UpdateImportanceFromAccess(p, nil)
	assert.LessOrEqual(t, m.Importance, before, "pure decay never raises importance")
}

func TestUpdateImportanceClampsToRange(t *testing.T) {
	p := testPersona()
	accessed := time.Now().Add(-200 * 24 * time.Hour)
	low := addMemoryAt(p, "nearly gone", 0.05, accessed, accessed)
	high := addMemoryAt(p, "overly important", 12, time.Now(), time.Now())

	UpdateImportanceFromAccess(p, []string{high.ID})
	assert.GreaterOrEqual(t, low.Importance, 0.0)
	assert.LessOrEqual(t, high.Importance, 10.0)
}

func TestUpdateImportanceIdempotentWithinThreshold(t *testing.T) {
	p := testPersona()
	now := time.Now()
	m := addMemoryAt(p, "fresh fact", 5, now, now)

	// A just-accessed memory decays by less than the 0.1 threshold, so
	// repeated updates in the same instant change nothing.
	UpdateImportanceFromAccess(p, nil)
	first := m.Importance
	UpdateImportanceFromAccess(p, nil)
	assert.Equal(t, first, m.Importance)
}

func TestFormatForPrompt(t *testing.T) {
	assert.Equal(t, "", FormatForPrompt(nil))

	memories := []*persona.MemoryEntry{
		{Content: "the dragon is angry"},
		{Content: "john owes the barkeep two gold"},
	}
	got := FormatForPrompt(memories)
	assert.Contains(t, got, "**Important Memories:**")
	assert.Contains(t, got, "1. the dragon is angry")
	assert.Contains(t, got, "2. john owes the barkeep two gold")
}

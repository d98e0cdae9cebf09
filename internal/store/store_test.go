//go:build integration

// Package store provides integration tests for SurrealDB persona operations.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tavernworks/innkeep/internal/persona"
)

var testStore *Client
var testContainer testcontainers.Container

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testStore, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testStore.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testStore.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

func testPersona(name string) *persona.Persona {
	p := persona.New(name, "You are a test NPC.", "Context: {context}\n\n{message}")
	p.Type = persona.TypeBarkeep
	p.Personality = persona.Personality{Friendliness: 8, Formality: 4, Verbosity: 6, Humor: 7}
	return p
}

func TestUpsertAndGetPersona(t *testing.T) {
	ctx := context.Background()
	p := testPersona("Upsert Test NPC")

	if err := testStore.UpsertPersona(ctx, p); err != nil {
		t.Fatalf("UpsertPersona failed: %v", err)
	}
	defer testStore.DeletePersona(ctx, p.ID)

	got, err := testStore.GetPersona(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPersona failed: %v", err)
	}

	if got.Name != p.Name {
		t.Errorf("Expected name %q, got %q", p.Name, got.Name)
	}
	if got.Type != persona.TypeBarkeep {
		t.Errorf("Expected type barkeep, got %q", got.Type)
	}
	if got.Personality.Friendliness != 8 {
		t.Errorf("Expected friendliness 8, got %d", got.Personality.Friendliness)
	}
	if got.SchemaVersion != persona.SchemaVersion {
		t.Errorf("Expected schema version %q, got %q", persona.SchemaVersion, got.SchemaVersion)
	}
}

func TestGetPersonaNotFound(t *testing.T) {
	ctx := context.Background()

	_, err := testStore.GetPersona(ctx, "does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetPersonaByName(t *testing.T) {
	ctx := context.Background()
	p := testPersona("Named Test NPC")

	if err := testStore.UpsertPersona(ctx, p); err != nil {
		t.Fatalf("UpsertPersona failed: %v", err)
	}
	defer testStore.DeletePersona(ctx, p.ID)

	got, err := testStore.GetPersonaByName(ctx, "Named Test NPC")
	if err != nil {
		t.Fatalf("GetPersonaByName failed: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("Expected id %q, got %q", p.ID, got.ID)
	}

	if _, err := testStore.GetPersonaByName(ctx, "No Such NPC"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListPersonas(t *testing.T) {
	ctx := context.Background()

	a := testPersona("Alpha NPC")
	b := testPersona("Beta NPC")
	for _, p := range []*persona.Persona{a, b} {
		if err := testStore.UpsertPersona(ctx, p); err != nil {
			t.Fatalf("UpsertPersona failed: %v", err)
		}
		defer testStore.DeletePersona(ctx, p.ID)
	}

	personas, err := testStore.ListPersonas(ctx)
	if err != nil {
		t.Fatalf("ListPersonas failed: %v", err)
	}
	if len(personas) < 2 {
		t.Fatalf("Expected at least 2 personas, got %d", len(personas))
	}

	// Ordered by name.
	var alphaIdx, betaIdx = -1, -1
	for i, p := range personas {
		switch p.Name {
		case "Alpha NPC":
			alphaIdx = i
		case "Beta NPC":
			betaIdx = i
		}
	}
	if alphaIdx == -1 || betaIdx == -1 || alphaIdx > betaIdx {
		t.Errorf("Expected Alpha before Beta, got indices %d and %d", alphaIdx, betaIdx)
	}
}

func TestSaveTurnState(t *testing.T) {
	ctx := context.Background()
	p := testPersona("Turn State NPC")

	if err := testStore.UpsertPersona(ctx, p); err != nil {
		t.Fatalf("UpsertPersona failed: %v", err)
	}
	defer testStore.DeletePersona(ctx, p.ID)

	p.AppendTurn("Good evening", "Welcome in!", "(wipes a mug)")
	p.Memory = append(p.Memory, &persona.MemoryEntry{
		ID: "m1", Content: "the visitor arrived at dusk", Importance: 7,
		CreatedAt: time.Now(), LastAccessed: time.Now(),
	})
	p.Quests = append(p.Quests, persona.Quest{
		ID: "q1", Title: "Clear the Cellar", Status: persona.QuestActive,
		PartySize: 4, Level: 5, CreatedAt: time.Now(),
	})

	if err := testStore.SaveTurnState(ctx, p); err != nil {
		t.Fatalf("SaveTurnState failed: %v", err)
	}

	got, err := testStore.GetPersona(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPersona failed: %v", err)
	}
	if len(got.History) != 2 {
		t.Errorf("Expected 2 history entries, got %d", len(got.History))
	}
	if len(got.Memory) != 1 || got.Memory[0].Content != "the visitor arrived at dusk" {
		t.Errorf("Memory not persisted: %+v", got.Memory)
	}
	if len(got.Quests) != 1 || got.Quests[0].Title != "Clear the Cellar" {
		t.Errorf("Quests not persisted: %+v", got.Quests)
	}
	if got.Memory[0].Importance != 7 {
		t.Errorf("Expected importance 7, got %v", got.Memory[0].Importance)
	}
}

func TestUpdateMemories(t *testing.T) {
	ctx := context.Background()
	p := testPersona("Memory Update NPC")

	if err := testStore.UpsertPersona(ctx, p); err != nil {
		t.Fatalf("UpsertPersona failed: %v", err)
	}
	defer testStore.DeletePersona(ctx, p.ID)

	memories := []*persona.MemoryEntry{
		{ID: "m1", Content: "prefers dark ale", Importance: 6, CreatedAt: time.Now(), LastAccessed: time.Now()},
		{ID: "m2", Content: "owes the house two silver", Importance: 8, CreatedAt: time.Now(), LastAccessed: time.Now()},
	}
	if err := testStore.UpdateMemories(ctx, p.ID, memories); err != nil {
		t.Fatalf("UpdateMemories failed: %v", err)
	}

	got, err := testStore.GetPersona(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPersona failed: %v", err)
	}
	if len(got.Memory) != 2 {
		t.Fatalf("Expected 2 memories, got %d", len(got.Memory))
	}
	if got.Memory[1].Importance != 8 {
		t.Errorf("Expected importance 8, got %v", got.Memory[1].Importance)
	}
	if len(got.History) != 0 {
		t.Errorf("History should be untouched, got %d entries", len(got.History))
	}
}

func TestAppendHistoryAndQuests(t *testing.T) {
	ctx := context.Background()
	p := testPersona("Append Test NPC")

	if err := testStore.UpsertPersona(ctx, p); err != nil {
		t.Fatalf("UpsertPersona failed: %v", err)
	}
	defer testStore.DeletePersona(ctx, p.ID)

	first := []persona.Message{
		{Role: "user", Content: "hello", Timestamp: time.Now()},
		{Role: "assistant", Content: "well met", Timestamp: time.Now()},
	}
	if err := testStore.AppendHistory(ctx, p.ID, first); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	second := []persona.Message{
		{Role: "user", Content: "any work?", Timestamp: time.Now()},
	}
	if err := testStore.AppendHistory(ctx, p.ID, second); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	if err := testStore.AppendQuests(ctx, p.ID, []persona.Quest{
		{ID: "q1", Title: "Rats Again", Status: persona.QuestActive, PartySize: 2, Level: 1, CreatedAt: time.Now()},
	}); err != nil {
		t.Fatalf("AppendQuests failed: %v", err)
	}

	// Empty appends are no-ops, not errors.
	if err := testStore.AppendHistory(ctx, p.ID, nil); err != nil {
		t.Fatalf("AppendHistory with nil failed: %v", err)
	}
	if err := testStore.AppendQuests(ctx, p.ID, nil); err != nil {
		t.Fatalf("AppendQuests with nil failed: %v", err)
	}

	got, err := testStore.GetPersona(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPersona failed: %v", err)
	}
	if len(got.History) != 3 {
		t.Errorf("Expected 3 history entries, got %d", len(got.History))
	}
	if got.History[2].Content != "any work?" {
		t.Errorf("Unexpected last history entry: %+v", got.History[2])
	}
	if len(got.Quests) != 1 || got.Quests[0].Title != "Rats Again" {
		t.Errorf("Quests not appended: %+v", got.Quests)
	}
}

func TestDeletePersona(t *testing.T) {
	ctx := context.Background()
	p := testPersona("Delete Test NPC")

	if err := testStore.UpsertPersona(ctx, p); err != nil {
		t.Fatalf("UpsertPersona failed: %v", err)
	}
	if err := testStore.DeletePersona(ctx, p.ID); err != nil {
		t.Fatalf("DeletePersona failed: %v", err)
	}
	if _, err := testStore.GetPersona(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestCountPersonas(t *testing.T) {
	ctx := context.Background()

	before, err := testStore.CountPersonas(ctx)
	if err != nil {
		t.Fatalf("CountPersonas failed: %v", err)
	}

	p := testPersona("Count Test NPC")
	if err := testStore.UpsertPersona(ctx, p); err != nil {
		t.Fatalf("UpsertPersona failed: %v", err)
	}
	defer testStore.DeletePersona(ctx, p.ID)

	after, err := testStore.CountPersonas(ctx)
	if err != nil {
		t.Fatalf("CountPersonas failed: %v", err)
	}
	if after != before+1 {
		t.Errorf("Expected count %d, got %d", before+1, after)
	}
}

func TestUniqueNameConstraint(t *testing.T) {
	ctx := context.Background()

	a := testPersona("Duplicate Name NPC")
	b := testPersona("Duplicate Name NPC")

	if err := testStore.UpsertPersona(ctx, a); err != nil {
		t.Fatalf("UpsertPersona failed: %v", err)
	}
	defer testStore.DeletePersona(ctx, a.ID)

	err := testStore.UpsertPersona(ctx, b)
	if !errors.Is(err, ErrPersonaExists) {
		t.Errorf("Expected ErrPersonaExists for duplicate name, got %v", err)
	}
}

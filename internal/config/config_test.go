package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Clear everything the loader reads so defaults apply.
	for _, key := range []string{
		"INNKEEP_LLM_PROVIDER", "INNKEEP_LLM_MODEL", "OLLAMA_HOST",
		"SURREALDB_URL", "SURREALDB_NAMESPACE", "SURREALDB_DATABASE",
		"SURREALDB_USER", "SURREALDB_PASS", "SURREALDB_AUTH_LEVEL",
		"INNKEEP_MAX_RETRIES", "INNKEEP_LOG_FILE", "INNKEEP_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, "llama3.1:8b", cfg.LLMModel)
	assert.Equal(t, "ws://localhost:8000/rpc", cfg.SurrealDBURL)
	assert.Equal(t, "innkeep", cfg.SurrealDBNamespace)
	assert.Equal(t, "personas", cfg.SurrealDBDatabase)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INNKEEP_LLM_PROVIDER", "anthropic")
	t.Setenv("INNKEEP_LLM_MODEL", "claude-sonnet-4-5")
	t.Setenv("INNKEEP_MAX_RETRIES", "5")
	t.Setenv("INNKEEP_LOG_LEVEL", "DEBUG")

	cfg := Load()
	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, "claude-sonnet-4-5", cfg.LLMModel)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadInvalidRetriesFallsBack(t *testing.T) {
	t.Setenv("INNKEEP_MAX_RETRIES", "not-a-number")
	cfg := Load()
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), "level %q", tt.in)
	}
}

func TestSetupLoggerWithWritersFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("turn complete", "persona", "Barkeep Bernie")

	assert.Contains(t, stderr.String(), "turn complete")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "turn complete", entry["msg"])
	assert.Equal(t, "Barkeep Bernie", entry["persona"])
}

func TestSetupLoggerWithWritersRespectsLevel(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Info("too quiet")
	assert.Empty(t, stderr.String())
	assert.Empty(t, file.String())
}

package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShow(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = domain.ErrEmbeddingUnavailable

	out, err := execute(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Provider: OpenAI (cloud)")
	assert.Contains(t, out, "API Key: (not set, export OPENAI_API_KEY)")
	assert.Contains(t, out, "[Retrieval]")
	assert.Contains(t, out, "Answer threshold: 0.50")
	assert.Contains(t, out, "Search threshold: 0.30")
	assert.Contains(t, out, "Embed rate: unlimited")
	assert.Contains(t, out, "Warning:")
}

func TestSettingsShow_Valid(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.LLM.APIKey = "sk-1234567890abcdef"

	out, err := execute(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsEmbedding_Flags(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "settings", "embedding",
		"--provider", "openai", "--model", "text-embedding-3-large", "--api-key", "sk-test")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, ts.settings.embedProvider)
	assert.Equal(t, "text-embedding-3-large", ts.settings.embedModel)
	assert.Equal(t, "sk-test", ts.settings.embedAPIKey)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsEmbedding_RejectsAnthropic(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "settings", "embedding", "--provider", "anthropic")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to configure embedding provider")
}

func TestSettingsEmbedding_Interactive(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	// Ollama, default model, default base URL.
	out, err := execute(t, "1\n\n\n", "settings", "embedding")

	require.NoError(t, err)
	assert.Contains(t, out, "Select Embedding Provider")
	assert.Equal(t, domain.AIProviderOllama, ts.settings.embedProvider)
	assert.Equal(t, "nomic-embed-text", ts.settings.embedModel)
}

func TestSettingsLLM_Interactive(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "1\nllama3.2\nhttp://gpu:11434\n", "settings", "llm")

	require.NoError(t, err)
	assert.Contains(t, out, "Select LLM Provider")
	assert.Equal(t, domain.AIProviderOllama, ts.settings.llmProvider)
	assert.Equal(t, "http://gpu:11434", ts.settings.llmBaseURL)
}

func TestSettingsLLM_ValidationFails(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.pingErr = errors.New("connection refused")

	out, err := execute(t, "", "settings", "llm", "--provider", "ollama")

	require.Error(t, err)
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, err.Error(), "LLM configuration validation failed")
}

func TestSettingsIngest(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "", "settings", "ingest", "--concurrency", "8", "--rate", "2.5")

	require.NoError(t, err)
	assert.Equal(t, 8, ts.settings.settings.Ingest.EmbedConcurrency)
	assert.InDelta(t, 2.5, ts.settings.settings.Ingest.EmbedRatePerSecond, 1e-9)
	assert.Equal(t, domain.DefaultBulkChunkSize, ts.settings.settings.Ingest.UploadChunkSize)
	assert.Contains(t, out, "Ingest settings saved")
}

func TestSettingsIngest_Invalid(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "settings", "ingest", "--upload-chunk-size", "0")

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSettingsRetrieval(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "settings", "retrieval", "--top-k", "5", "--search-threshold", "0")

	require.NoError(t, err)
	assert.Equal(t, 5, ts.settings.settings.Retrieval.TopK)
	assert.InDelta(t, 0.0, ts.settings.settings.Retrieval.SearchThreshold, 1e-9)
	assert.InDelta(t, domain.DefaultAnswerThreshold, ts.settings.settings.Retrieval.AnswerThreshold, 1e-9)
}

func TestSettingsRetrieval_ThresholdOutOfRange(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "settings", "retrieval", "--answer-threshold", "1.5")

	require.ErrorIs(t, err, domain.ErrValidation)
}

package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// APIKeyEnv returns the environment variable consulted when no API key is
// stored in the configuration file.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Chunk sizes used by the ingestion paths.
const (
	// DefaultBulkChunkSize is used for uploads and bulk directory imports.
	DefaultBulkChunkSize = 1500

	// DefaultAdHocChunkSize is used when adding a single text ad hoc.
	DefaultAdHocChunkSize = 800
)

// IngestSettings controls how documents are chunked and embedded.
type IngestSettings struct {
	// UploadChunkSize is the maximum chunk length for uploads and imports.
	UploadChunkSize int

	// AdHocChunkSize is the maximum chunk length for ad-hoc text.
	AdHocChunkSize int

	// EmbedConcurrency bounds concurrent embedding calls per document.
	EmbedConcurrency int

	// EmbedRatePerSecond limits embedding calls per second (0 = unlimited).
	EmbedRatePerSecond float64
}

// Validate checks the ingestion settings.
func (s IngestSettings) Validate() error {
	if s.UploadChunkSize <= 0 || s.AdHocChunkSize <= 0 {
		return fmt.Errorf("%w: chunk sizes must be positive", ErrValidation)
	}
	if s.EmbedConcurrency <= 0 {
		return fmt.Errorf("%w: embed concurrency must be positive", ErrValidation)
	}
	if s.EmbedRatePerSecond < 0 {
		return fmt.Errorf("%w: embed rate must not be negative", ErrValidation)
	}
	return nil
}

// Retrieval thresholds observed at the two call sites. They are defaults for
// caller-supplied parameters, never global constants of the engine.
const (
	// DefaultAnswerThreshold is the minimum score for passages grounding an answer.
	DefaultAnswerThreshold = 0.5

	// DefaultSearchThreshold is the minimum score for general retrieval.
	DefaultSearchThreshold = 0.3

	// DefaultTopK is the number of passages used to ground an answer.
	DefaultTopK = 5
)

// RetrievalSettings controls ranking parameters.
type RetrievalSettings struct {
	// TopK is the maximum number of passages returned.
	TopK int

	// AnswerThreshold is the minimum score when answering questions.
	AnswerThreshold float64

	// SearchThreshold is the minimum score for plain retrieval.
	SearchThreshold float64
}

// Validate checks the retrieval settings.
func (s RetrievalSettings) Validate() error {
	if s.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrValidation)
	}
	if err := ValidateThreshold(s.AnswerThreshold); err != nil {
		return err
	}
	return ValidateThreshold(s.SearchThreshold)
}

// ValidateThreshold checks that a similarity threshold lies in [-1, 1].
func ValidateThreshold(t float64) error {
	if t < -1 || t > 1 || t != t {
		return fmt.Errorf("%w: threshold %v outside [-1, 1]", ErrValidation, t)
	}
	return nil
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Ingest holds chunking and embedding settings.
	Ingest IngestSettings

	// Retrieval holds ranking settings.
	Retrieval RetrievalSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Providers default to OpenAI; API keys come from the config file or the
// provider's environment variable.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Ingest: IngestSettings{
			UploadChunkSize:  DefaultBulkChunkSize,
			AdHocChunkSize:   DefaultAdHocChunkSize,
			EmbedConcurrency: 4,
		},
		Retrieval: RetrievalSettings{
			TopK:            DefaultTopK,
			AnswerThreshold: DefaultAnswerThreshold,
			SearchThreshold: DefaultSearchThreshold,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

package services

import (
	"fmt"
	"os"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyUploadChunkSize  = "ingest.upload_chunk_size"
	keyAdHocChunkSize   = "ingest.adhoc_chunk_size"
	keyEmbedConcurrency = "ingest.embed_concurrency"
	keyEmbedRate        = "ingest.embed_rate_per_second"
	keyTopK             = "retrieval.top_k"
	keyAnswerThreshold  = "retrieval.answer_threshold"
	keySearchThreshold  = "retrieval.search_threshold"
)

// defaultOllamaURL is used when a local provider has no base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) string
}

// NewSettingsService creates a new settings service.
// API keys missing from the config store are read from the provider's
// environment variable.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup used for API key fallback.
func (s *SettingsService) SetEnvLookup(fn func(string) string) {
	if fn == nil {
		fn = func(string) string { return "" }
	}
	s.lookupEnv = fn
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
		},
		Ingest: domain.IngestSettings{
			UploadChunkSize:    s.getInt(keyUploadChunkSize, defaults.Ingest.UploadChunkSize),
			AdHocChunkSize:     s.getInt(keyAdHocChunkSize, defaults.Ingest.AdHocChunkSize),
			EmbedConcurrency:   s.getInt(keyEmbedConcurrency, defaults.Ingest.EmbedConcurrency),
			EmbedRatePerSecond: s.getFloat(keyEmbedRate, defaults.Ingest.EmbedRatePerSecond),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:            s.getInt(keyTopK, defaults.Retrieval.TopK),
			AnswerThreshold: s.getFloat(keyAnswerThreshold, defaults.Retrieval.AnswerThreshold),
			SearchThreshold: s.getFloat(keySearchThreshold, defaults.Retrieval.SearchThreshold),
		},
	}
	settings.Embedding.APIKey = s.getAPIKey(keyEmbedAPIKey, settings.Embedding.Provider)
	settings.LLM.APIKey = s.getAPIKey(keyLLMAPIKey, settings.LLM.Provider)

	return settings, nil
}

// Save persists application settings.
// API keys are only written when set, so keys from the environment are
// never copied into the config file by Get followed by Save.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyUploadChunkSize, settings.Ingest.UploadChunkSize},
		{keyAdHocChunkSize, settings.Ingest.AdHocChunkSize},
		{keyEmbedConcurrency, settings.Ingest.EmbedConcurrency},
		{keyEmbedRate, settings.Ingest.EmbedRatePerSecond},
		{keyTopK, settings.Retrieval.TopK},
		{keyAnswerThreshold, settings.Retrieval.AnswerThreshold},
		{keySearchThreshold, settings.Retrieval.SearchThreshold},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if err := s.saveAPIKey(keyEmbedAPIKey, settings.Embedding.Provider, settings.Embedding.APIKey); err != nil {
		return err
	}
	return s.saveAPIKey(keyLLMAPIKey, settings.LLM.Provider, settings.LLM.APIKey)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrValidation, provider)
	}
	if !provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrValidation, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.lookupEnv(provider.APIKeyEnv()) == "" {
		return fmt.Errorf("%w: API key required for %s (or set %s)", domain.ErrValidation, provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, baseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrValidation, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" && s.lookupEnv(provider.APIKeyEnv()) == "" {
		return fmt.Errorf("%w: API key required for %s (or set %s)", domain.ErrValidation, provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, baseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetIngest updates chunking and embedding settings.
func (s *SettingsService) SetIngest(ingest domain.IngestSettings) error {
	if err := ingest.Validate(); err != nil {
		return err
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Ingest = ingest
	return s.Save(settings)
}

// SetRetrieval updates ranking settings.
func (s *SettingsService) SetRetrieval(retrieval domain.RetrievalSettings) error {
	if err := retrieval.Validate(); err != nil {
		return err
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Retrieval = retrieval
	return s.Save(settings)
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Ingest.Validate(); err != nil {
		return fmt.Errorf("ingest settings: %w", err)
	}
	if err := settings.Retrieval.Validate(); err != nil {
		return fmt.Errorf("retrieval settings: %w", err)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not configured", domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %s is not configured", domain.ErrLLMUnavailable, settings.LLM.Provider)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat treats a present key as authoritative, so an explicit 0 threshold
// is kept rather than replaced by the default.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getAPIKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	if env := provider.APIKeyEnv(); env != "" {
		return s.lookupEnv(env)
	}
	return ""
}

// saveAPIKey stores the key unless it is empty or only mirrors the
// environment variable.
func (s *SettingsService) saveAPIKey(key string, provider domain.AIProvider, apiKey string) error {
	if apiKey == "" {
		return nil
	}
	if env := provider.APIKeyEnv(); env != "" && s.configStore.GetString(key) == "" && s.lookupEnv(env) == apiKey {
		return nil
	}
	if err := s.configStore.Set(key, apiKey); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func modelOrDefault(model, defaultModel string) string {
	if model != "" {
		return model
	}
	return defaultModel
}

// baseURLFor returns the base URL to store. Local providers get the Ollama
// default; cloud providers keep an explicit override only.
func baseURLFor(provider domain.AIProvider, baseURL string) string {
	if baseURL != "" {
		return baseURL
	}
	if provider.IsLocal() {
		return defaultOllamaURL
	}
	return ""
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Provider flags shared by the embedding and llm subcommands.
var (
	providerFlag string
	modelFlag    string
	baseURLFlag  string
	apiKeyFlag   string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking and retrieval options.

Settings are stored in config.toml inside the config directory. API keys may
instead come from OPENAI_API_KEY or ANTHROPIC_API_KEY (a .env file is read too).`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used to index and retrieve passages.

Without --provider the command prompts interactively. Changing the embedding
model makes previously stored chunks incomparable; delete and re-upload them.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long: `Configure the language model that writes grounded answers.

Without --provider the command prompts interactively.`,
	RunE: runSettingsLLM,
}

var settingsIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Configure chunking and embedding throughput",
	RunE:  runSettingsIngest,
}

var settingsRetrievalCmd = &cobra.Command{
	Use:   "retrieval",
	Short: "Configure ranking thresholds",
	RunE:  runSettingsRetrieval,
}

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVar(&providerFlag, "provider", "", "provider name (ollama, openai, anthropic)")
		c.Flags().StringVar(&modelFlag, "model", "", "model name (default: provider default)")
		c.Flags().StringVar(&baseURLFlag, "base-url", "", "API base URL override")
		c.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key (default: from environment)")
	}

	settingsIngestCmd.Flags().Int("upload-chunk-size", domain.DefaultBulkChunkSize, "maximum chunk length for upload and import")
	settingsIngestCmd.Flags().Int("adhoc-chunk-size", domain.DefaultAdHocChunkSize, "maximum chunk length for add")
	settingsIngestCmd.Flags().Int("concurrency", 4, "concurrent embedding calls per document")
	settingsIngestCmd.Flags().Float64("rate", 0, "embedding calls per second (0 = unlimited)")

	settingsRetrievalCmd.Flags().Int("top-k", domain.DefaultTopK, "passages used to ground an answer")
	settingsRetrievalCmd.Flags().Float64("answer-threshold", domain.DefaultAnswerThreshold, "minimum score for answer passages")
	settingsRetrievalCmd.Flags().Float64("search-threshold", domain.DefaultSearchThreshold, "minimum score for search results")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsIngestCmd)
	settingsCmd.AddCommand(settingsRetrievalCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(headingStyle.Render("Current Settings"))
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Upload chunk size: %d\n", settings.Ingest.UploadChunkSize)
	cmd.Printf("  Ad-hoc chunk size: %d\n", settings.Ingest.AdHocChunkSize)
	cmd.Printf("  Embed concurrency: %d\n", settings.Ingest.EmbedConcurrency)
	if settings.Ingest.EmbedRatePerSecond > 0 {
		cmd.Printf("  Embed rate: %.2f/s\n", settings.Ingest.EmbedRatePerSecond)
	} else {
		cmd.Println("  Embed rate: unlimited")
	}
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Answer threshold: %.2f\n", settings.Retrieval.AnswerThreshold)
	cmd.Printf("  Search threshold: %.2f\n", settings.Retrieval.SearchThreshold)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("%s %v\n", warnStyle.Render("Warning:"), err)
	} else {
		cmd.Println(successStyle.Render("Configuration is valid."))
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set, export %s)\n", provider.APIKeyEnv())
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

// providerChoice is the outcome of the provider prompts or flags.
type providerChoice struct {
	provider domain.AIProvider
	model    string
	baseURL  string
	apiKey   string
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	choice, err := chooseProvider(cmd, "Embedding", domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(choice.provider, choice.model, choice.baseURL, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Println(errorStyle.Render("FAILED"))
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println(successStyle.Render("OK"))

	cmd.Printf("Embedding provider configured: %s\n", choice.provider.Description())
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	choice, err := chooseProvider(cmd, "LLM", domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(choice.provider, choice.model, choice.baseURL, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Println(errorStyle.Render("FAILED"))
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println(successStyle.Render("OK"))

	cmd.Printf("LLM provider configured: %s\n", choice.provider.Description())
	return nil
}

// chooseProvider uses the flags when --provider is set and prompts otherwise.
func chooseProvider(
	cmd *cobra.Command, kind string, providers []domain.AIProvider, defaults map[domain.AIProvider]string,
) (providerChoice, error) {
	if cmd.Flags().Changed("provider") {
		return providerChoice{
			provider: domain.AIProvider(providerFlag),
			model:    modelFlag,
			baseURL:  baseURLFlag,
			apiKey:   apiKeyFlag,
		}, nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Printf("Select %s Provider\n", kind)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	choice := providerChoice{provider: providers[idx-1]}

	defaultModel := defaults[choice.provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	choice.model = readLine(reader)
	if choice.model == "" {
		choice.model = defaultModel
	}

	if choice.provider.IsLocal() {
		cmd.Print("Enter base URL [http://localhost:11434]: ")
		choice.baseURL = readLine(reader)
	}

	if choice.provider.RequiresAPIKey() {
		cmd.Printf("Enter API key (blank to use %s): ", choice.provider.APIKeyEnv())
		choice.apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
	}

	return choice, nil
}

func runSettingsIngest(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	ingest := settings.Ingest
	flags := cmd.Flags()
	if flags.Changed("upload-chunk-size") {
		ingest.UploadChunkSize, _ = flags.GetInt("upload-chunk-size") //nolint:errcheck // flag is registered
	}
	if flags.Changed("adhoc-chunk-size") {
		ingest.AdHocChunkSize, _ = flags.GetInt("adhoc-chunk-size") //nolint:errcheck // flag is registered
	}
	if flags.Changed("concurrency") {
		ingest.EmbedConcurrency, _ = flags.GetInt("concurrency") //nolint:errcheck // flag is registered
	}
	if flags.Changed("rate") {
		ingest.EmbedRatePerSecond, _ = flags.GetFloat64("rate") //nolint:errcheck // flag is registered
	}

	if err := settingsService.SetIngest(ingest); err != nil {
		return fmt.Errorf("failed to update ingest settings: %w", err)
	}

	cmd.Printf("Ingest settings saved: chunks %d/%d, concurrency %d\n",
		ingest.UploadChunkSize, ingest.AdHocChunkSize, ingest.EmbedConcurrency)
	return nil
}

func runSettingsRetrieval(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	retrieval := settings.Retrieval
	flags := cmd.Flags()
	if flags.Changed("top-k") {
		retrieval.TopK, _ = flags.GetInt("top-k") //nolint:errcheck // flag is registered
	}
	if flags.Changed("answer-threshold") {
		retrieval.AnswerThreshold, _ = flags.GetFloat64("answer-threshold") //nolint:errcheck // flag is registered
	}
	if flags.Changed("search-threshold") {
		retrieval.SearchThreshold, _ = flags.GetFloat64("search-threshold") //nolint:errcheck // flag is registered
	}

	if err := settingsService.SetRetrieval(retrieval); err != nil {
		return fmt.Errorf("failed to update retrieval settings: %w", err)
	}

	cmd.Printf("Retrieval settings saved: top %d, answer >= %.2f, search >= %.2f\n",
		retrieval.TopK, retrieval.AnswerThreshold, retrieval.SearchThreshold)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

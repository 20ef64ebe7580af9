package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var (
	_ driving.IngestService    = (*mockIngestService)(nil)
	_ driving.RetrievalService = (*mockRetrievalService)(nil)
	_ driving.AskService       = (*mockAskService)(nil)
	_ driving.DocumentService  = (*mockDocumentService)(nil)
	_ driving.SettingsService  = (*mockSettingsService)(nil)
)

// mockIngestService records what it was asked to ingest.
type mockIngestService struct {
	err       error
	files     []domain.SourceFile
	opts      domain.IngestOptions
	title     string
	text      string
	imported  string
	watchSeen bool
}

func (m *mockIngestService) Upload(
	_ context.Context, files []domain.SourceFile, opts domain.IngestOptions,
) (*domain.UploadResult, error) {
	m.files = files
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	result := &domain.UploadResult{}
	for _, f := range files {
		if !f.IsSupported() {
			result.Record(domain.FileOutcome{Name: f.Name, Status: domain.FileSkipped, Error: "unsupported file type"})
			continue
		}
		result.Record(domain.FileOutcome{Name: f.Name, Status: domain.FileIngested, Chunks: 1})
	}
	return result, nil
}

func (m *mockIngestService) Import(
	ctx context.Context, source driven.FileSource, opts domain.IngestOptions,
) (*domain.UploadResult, error) {
	m.imported = source.Root()
	if m.err != nil {
		return nil, m.err
	}
	files, err := source.Files(ctx)
	if err != nil {
		return nil, err
	}
	return m.Upload(ctx, files, opts)
}

func (m *mockIngestService) AddText(_ context.Context, title, text string, opts domain.IngestOptions) (int, error) {
	m.title = title
	m.text = text
	m.opts = opts
	if m.err != nil {
		return 0, m.err
	}
	return 2, nil
}

func (m *mockIngestService) Watch(_ context.Context, _ driven.FileSource, _ func(domain.FileOutcome)) error {
	m.watchSeen = true
	return nil
}

// mockRetrievalService returns fixed hits.
type mockRetrievalService struct {
	hits      []domain.ScoredChunk
	err       error
	query     string
	k         int
	threshold float64
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context, question string, k int, threshold float64,
) ([]domain.ScoredChunk, error) {
	m.query = question
	m.k = k
	m.threshold = threshold
	return m.hits, m.err
}

// mockAskService returns a fixed answer.
type mockAskService struct {
	answer   *domain.Answer
	err      error
	question string
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

// mockDocumentService serves fixed summaries.
type mockDocumentService struct {
	summaries []domain.TitleSummary
	stats     domain.StoreStats
	deleted   int
	err       error
	lastTitle string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.TitleSummary, error) {
	return m.summaries, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, title string) (int, error) {
	m.lastTitle = title
	return m.deleted, m.err
}

func (m *mockDocumentService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error

	embedProvider domain.AIProvider
	embedModel    string
	embedAPIKey   string
	llmProvider   domain.AIProvider
	llmBaseURL    string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, _, apiKey string) error {
	if !provider.SupportsEmbeddings() {
		return errors.New("provider does not support embeddings")
	}
	m.embedProvider = provider
	m.embedModel = model
	m.embedAPIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, _, baseURL, _ string) error {
	m.llmProvider = provider
	m.llmBaseURL = baseURL
	return nil
}

func (m *mockSettingsService) SetIngest(settings domain.IngestSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	m.settings.Ingest = settings
	return nil
}

func (m *mockSettingsService) SetRetrieval(settings domain.RetrievalSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	m.settings.Retrieval = settings
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

// testServices exposes the mocks installed by setupTestServices.
type testServices struct {
	ingest    *mockIngestService
	retrieval *mockRetrievalService
	ask       *mockAskService
	documents *mockDocumentService
	settings  *mockSettingsService
}

// setupTestServices installs mocks and returns a cleanup func restoring the
// previous services.
func setupTestServices() (*testServices, func()) {
	oldIngest, oldRetrieval, oldAsk := ingestService, retrievalService, askService
	oldDocuments, oldSettings, oldRetrievalSettings := documentService, settingsService, retrievalSettings
	oldBuilder := builder

	ts := &testServices{
		ingest: &mockIngestService{},
		retrieval: &mockRetrievalService{hits: []domain.ScoredChunk{
			{Chunk: domain.DocumentChunk{Title: "france.txt", ChunkIndex: 0, Content: "Paris is the capital of France."}, Score: 0.87},
		}},
		ask: &mockAskService{answer: &domain.Answer{
			Message: "Paris is the capital of France.",
			Sources: []domain.SourceRef{{Title: "france.txt", Snippet: "Paris is the capital of France.", Score: 0.87}},
		}},
		documents: &mockDocumentService{
			summaries: []domain.TitleSummary{{Title: "france.txt", ChunkCount: 3}},
			stats:     domain.StoreStats{ChunkCount: 3, TitleCount: 1, Dimensions: 1536},
		},
		settings: newMockSettingsService(),
	}

	ingestService = ts.ingest
	retrievalService = ts.retrieval
	askService = ts.ask
	documentService = ts.documents
	settingsService = ts.settings
	retrievalSettings = domain.DefaultAppSettings().Retrieval
	builder = nil

	return ts, func() {
		ingestService, retrievalService, askService = oldIngest, oldRetrieval, oldAsk
		documentService, settingsService, retrievalSettings = oldDocuments, oldSettings, oldRetrievalSettings
		builder = oldBuilder
	}
}

// resetFlags restores every flag to its default so tests do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and stdin, returning its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	var in io.Reader = strings.NewReader(stdin)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// captureErr collects what fn writes to the root command's error stream.
func captureErr(t *testing.T, fn func()) string {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetErr(buf)
	defer rootCmd.SetErr(nil)
	fn()
	return buf.String()
}

package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Retrieval == nil {
		ports.Retrieval = &mockRetrievalService{}
	}
	if ports.Document == nil {
		ports.Document = &mockDocumentService{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns grounded answer", func(t *testing.T) {
		ask := &mockAskService{answer: &domain.Answer{
			Message: "Paris is the capital of France.",
			Sources: []domain.SourceRef{{Title: "france.txt", Snippet: "Paris is...", Score: 0.91}},
		}}
		server := newTestServer(t, &Ports{Ask: ask})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "What is the capital of France?"})

		require.NoError(t, err)
		assert.Equal(t, "What is the capital of France?", ask.question)
		assert.Equal(t, "Paris is the capital of France.", output.Message)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "france.txt", output.Sources[0].Title)
	})

	t.Run("refusal has empty sources", func(t *testing.T) {
		ask := &mockAskService{answer: &domain.Answer{Message: domain.NoRelevantInformation}}
		server := newTestServer(t, &Ports{Ask: ask})

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "Anything?"})

		require.NoError(t, err)
		assert.Equal(t, domain.NoRelevantInformation, output.Message)
		assert.NotNil(t, output.Sources)
		assert.Empty(t, output.Sources)
	})

	t.Run("no ask service", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Question: "q"})

		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, err.Error(), "service error")
	})

	t.Run("validation errors are client errors", func(t *testing.T) {
		ask := &mockAskService{err: fmt.Errorf("%w: question is required", domain.ErrValidation)}
		server := newTestServer(t, &Ports{Ask: ask})

		_, _, err := server.handleAsk(ctx, nil, AskInput{})

		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "client error")
	})
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		retrieval := &mockRetrievalService{hits: []domain.ScoredChunk{
			{Chunk: domain.DocumentChunk{Title: "france.txt", ChunkIndex: 2, Content: "Paris is the capital."}, Score: 0.95},
		}}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "capital", Limit: 3})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "france.txt", output.Results[0].Title)
		assert.Equal(t, 2, output.Results[0].ChunkIndex)
		assert.InDelta(t, 0.95, output.Results[0].Score, 1e-9)
		assert.Equal(t, "Paris is the capital.", output.Results[0].Content)
		assert.Equal(t, 3, retrieval.k)
	})

	t.Run("defaults come from settings", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server := newTestServer(t, &Ports{
			Retrieval: retrieval,
			Search:    domain.RetrievalSettings{SearchThreshold: 0.3},
		})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "capital"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
		assert.Equal(t, defaultSearchLimit, retrieval.k)
		assert.InDelta(t, 0.3, retrieval.threshold, 1e-9)
	})

	t.Run("explicit zero threshold is kept", func(t *testing.T) {
		retrieval := &mockRetrievalService{}
		server := newTestServer(t, &Ports{
			Retrieval: retrieval,
			Search:    domain.RetrievalSettings{SearchThreshold: 0.3},
		})
		zero := 0.0

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "capital", Threshold: &zero})

		require.NoError(t, err)
		assert.InDelta(t, 0.0, retrieval.threshold, 1e-9)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: fmt.Errorf("%w: timeout", domain.ErrEmbeddingService)}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "capital"})

		assert.ErrorIs(t, err, domain.ErrEmbeddingService)
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents", func(t *testing.T) {
		docs := &mockDocumentService{summaries: []domain.TitleSummary{
			{Title: "a.txt", ChunkCount: 2},
			{Title: "b.txt", ChunkCount: 1},
		}}
		server := newTestServer(t, &Ports{Document: docs})

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "a.txt", output.Documents[0].Title)
	})

	t.Run("empty store gives empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		assert.NotNil(t, output.Documents)
		assert.Equal(t, 0, output.Count)
	})

	t.Run("store failure", func(t *testing.T) {
		docs := &mockDocumentService{err: fmt.Errorf("%w: disk full", domain.ErrStorage)}
		server := newTestServer(t, &Ports{Document: docs})

		_, _, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		assert.ErrorIs(t, err, domain.ErrStorage)
	})
}

func TestServer_handleDeleteDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("reports deleted count", func(t *testing.T) {
		docs := &mockDocumentService{deleted: 3}
		server := newTestServer(t, &Ports{Document: docs})

		_, output, err := server.handleDeleteDocument(ctx, nil, DeleteDocumentInput{Title: "a.txt"})

		require.NoError(t, err)
		assert.Equal(t, "a.txt", docs.lastTitle)
		assert.Equal(t, DeleteDocumentOutput{Title: "a.txt", Deleted: 3}, output)
	})

	t.Run("validation error", func(t *testing.T) {
		docs := &mockDocumentService{err: fmt.Errorf("%w: title is required", domain.ErrValidation)}
		server := newTestServer(t, &Ports{Document: docs})

		_, _, err := server.handleDeleteDocument(ctx, nil, DeleteDocumentInput{})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

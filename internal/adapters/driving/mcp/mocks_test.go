package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var (
	_ driving.AskService       = (*mockAskService)(nil)
	_ driving.RetrievalService = (*mockRetrievalService)(nil)
	_ driving.DocumentService  = (*mockDocumentService)(nil)
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer   *domain.Answer
	err      error
	question string
}

func (m *mockAskService) Ask(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	hits []domain.ScoredChunk
	err  error

	k         int
	threshold float64
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	_ string,
	k int,
	threshold float64,
) ([]domain.ScoredChunk, error) {
	m.k = k
	m.threshold = threshold
	return m.hits, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	summaries []domain.TitleSummary
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
	return domain.StoreStats{TitleCount: len(m.summaries)}, m.err
}

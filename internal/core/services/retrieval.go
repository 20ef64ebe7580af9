package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/similarity"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService scores every stored chunk against the question embedding.
// It scans the full store on each query; there is no index.
type RetrievalService struct {
	embedder *Embedder
	store    driven.ChunkStore
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(embedder *Embedder, store driven.ChunkStore) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		store:    store,
	}
}

// Retrieve returns at most k chunks with score >= threshold, best first.
// Chunks with equal scores keep store order.
func (s *RetrievalService) Retrieve(
	ctx context.Context, question string, k int, threshold float64,
) ([]domain.ScoredChunk, error) {
	logger.Section("Retrieval")
	logger.Debug("Question: %q, k=%d, threshold=%.2f", question, k, threshold)

	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrValidation)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrValidation, k)
	}
	if err := domain.ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	query, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	logger.Debug("Question embedding: %d dimensions", len(query))

	chunks, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	logger.Debug("Scoring %d stored chunks", len(chunks))

	results := make([]domain.ScoredChunk, 0, min(k, len(chunks)))
	for _, chunk := range chunks {
		score, err := similarity.Cosine(query, chunk.Embedding)
		if err != nil {
			logger.Warn("Scoring chunk %s of %q failed: %v", chunk.ID, chunk.Title, err)
			return nil, fmt.Errorf("score chunk %s: %w", chunk.ID, err)
		}
		if score >= threshold {
			results = append(results, domain.ScoredChunk{Chunk: chunk, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}

	logger.Info("Retrieved %d chunks above %.2f", len(results), threshold)
	return results, nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// AskService answers questions: retrieve, then synthesise from what was found.
type AskService struct {
	retrieval   driving.RetrievalService
	synthesizer *Synthesizer
	settings    domain.RetrievalSettings
}

// NewAskService creates a new ask service.
// Settings supply TopK and AnswerThreshold for every question.
func NewAskService(
	retrieval driving.RetrievalService, synthesizer *Synthesizer, settings domain.RetrievalSettings,
) *AskService {
	return &AskService{
		retrieval:   retrieval,
		synthesizer: synthesizer,
		settings:    settings,
	}
}

// Ask answers the question from the stored documents.
func (s *AskService) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	logger.Section("Ask")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrValidation)
	}
	if !s.synthesizer.Available() {
		return nil, domain.ErrLLMUnavailable
	}

	hits, err := s.retrieval.Retrieve(ctx, question, s.settings.TopK, s.settings.AnswerThreshold)
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		logger.Info("No passages above %.2f, refusing", s.settings.AnswerThreshold)
		return &domain.Answer{
			Message: domain.NoRelevantInformation,
			Sources: []domain.SourceRef{},
		}, nil
	}

	grounding := make([]domain.GroundingChunk, len(hits))
	sources := make([]domain.SourceRef, len(hits))
	for i, hit := range hits {
		grounding[i] = domain.GroundingChunk{Title: hit.Chunk.Title, Content: hit.Chunk.Content}
		sources[i] = domain.SourceRef{
			Title:   hit.Chunk.Title,
			Snippet: domain.Snippet(hit.Chunk.Content),
			Score:   hit.Score,
		}
	}

	message, err := s.synthesizer.Synthesize(ctx, question, grounding)
	if err != nil {
		return nil, fmt.Errorf("synthesise answer: %w", err)
	}

	logger.Info("Answered from %d passages", len(sources))
	return &domain.Answer{Message: message, Sources: sources}, nil
}

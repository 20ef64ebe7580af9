package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// RetrievalService ranks stored chunks against a question.
type RetrievalService interface {
	// Retrieve returns at most k chunks scoring at least threshold, best first.
	// An empty store or no match yields an empty slice, not an error.
	Retrieve(ctx context.Context, question string, k int, threshold float64) ([]domain.ScoredChunk, error)
}

// AskService answers questions from the stored documents.
type AskService interface {
	// Ask answers the question, citing the passages that grounded it.
	// Without relevant passages the answer is domain.NoRelevantInformation.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}

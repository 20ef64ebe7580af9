package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ChunkStore persists embedded document chunks.
// All failures wrap domain.ErrStorage, except dimension violations which
// wrap domain.ErrDimensionMismatch.
type ChunkStore interface {
	// InsertBatch stores chunks atomically and returns how many were stored.
	// IDs and creation times are assigned by the store. Every embedding must
	// match the dimension of the chunks already stored and of each other;
	// otherwise nothing is stored.
	InsertBatch(ctx context.Context, chunks []domain.DocumentChunk) (int, error)

	// ListAll returns every stored chunk in insertion order.
	// Retrieval scans this snapshot on every query.
	ListAll(ctx context.Context) ([]domain.DocumentChunk, error)

	// ListTitles returns one summary per title, ordered by title.
	ListTitles(ctx context.Context) ([]domain.TitleSummary, error)

	// DeleteByTitle removes every chunk with exactly this title.
	// Returns the number removed; an unknown title removes 0.
	DeleteByTitle(ctx context.Context, title string) (int, error)

	// Stats describes the store contents.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}

// ChangeDetector is implemented by stores whose contents can change outside
// the current process. Caches compare versions before reusing a snapshot.
type ChangeDetector interface {
	// Version returns a token that differs whenever chunks were inserted
	// or deleted since the last call, by any writer.
	Version(ctx context.Context) (string, error)
}

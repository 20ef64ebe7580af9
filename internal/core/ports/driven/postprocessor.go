package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Chunker splits a decoded document into ordered passages.
type Chunker interface {
	// Name returns the processor name for logging.
	Name() string

	// MaxChars returns the configured chunk length limit in characters.
	MaxChars() int

	// Process returns the document's chunks with Title and ChunkIndex set.
	// Embedding and ID are left empty. Empty content yields no chunks.
	Process(ctx context.Context, doc *domain.Document) ([]domain.DocumentChunk, error)
}

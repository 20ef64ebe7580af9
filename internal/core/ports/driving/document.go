package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentService manages stored documents by title.
type DocumentService interface {
	// List returns one summary per title, ordered by title.
	List(ctx context.Context) ([]domain.TitleSummary, error)

	// Delete removes every chunk of the title and returns how many were removed.
	Delete(ctx context.Context, title string) (int, error)

	// Stats describes the store contents.
	Stats(ctx context.Context) (domain.StoreStats, error)
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages stored documents by title.
type DocumentService struct {
	store driven.ChunkStore
	locks *TitleLocker
}

// NewDocumentService creates a new document service.
// The locker should be shared with the ingest service so deletes and
// inserts of the same title serialise.
func NewDocumentService(store driven.ChunkStore, locks *TitleLocker) *DocumentService {
	if locks == nil {
		locks = NewTitleLocker()
	}
	return &DocumentService{
		store: store,
		locks: locks,
	}
}

// List returns one summary per title, ordered by title.
func (s *DocumentService) List(ctx context.Context) ([]domain.TitleSummary, error) {
	titles, err := s.store.ListTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	if titles == nil {
		titles = []domain.TitleSummary{}
	}
	return titles, nil
}

// Delete removes every chunk stored under the exact title.
// An unknown title removes nothing and is not an error.
func (s *DocumentService) Delete(ctx context.Context, title string) (int, error) {
	if strings.TrimSpace(title) == "" {
		return 0, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	unlock := s.locks.Lock(title)
	defer unlock()

	n, err := s.store.DeleteByTitle(ctx, title)
	if err != nil {
		return 0, fmt.Errorf("delete %q: %w", title, err)
	}

	logger.Info("Deleted %d chunks of %q", n, title)
	return n, nil
}

// Stats describes the store contents.
func (s *DocumentService) Stats(ctx context.Context) (domain.StoreStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("store stats: %w", err)
	}
	return stats, nil
}

package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interfaces.
var (
	_ driven.ChunkStore     = (*ChunkStore)(nil)
	_ driven.ChangeDetector = (*ChunkStore)(nil)
)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Chunks are kept in insertion order and copied on the way in and out.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks  []domain.DocumentChunk
	dims    int
	version uint64
	now     func() time.Time
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{now: time.Now}
}

// InsertBatch stores chunks atomically.
func (s *ChunkStore) InsertBatch(ctx context.Context, chunks []domain.DocumentChunk) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims, err := domain.BatchDimensions(chunks, s.dims)
	if err != nil {
		return 0, err
	}

	created := s.now()
	for _, c := range chunks {
		c.ID = uuid.New().String()
		c.CreatedAt = created
		s.chunks = append(s.chunks, copyChunk(c))
	}
	s.dims = dims
	s.version++

	return len(chunks), nil
}

// ListAll returns every stored chunk in insertion order.
func (s *ChunkStore) ListAll(ctx context.Context) ([]domain.DocumentChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DocumentChunk, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = copyChunk(c)
	}
	return out, nil
}

// ListTitles returns one summary per title, ordered by title.
func (s *ChunkStore) ListTitles(ctx context.Context) ([]domain.TitleSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return summarise(s.chunks), nil
}

// DeleteByTitle removes every chunk with exactly this title.
func (s *ChunkStore) DeleteByTitle(ctx context.Context, title string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	removed := 0
	for _, c := range s.chunks {
		if c.Title == title {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	// Clear the tail so removed chunks can be collected.
	for i := len(kept); i < len(s.chunks); i++ {
		s.chunks[i] = domain.DocumentChunk{}
	}
	s.chunks = kept
	if len(s.chunks) == 0 {
		s.dims = 0
	}
	if removed > 0 {
		s.version++
	}

	return removed, nil
}

// Stats describes the store contents.
func (s *ChunkStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoreStats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.StoreStats{
		ChunkCount: len(s.chunks),
		TitleCount: len(summarise(s.chunks)),
		Dimensions: s.dims,
	}, nil
}

// Version returns a counter bumped by every insert and every delete that
// removed chunks.
func (s *ChunkStore) Version(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strconv.FormatUint(s.version, 10), nil
}

// Close releases resources (no-op for memory store).
func (s *ChunkStore) Close() error {
	return nil
}

func summarise(chunks []domain.DocumentChunk) []domain.TitleSummary {
	counts := make(map[string]int)
	for _, c := range chunks {
		counts[c.Title]++
	}

	out := make([]domain.TitleSummary, 0, len(counts))
	for title, n := range counts {
		out = append(out, domain.TitleSummary{Title: title, ChunkCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Title < out[j].Title
	})
	return out
}

func copyChunk(c domain.DocumentChunk) domain.DocumentChunk {
	if c.Embedding != nil {
		c.Embedding = append([]float32(nil), c.Embedding...)
	}
	return c
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedConcurrency bounds concurrent embedding calls per document.
const DefaultEmbedConcurrency = 4

// reasonUnsupported and reasonEmpty explain skipped files.
const (
	reasonUnsupported = "unsupported file type; only " + domain.SupportedExtension + " files are accepted"
	reasonEmpty       = "file contains no text"
)

// IngestService chunks, embeds and stores documents.
type IngestService struct {
	store       driven.ChunkStore
	embedder    *Embedder
	normaliser  driven.Normaliser
	bulk        driven.Chunker
	adhoc       driven.Chunker
	locks       *TitleLocker
	concurrency int
}

// NewIngestService creates a new ingest service.
// The bulk chunker serves uploads and imports; the adhoc chunker serves AddText.
func NewIngestService(
	store driven.ChunkStore,
	embedder *Embedder,
	normaliser driven.Normaliser,
	bulk driven.Chunker,
	adhoc driven.Chunker,
	locks *TitleLocker,
) *IngestService {
	if locks == nil {
		locks = NewTitleLocker()
	}
	return &IngestService{
		store:       store,
		embedder:    embedder,
		normaliser:  normaliser,
		bulk:        bulk,
		adhoc:       adhoc,
		locks:       locks,
		concurrency: DefaultEmbedConcurrency,
	}
}

// SetConcurrency sets how many chunks of one document are embedded at once.
func (s *IngestService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// Upload ingests each file independently.
func (s *IngestService) Upload(
	ctx context.Context, files []domain.SourceFile, opts domain.IngestOptions,
) (*domain.UploadResult, error) {
	logger.Section("Upload")

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", domain.ErrValidation)
	}
	if !s.embedder.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	result := &domain.UploadResult{Files: make([]domain.FileOutcome, 0, len(files))}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Record(s.ingestFile(ctx, file, opts))
	}

	logger.Info("Upload: %d files processed, %d chunks, %d skipped, %d failed",
		result.FilesProcessed, result.TotalChunks, len(result.Skipped()), len(result.Failed()))
	return result, nil
}

// Import ingests every supported file of the source.
func (s *IngestService) Import(
	ctx context.Context, source driven.FileSource, opts domain.IngestOptions,
) (*domain.UploadResult, error) {
	logger.Section("Import")
	logger.Debug("Source: %s", source.Root())

	files, err := source.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files in %s: %w", source.Root(), err)
	}

	supported := files[:0:0]
	for _, f := range files {
		if f.IsSupported() {
			supported = append(supported, f)
		}
	}
	if len(supported) == 0 {
		return nil, fmt.Errorf("%w: no %s files found in %s", domain.ErrValidation, domain.SupportedExtension, source.Root())
	}

	return s.Upload(ctx, supported, opts)
}

// AddText ingests one ad-hoc text under the title.
func (s *IngestService) AddText(ctx context.Context, title, text string, opts domain.IngestOptions) (int, error) {
	logger.Section("Add")

	title = strings.TrimSpace(title)
	if title == "" {
		return 0, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if !s.embedder.Available() {
		return 0, domain.ErrEmbeddingUnavailable
	}

	return s.ingestDocument(ctx, &domain.Document{Title: title, Content: text}, s.adhoc, opts)
}

// Watch re-ingests changed files of the source, replacing their chunks.
func (s *IngestService) Watch(ctx context.Context, source driven.FileSource, onFile func(domain.FileOutcome)) error {
	if !s.embedder.Available() {
		return domain.ErrEmbeddingUnavailable
	}

	logger.Info("Watching %s for changes", source.Root())
	return source.Watch(ctx, func(file domain.SourceFile) error {
		outcome := s.ingestFile(ctx, file, domain.IngestOptions{Replace: true})
		if onFile != nil {
			onFile(outcome)
		}
		if outcome.Status == domain.FileFailed {
			return errors.New(outcome.Error)
		}
		return nil
	})
}

// ingestFile runs one file through decode, chunk, embed and store.
// It never returns an error; failures are recorded in the outcome.
func (s *IngestService) ingestFile(ctx context.Context, file domain.SourceFile, opts domain.IngestOptions) domain.FileOutcome {
	outcome := domain.FileOutcome{Name: file.Name}

	if !file.IsSupported() {
		logger.Debug("Skipping %s: unsupported extension", file.Name)
		outcome.Status = domain.FileSkipped
		outcome.Error = reasonUnsupported
		return outcome
	}

	if file.ReadError != "" {
		logger.Warn("Reading %s failed: %s", file.Name, file.ReadError)
		outcome.Status = domain.FileFailed
		outcome.Error = file.ReadError
		return outcome
	}

	doc, err := s.normaliser.Normalise(ctx, file)
	if err != nil {
		logger.Warn("Decoding %s failed: %v", file.Name, err)
		outcome.Status = domain.FileFailed
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Name = doc.Title

	n, err := s.ingestDocument(ctx, doc, s.bulk, opts)
	switch {
	case err != nil:
		logger.Warn("Ingesting %s failed: %v", doc.Title, err)
		outcome.Status = domain.FileFailed
		outcome.Error = err.Error()
	case n == 0:
		outcome.Status = domain.FileSkipped
		outcome.Error = reasonEmpty
	default:
		outcome.Status = domain.FileIngested
		outcome.Chunks = n
	}
	return outcome
}

// ingestDocument chunks and embeds the document, then stores the batch
// under the title lock. Nothing is stored unless every chunk embeds.
func (s *IngestService) ingestDocument(
	ctx context.Context, doc *domain.Document, chunker driven.Chunker, opts domain.IngestOptions,
) (int, error) {
	chunks, err := chunker.Process(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("chunk %q: %w", doc.Title, err)
	}
	logger.Debug("%s: %d chunks at max %d chars", doc.Title, len(chunks), chunker.MaxChars())
	if len(chunks) == 0 {
		return 0, nil
	}

	if err := s.embedChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("embed %q: %w", doc.Title, err)
	}

	unlock := s.locks.Lock(doc.Title)
	defer unlock()

	if opts.Replace {
		removed, err := s.store.DeleteByTitle(ctx, doc.Title)
		if err != nil {
			return 0, fmt.Errorf("replace %q: %w", doc.Title, err)
		}
		logger.Debug("%s: replaced %d existing chunks", doc.Title, removed)
	}

	n, err := s.store.InsertBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("store %q: %w", doc.Title, err)
	}

	logger.Info("Stored %d chunks of %q", n, doc.Title)
	return n, nil
}

// embedChunks fills in every chunk's embedding concurrently.
// Results land by index so chunk order is preserved. The first failure
// cancels the remaining calls.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	defer logger.Timed(fmt.Sprintf("embed %d chunks", len(chunks)))()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range chunks {
		g.Go(func() error {
			vec, err := s.embedder.Embed(gctx, chunks[i].Content)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", chunks[i].ChunkIndex, err)
			}
			chunks[i].Embedding = vec
			return nil
		})
	}

	return g.Wait()
}

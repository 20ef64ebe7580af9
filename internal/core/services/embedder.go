package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// MinEmbedLength is the minimum trimmed length, in characters, of text sent
// to the embedding service.
const MinEmbedLength = 10

// Embedder validates text and delegates to an embedding service.
// Service failures are wrapped with domain.ErrEmbeddingService.
type Embedder struct {
	service driven.EmbeddingService
	limiter *rate.Limiter
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithRateLimit limits calls to the embedding service to rps per second with
// the given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) EmbedderOption {
	return func(e *Embedder) {
		if rps <= 0 {
			e.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewEmbedder creates an embedder over the given service.
// A nil service makes every call fail with domain.ErrEmbeddingUnavailable.
func NewEmbedder(service driven.EmbeddingService, opts ...EmbedderOption) *Embedder {
	e := &Embedder{service: service}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Available reports whether an embedding service is configured.
func (e *Embedder) Available() bool {
	return e != nil && e.service != nil
}

// ModelName returns the embedding model name, or "" when unavailable.
func (e *Embedder) ModelName() string {
	if !e.Available() {
		return ""
	}
	return e.service.ModelName()
}

// Embed returns the embedding of text.
// Text shorter than MinEmbedLength after trimming fails with
// domain.ErrValidation without calling the service.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinEmbedLength {
		return nil, fmt.Errorf("%w: text too short for embedding", domain.ErrValidation)
	}
	if !e.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrEmbeddingService, err)
		}
	}

	vec, err := e.service.Embed(ctx, text)
	if err != nil {
		logger.Warn("Embedding failed: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}

	if err := checkVector(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// checkVector rejects empty and non-finite embeddings.
func checkVector(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty embedding returned", domain.ErrEmbeddingService)
	}
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite value at index %d", domain.ErrEmbeddingService, i)
		}
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// bagOfWords embeds text as term counts over a vocabulary that grows as
// words are seen. Below dims distinct words there are no collisions.
type bagOfWords struct {
	mu    sync.Mutex
	vocab map[string]int
	dims  int
	calls atomic.Int32
	err   error
}

func newBagOfWords() *bagOfWords {
	return &bagOfWords{vocab: make(map[string]int), dims: 128}
}

func (b *bagOfWords) Embed(_ context.Context, text string) ([]float32, error) {
	b.calls.Add(1)
	if b.err != nil {
		return nil, b.err
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	vec := make([]float32, b.dims)
	b.mu.Lock()
	for _, w := range words {
		idx, ok := b.vocab[w]
		if !ok {
			idx = len(b.vocab) % b.dims
			b.vocab[w] = idx
		}
		vec[idx]++
	}
	b.mu.Unlock()
	return vec, nil
}

func (b *bagOfWords) Dimensions() int             { return b.dims }
func (b *bagOfWords) ModelName() string           { return "bag-of-words" }
func (b *bagOfWords) Ping(_ context.Context) error { return nil }
func (b *bagOfWords) Close() error                { return nil }

// fixedEmbedding returns the same vector for every text.
type fixedEmbedding struct {
	vec []float32
	err error
}

func (f *fixedEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]float32(nil), f.vec...), nil
}

func (f *fixedEmbedding) Dimensions() int              { return len(f.vec) }
func (f *fixedEmbedding) ModelName() string            { return "fixed" }
func (f *fixedEmbedding) Ping(_ context.Context) error { return nil }
func (f *fixedEmbedding) Close() error                 { return nil }

// fakeLLM records prompts and returns a canned response.
type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	opts     []driven.GenerateOptions
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

// fakePrompts serves a fixed template.
type fakePrompts struct {
	template string
	err      error
}

func (f *fakePrompts) Load(_ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.template, nil
}

func (f *fakePrompts) Reload() {}

// fakeSource is an in-memory file source.
type fakeSource struct {
	files   []domain.SourceFile
	err     error
	changes []domain.SourceFile
}

func (f *fakeSource) Root() string { return "fake://docs" }

func (f *fakeSource) Files(_ context.Context) ([]domain.SourceFile, error) {
	return f.files, f.err
}

// Watch delivers each change in order and returns once they are exhausted.
func (f *fakeSource) Watch(ctx context.Context, fn func(domain.SourceFile) error) error {
	for _, c := range f.changes {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = fn(c)
	}
	return nil
}

// failingStore fails every operation.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) InsertBatch(_ context.Context, _ []domain.DocumentChunk) (int, error) {
	return 0, errStoreDown
}

func (failingStore) ListAll(_ context.Context) ([]domain.DocumentChunk, error) {
	return nil, errStoreDown
}

func (failingStore) ListTitles(_ context.Context) ([]domain.TitleSummary, error) {
	return nil, errStoreDown
}

func (failingStore) DeleteByTitle(_ context.Context, _ string) (int, error) {
	return 0, errStoreDown
}

func (failingStore) Stats(_ context.Context) (domain.StoreStats, error) {
	return domain.StoreStats{}, errStoreDown
}

func (failingStore) Close() error { return nil }

var (
	_ driven.EmbeddingService = (*bagOfWords)(nil)
	_ driven.EmbeddingService = (*fixedEmbedding)(nil)
	_ driven.LLMService       = (*fakeLLM)(nil)
	_ driven.PromptStore      = (*fakePrompts)(nil)
	_ driven.FileSource       = (*fakeSource)(nil)
	_ driven.ChunkStore       = failingStore{}
)

// Package chunker provides a paragraph-bounded text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Separator joins paragraphs packed into the same chunk.
const Separator = "\n\n"

// paragraphBreak matches a blank line, which may contain whitespace.
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Processor splits document content into chunks of whole paragraphs.
type Processor struct {
	maxChars int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxChars sets the maximum chunk length in characters.
func WithMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// New creates a new chunker processor with the given options.
// Without options it packs chunks up to domain.DefaultBulkChunkSize.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxChars: domain.DefaultBulkChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxChars returns the chunk length limit.
func (p *Processor) MaxChars() int {
	return p.maxChars
}

// Process splits the document content into chunks.
func (p *Processor) Process(ctx context.Context, doc *domain.Document) ([]domain.DocumentChunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	passages, err := Split(doc.Content, p.maxChars)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.DocumentChunk, len(passages))
	for i, passage := range passages {
		chunks[i] = domain.DocumentChunk{
			Title:      doc.Title,
			ChunkIndex: i,
			Content:    passage,
		}
	}

	return chunks, nil
}

// Split breaks text into paragraphs and greedily packs them into chunks of
// at most maxChars characters, separator included. A paragraph longer than
// maxChars becomes its own chunk unsplit. Paragraphs are trimmed and empty
// ones dropped, so whitespace-only text yields no chunks.
func Split(text string, maxChars int) ([]string, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max chars must be positive, got %d", domain.ErrValidation, maxChars)
	}

	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)

	flush := func() {
		if bufLen > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufLen = 0
		}
	}

	sepLen := utf8.RuneCountInString(Separator)

	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraLen := utf8.RuneCountInString(para)

		if bufLen > 0 && bufLen+sepLen+paraLen > maxChars {
			flush()
		}

		if bufLen > 0 {
			buf.WriteString(Separator)
			bufLen += sepLen
		}
		buf.WriteString(para)
		bufLen += paraLen
	}
	flush()

	return chunks, nil
}

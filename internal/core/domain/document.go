package domain

import (
	"fmt"
	"strings"
	"time"
)

// DocumentChunk is a passage of a source document stored with its embedding.
// Chunks are immutable once stored; a document is updated by deleting all
// chunks under its title and inserting a fresh batch.
type DocumentChunk struct {
	// ID is assigned by the store on insertion.
	ID string

	// Title is the logical document name shared by all its chunks.
	// It is the unit of listing and deletion.
	Title string

	// ChunkIndex is the zero-based position within the source document.
	ChunkIndex int

	// Content is the non-empty passage text.
	Content string

	// Embedding is the vector representation of Content.
	// Its length must match every other chunk in the store.
	Embedding []float32

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}

// Dimensions returns the embedding length.
func (c DocumentChunk) Dimensions() int {
	return len(c.Embedding)
}

// TitleSummary aggregates the chunks stored under one title.
type TitleSummary struct {
	// Title is the document name.
	Title string `json:"title"`

	// ChunkCount is the number of chunks stored for the title.
	ChunkCount int `json:"chunkCount"`
}

// StoreStats describes the contents of a document store.
type StoreStats struct {
	// Tables lists the backing tables, when the store has any.
	Tables []string `json:"tables,omitempty"`

	// ChunkCount is the total number of stored chunks.
	ChunkCount int `json:"chunkCount"`

	// TitleCount is the number of distinct titles.
	TitleCount int `json:"titleCount"`

	// Dimensions is the embedding length shared by all chunks (0 when empty).
	Dimensions int `json:"dimensions"`
}

// SnippetLength is the maximum length, in characters, of a source snippet.
const SnippetLength = 150

// Snippet returns at most SnippetLength characters of content.
// Truncated text ends with "..." and still fits within the limit.
func Snippet(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= SnippetLength {
		return content
	}
	return strings.TrimRight(string(runes[:SnippetLength-3]), " \t\n") + "..."
}

// BatchDimensions checks that every chunk in the batch has a non-empty
// embedding of the same length, and that this length equals stored when
// stored is non-zero. It returns the batch dimension.
func BatchDimensions(chunks []DocumentChunk, stored int) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	dims := chunks[0].Dimensions()
	if dims == 0 {
		return 0, fmt.Errorf("%w: chunk %d of %q has no embedding", ErrDimensionMismatch, chunks[0].ChunkIndex, chunks[0].Title)
	}
	for _, c := range chunks[1:] {
		if c.Dimensions() != dims {
			return 0, fmt.Errorf("%w: batch mixes %d and %d dimensions", ErrDimensionMismatch, dims, c.Dimensions())
		}
	}
	if stored != 0 && stored != dims {
		return 0, fmt.Errorf("%w: store holds %d dimensions, batch has %d", ErrDimensionMismatch, stored, dims)
	}
	return dims, nil
}

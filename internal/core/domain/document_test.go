package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDocumentChunk_Dimensions(t *testing.T) {
	c := DocumentChunk{Embedding: []float32{1, 2, 3}}
	assert.Equal(t, 3, c.Dimensions())
	assert.Equal(t, 0, DocumentChunk{}.Dimensions())
}

func TestSnippet(t *testing.T) {
	t.Run("short content unchanged", func(t *testing.T) {
		assert.Equal(t, "Paris is the capital.", Snippet("  Paris is the capital.\n"))
	})

	t.Run("exactly at limit unchanged", func(t *testing.T) {
		s := strings.Repeat("a", SnippetLength)
		assert.Equal(t, s, Snippet(s))
	})

	t.Run("long content truncated within limit", func(t *testing.T) {
		s := strings.Repeat("word ", 100)
		got := Snippet(s)
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.LessOrEqual(t, utf8.RuneCountInString(got), SnippetLength)
	})

	t.Run("multibyte content counted in characters", func(t *testing.T) {
		s := strings.Repeat("é", 200)
		got := Snippet(s)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, SnippetLength, utf8.RuneCountInString(got))
	})
}

func TestBatchDimensions(t *testing.T) {
	vec := func(n int) []float32 { return make([]float32, n) }

	t.Run("empty batch", func(t *testing.T) {
		dims, err := BatchDimensions(nil, 3)
		assert.NoError(t, err)
		assert.Equal(t, 0, dims)
	})

	t.Run("consistent batch into empty store", func(t *testing.T) {
		dims, err := BatchDimensions([]DocumentChunk{{Embedding: vec(3)}, {Embedding: vec(3)}}, 0)
		assert.NoError(t, err)
		assert.Equal(t, 3, dims)
	})

	t.Run("batch disagrees internally", func(t *testing.T) {
		_, err := BatchDimensions([]DocumentChunk{{Embedding: vec(3)}, {Embedding: vec(4)}}, 0)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("batch disagrees with store", func(t *testing.T) {
		_, err := BatchDimensions([]DocumentChunk{{Embedding: vec(3)}}, 4)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("missing embedding", func(t *testing.T) {
		_, err := BatchDimensions([]DocumentChunk{{Title: "a.txt"}}, 0)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

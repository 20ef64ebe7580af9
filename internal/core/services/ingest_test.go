package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

func setupIngest(t *testing.T, bulk, adhoc int) (*IngestService, *memory.ChunkStore, *bagOfWords) {
	t.Helper()
	store := memory.NewChunkStore()
	embed := newBagOfWords()
	svc := NewIngestService(store, NewEmbedder(embed), plaintext.New(),
		chunker.New(chunker.WithMaxChars(bulk)), chunker.New(chunker.WithMaxChars(adhoc)), nil)
	return svc, store, embed
}

func paragraphs(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "This paragraph talks about topic number " + strings.Repeat("x", i+1) + "."
	}
	return strings.Join(parts, "\n\n")
}

func TestIngestService_Upload(t *testing.T) {
	svc, store, _ := setupIngest(t, 60, 60)

	result, err := svc.Upload(context.Background(), []domain.SourceFile{
		{Name: "notes.txt", Content: []byte(paragraphs(3))},
		{Name: "report.pdf", Content: []byte("%PDF-1.4")},
		{Name: "empty.txt", Content: []byte("  \n\n  ")},
		{Name: "binary.txt", Content: []byte{0xff, 0xfe, 0x00}},
	}, domain.IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 3, result.TotalChunks)
	require.Len(t, result.Files, 4)

	assert.Equal(t, domain.FileOutcome{Name: "notes.txt", Status: domain.FileIngested, Chunks: 3}, result.Files[0])
	assert.Equal(t, domain.FileSkipped, result.Files[1].Status)
	assert.Contains(t, result.Files[1].Error, ".txt")
	assert.Equal(t, domain.FileSkipped, result.Files[2].Status)
	assert.Equal(t, reasonEmpty, result.Files[2].Error)
	assert.Equal(t, domain.FileFailed, result.Files[3].Status)
	assert.NotEmpty(t, result.Files[3].Error)

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, c := range all {
		assert.Equal(t, "notes.txt", c.Title)
		assert.Equal(t, i, c.ChunkIndex)
		assert.Len(t, c.Embedding, 128)
	}
}

func TestIngestService_Upload_PreservesChunkOrder(t *testing.T) {
	svc, store, _ := setupIngest(t, 50, 50)
	svc.SetConcurrency(8)

	text := paragraphs(20)
	_, err := svc.Upload(context.Background(), []domain.SourceFile{{Name: "long.txt", Content: []byte(text)}}, domain.IngestOptions{})
	require.NoError(t, err)

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)

	contents := make([]string, len(all))
	for i, c := range all {
		assert.Equal(t, i, c.ChunkIndex)
		contents[i] = c.Content
	}
	assert.Equal(t, text, strings.Join(contents, chunker.Separator))
}

func TestIngestService_Upload_Validation(t *testing.T) {
	svc, _, _ := setupIngest(t, 100, 100)

	_, err := svc.Upload(context.Background(), nil, domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestIngestService_Upload_NoEmbedder(t *testing.T) {
	svc := NewIngestService(memory.NewChunkStore(), NewEmbedder(nil), plaintext.New(), chunker.New(), chunker.New(), nil)

	_, err := svc.Upload(context.Background(), []domain.SourceFile{{Name: "a.txt", Content: []byte("long enough content")}}, domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIngestService_Upload_EmbeddingFailureStoresNothing(t *testing.T) {
	svc, store, embed := setupIngest(t, 60, 60)
	embed.err = assert.AnError

	result, err := svc.Upload(context.Background(), []domain.SourceFile{
		{Name: "notes.txt", Content: []byte(paragraphs(4))},
	}, domain.IngestOptions{})
	require.NoError(t, err)

	require.Len(t, result.Failed(), 1)
	assert.Equal(t, 0, result.FilesProcessed)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ChunkCount)
}

func TestIngestService_Upload_ShortChunkFailsFile(t *testing.T) {
	svc, store, _ := setupIngest(t, 40, 40)

	result, err := svc.Upload(context.Background(), []domain.SourceFile{
		{Name: "short.txt", Content: []byte("Hi\n\nThis second paragraph is long enough to fill a chunk.")},
		{Name: "fine.txt", Content: []byte("A perfectly ordinary sentence.")},
	}, domain.IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.FileFailed, result.Files[0].Status)
	assert.Equal(t, domain.FileIngested, result.Files[1].Status)

	titles, err := store.ListTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.TitleSummary{{Title: "fine.txt", ChunkCount: 1}}, titles)
}

func TestIngestService_Upload_StoreFailure(t *testing.T) {
	svc := NewIngestService(failingStore{}, NewEmbedder(newBagOfWords()), plaintext.New(), chunker.New(), chunker.New(), nil)

	result, err := svc.Upload(context.Background(), []domain.SourceFile{
		{Name: "a.txt", Content: []byte("Long enough content here.")},
	}, domain.IngestOptions{})
	require.NoError(t, err)
	require.Len(t, result.Failed(), 1)
	assert.Contains(t, result.Failed()[0].Error, errStoreDown.Error())
}

func TestIngestService_Upload_Cancelled(t *testing.T) {
	svc, _, _ := setupIngest(t, 100, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Upload(ctx, []domain.SourceFile{{Name: "a.txt", Content: []byte("Long enough content here.")}}, domain.IngestOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIngestService_Upload_AppendsByDefault(t *testing.T) {
	svc, store, _ := setupIngest(t, 100, 100)
	file := domain.SourceFile{Name: "a.txt", Content: []byte("Long enough content here.")}

	for i := 0; i < 2; i++ {
		_, err := svc.Upload(context.Background(), []domain.SourceFile{file}, domain.IngestOptions{})
		require.NoError(t, err)
	}

	titles, err := store.ListTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.TitleSummary{{Title: "a.txt", ChunkCount: 2}}, titles)
}

func TestIngestService_Upload_Replace(t *testing.T) {
	svc, store, _ := setupIngest(t, 60, 60)
	ctx := context.Background()

	_, err := svc.Upload(ctx, []domain.SourceFile{{Name: "a.txt", Content: []byte(paragraphs(3))}}, domain.IngestOptions{})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, []domain.SourceFile{{Name: "a.txt", Content: []byte("Only this sentence remains.")}},
		domain.IngestOptions{Replace: true})
	require.NoError(t, err)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Only this sentence remains.", all[0].Content)
}

func TestIngestService_Upload_TitleFromBaseName(t *testing.T) {
	svc, store, _ := setupIngest(t, 100, 100)

	_, err := svc.Upload(context.Background(), []domain.SourceFile{
		{Name: "/tmp/uploads/a.txt", Content: []byte("Long enough content here.")},
	}, domain.IngestOptions{})
	require.NoError(t, err)

	titles, _ := store.ListTitles(context.Background())
	require.Len(t, titles, 1)
	assert.Equal(t, "a.txt", titles[0].Title)
}

func TestIngestService_AddText(t *testing.T) {
	svc, store, _ := setupIngest(t, 1000, 60)

	n, err := svc.AddText(context.Background(), "  pasted note ", paragraphs(3), domain.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	titles, err := store.ListTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.TitleSummary{{Title: "pasted note", ChunkCount: 3}}, titles)
}

func TestIngestService_AddText_Validation(t *testing.T) {
	svc, _, embed := setupIngest(t, 100, 100)

	_, err := svc.AddText(context.Background(), "", "Some long enough text.", domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddText(context.Background(), "title", "  \n ", domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddText(context.Background(), "title", "tiny", domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, int32(0), embed.calls.Load())
}

func TestIngestService_Import(t *testing.T) {
	svc, store, _ := setupIngest(t, 100, 100)

	source := &fakeSource{files: []domain.SourceFile{
		{Name: "a.txt", Content: []byte("First imported document.")},
		{Name: "b.md", Content: []byte("# not imported")},
		{Name: "c.txt", Content: []byte("Second imported document.")},
	}}

	result, err := svc.Import(context.Background(), source, domain.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.Len(t, result.Files, 2)

	stats, _ := store.Stats(context.Background())
	assert.Equal(t, 2, stats.TitleCount)
}

func TestIngestService_Import_UnreadableFileFailsAlone(t *testing.T) {
	svc, store, _ := setupIngest(t, 100, 100)

	source := &fakeSource{files: []domain.SourceFile{
		{Name: "bad.txt", ReadError: "stat bad.txt: no such file or directory"},
		{Name: "good.txt", Content: []byte("A readable imported document.")},
	}}

	result, err := svc.Import(context.Background(), source, domain.IngestOptions{})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, domain.FileOutcome{
		Name:   "bad.txt",
		Status: domain.FileFailed,
		Error:  "stat bad.txt: no such file or directory",
	}, result.Files[0])
	assert.Equal(t, domain.FileIngested, result.Files[1].Status)
	assert.Equal(t, 1, result.FilesProcessed)

	titles, err := store.ListTitles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.TitleSummary{{Title: "good.txt", ChunkCount: 1}}, titles)
}

func TestIngestService_Import_NoTextFiles(t *testing.T) {
	svc, _, _ := setupIngest(t, 100, 100)

	_, err := svc.Import(context.Background(), &fakeSource{files: []domain.SourceFile{{Name: "a.md"}}}, domain.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "fake://docs")
}

func TestIngestService_Import_SourceError(t *testing.T) {
	svc, _, _ := setupIngest(t, 100, 100)

	_, err := svc.Import(context.Background(), &fakeSource{err: assert.AnError}, domain.IngestOptions{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestIngestService_Watch(t *testing.T) {
	svc, store, _ := setupIngest(t, 100, 100)
	ctx := context.Background()

	_, err := svc.AddText(ctx, "a.txt", "The original version of a.", domain.IngestOptions{})
	require.NoError(t, err)

	source := &fakeSource{changes: []domain.SourceFile{
		{Name: "a.txt", Content: []byte("The edited version of a.")},
		{Name: "b.txt", Content: []byte{0xff}},
	}}

	var mu sync.Mutex
	var outcomes []domain.FileOutcome
	err = svc.Watch(ctx, source, func(o domain.FileOutcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	})
	require.NoError(t, err)

	require.Len(t, outcomes, 2)
	assert.Equal(t, domain.FileIngested, outcomes[0].Status)
	assert.Equal(t, domain.FileFailed, outcomes[1].Status)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "The edited version of a.", all[0].Content)
}

func TestIngestService_ConcurrentUploadsOfSameTitle(t *testing.T) {
	svc, store, _ := setupIngest(t, 100, 100)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Upload(ctx, []domain.SourceFile{{Name: "same.txt", Content: []byte("Replaced by every writer.")}},
				domain.IngestOptions{Replace: true})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	titles, err := store.ListTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.TitleSummary{{Title: "same.txt", ChunkCount: 1}}, titles)
}

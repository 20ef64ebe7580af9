// Package cache provides a read-through decorator over a driven.ChunkStore.
//
// The decorator keeps the last ListAll snapshot in memory so repeated queries
// against an unchanged store skip the full scan. Every mutation made through
// the decorator drops the snapshot. When the wrapped store implements
// driven.ChangeDetector, its version is checked on every ListAll so writes
// from other processes (an upload while the MCP server runs) are seen on the
// next query. Stores without a version are only refreshed by mutations made
// through the decorator.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

const listAllKey = "list_all"

// ChunkStore caches the ListAll result of the wrapped store.
type ChunkStore struct {
	inner driven.ChunkStore
	group singleflight.Group

	mu       sync.RWMutex
	snapshot []domain.DocumentChunk
	version  string
	valid    bool
	gen      uint64
}

// New wraps the store.
func New(inner driven.ChunkStore) *ChunkStore {
	return &ChunkStore{inner: inner}
}

// InsertBatch delegates and invalidates the snapshot.
func (c *ChunkStore) InsertBatch(ctx context.Context, chunks []domain.DocumentChunk) (int, error) {
	defer c.Invalidate()
	return c.inner.InsertBatch(ctx, chunks)
}

// ListAll returns the cached snapshot, loading it on a miss or when the
// wrapped store reports a different version. Concurrent misses share one
// load, which is not cancelled by any single caller. The returned slice is
// shared between callers and must not be modified.
func (c *ChunkStore) ListAll(ctx context.Context) ([]domain.DocumentChunk, error) {
	current, versioned, err := c.currentVersion(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	if c.valid && (!versioned || c.version == current) {
		out := c.snapshot
		c.mu.RUnlock()
		return out, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	v, err, _ := c.group.Do(listAllKey, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)

		// Read the version before the rows; a write in between only causes
		// one extra reload.
		version, _, err := c.currentVersion(loadCtx)
		if err != nil {
			return nil, err
		}
		chunks, err := c.inner.ListAll(loadCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// A mutation during the load makes this result stale.
		if c.gen == gen {
			c.snapshot = chunks
			c.version = version
			c.valid = true
		}
		c.mu.Unlock()

		logger.Debug("Chunk cache loaded %d chunks (version %q)", len(chunks), version)
		return chunks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.DocumentChunk), nil
}

func (c *ChunkStore) currentVersion(ctx context.Context) (string, bool, error) {
	detector, ok := c.inner.(driven.ChangeDetector)
	if !ok {
		return "", false, nil
	}
	version, err := detector.Version(ctx)
	if err != nil {
		return "", true, err
	}
	return version, true, nil
}

// ListTitles delegates to the wrapped store.
func (c *ChunkStore) ListTitles(ctx context.Context) ([]domain.TitleSummary, error) {
	return c.inner.ListTitles(ctx)
}

// DeleteByTitle delegates and invalidates the snapshot.
func (c *ChunkStore) DeleteByTitle(ctx context.Context, title string) (int, error) {
	defer c.Invalidate()
	return c.inner.DeleteByTitle(ctx, title)
}

// Stats delegates to the wrapped store.
func (c *ChunkStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	return c.inner.Stats(ctx)
}

// Close drops the snapshot and closes the wrapped store.
func (c *ChunkStore) Close() error {
	c.Invalidate()
	return c.inner.Close()
}

// Invalidate drops the snapshot.
func (c *ChunkStore) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.version = ""
	c.valid = false
	c.gen++
	c.mu.Unlock()
	c.group.Forget(listAllKey)
}

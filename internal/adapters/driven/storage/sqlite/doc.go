// Package sqlite provides a SQLite implementation of driven.ChunkStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Embeddings are stored as JSON arrays in a TEXT column, next to the
// dimension count they were written with.
//
// # Data Location
//
// By default, the database is stored at ~/.docqa/data/docqa.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Batch inserts are serialised
// in-process so the dimension check and the insert see the same store.
package sqlite

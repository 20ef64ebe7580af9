package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DBFile is the database file name inside the data directory.
const DBFile = "docqa.db"

// Ensure Store implements the interfaces.
var (
	_ driven.ChunkStore     = (*Store)(nil)
	_ driven.ChangeDetector = (*Store)(nil)
)

// Store is a SQLite-backed chunk store.
type Store struct {
	db      *sql.DB
	path    string
	writeMu sync.Mutex
	now     func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docqa/data/docqa.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrStorage, err)
	}

	dbPath := filepath.Join(dataDir, DBFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStorage, err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrStorage, err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
// Each migration records its own version in schema_migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// InsertBatch stores chunks atomically. Either every chunk is stored or none.
func (s *Store) InsertBatch(ctx context.Context, chunks []domain.DocumentChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: beginning transaction: %w", domain.ErrStorage, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stored, err := storedDimensions(ctx, tx)
	if err != nil {
		return 0, err
	}
	dims, err := domain.BatchDimensions(chunks, stored)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, title, chunk_index, content, embedding, dimensions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("%w: preparing statement: %w", domain.ErrStorage, err)
	}
	defer stmt.Close()

	created := s.now().UTC().Format(time.RFC3339Nano)
	for _, chunk := range chunks {
		embedding, err := encodeEmbedding(chunk.Embedding)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), chunk.Title, chunk.ChunkIndex,
			chunk.Content, embedding, dims, created); err != nil {
			return 0, fmt.Errorf("%w: saving chunk: %w", domain.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing transaction: %w", domain.ErrStorage, err)
	}
	return len(chunks), nil
}

// ListAll returns every stored chunk in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]domain.DocumentChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, chunk_index, content, embedding, dimensions, created_at
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	chunks := []domain.DocumentChunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %w", domain.ErrStorage, err)
	}

	return chunks, nil
}

// ListTitles returns one summary per title, ordered by title.
func (s *Store) ListTitles(ctx context.Context) ([]domain.TitleSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, COUNT(*) FROM chunks
		GROUP BY title ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying titles: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	titles := []domain.TitleSummary{}
	for rows.Next() {
		var t domain.TitleSummary
		if err := rows.Scan(&t.Title, &t.ChunkCount); err != nil {
			return nil, fmt.Errorf("%w: scanning title: %w", domain.ErrStorage, err)
		}
		titles = append(titles, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating titles: %w", domain.ErrStorage, err)
	}

	return titles, nil
}

// DeleteByTitle removes every chunk with exactly this title.
func (s *Store) DeleteByTitle(ctx context.Context, title string) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE title = ?", title)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting chunks: %w", domain.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: counting deleted chunks: %w", domain.ErrStorage, err)
	}
	return int(n), nil
}

// Stats describes the store contents, including the schema's table names.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats

	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(DISTINCT title) FROM chunks")
	if err := row.Scan(&stats.ChunkCount, &stats.TitleCount); err != nil {
		return stats, fmt.Errorf("%w: counting chunks: %w", domain.ErrStorage, err)
	}

	dims, err := storedDimensions(ctx, s.db)
	if err != nil {
		return stats, err
	}
	stats.Dimensions = dims

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return stats, fmt.Errorf("%w: listing tables: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return stats, fmt.Errorf("%w: scanning table name: %w", domain.ErrStorage, err)
		}
		stats.Tables = append(stats.Tables, name)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("%w: iterating tables: %w", domain.ErrStorage, err)
	}

	return stats, nil
}

// Version reports the row count and the highest sequence number. seq is
// AUTOINCREMENT and never reused, so any committed insert or delete, from
// this or another process, changes the pair.
func (s *Store) Version(ctx context.Context) (string, error) {
	var count, maxSeq int64
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(MAX(seq), 0) FROM chunks")
	if err := row.Scan(&count, &maxSeq); err != nil {
		return "", fmt.Errorf("%w: reading store version: %w", domain.ErrStorage, err)
	}
	return fmt.Sprintf("%d:%d", count, maxSeq), nil
}

// ==================== Helper Functions ====================

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// storedDimensions returns the dimension of stored embeddings, or 0 when empty.
func storedDimensions(ctx context.Context, q querier) (int, error) {
	var dims int
	err := q.QueryRowContext(ctx, "SELECT dimensions FROM chunks ORDER BY seq LIMIT 1").Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: reading dimensions: %w", domain.ErrStorage, err)
	}
	return dims, nil
}

// scanChunk scans one row of the chunks query.
func scanChunk(rows *sql.Rows) (*domain.DocumentChunk, error) {
	var (
		chunk     domain.DocumentChunk
		embedding string
		dims      int
		created   string
	)
	if err := rows.Scan(&chunk.ID, &chunk.Title, &chunk.ChunkIndex, &chunk.Content, &embedding, &dims, &created); err != nil {
		return nil, fmt.Errorf("%w: scanning chunk: %w", domain.ErrStorage, err)
	}

	vec, err := decodeEmbedding(embedding)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", chunk.ID, err)
	}
	if len(vec) != dims {
		return nil, fmt.Errorf("%w: chunk %s has %d values, row records %d",
			domain.ErrDimensionMismatch, chunk.ID, len(vec), dims)
	}
	chunk.Embedding = vec

	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		chunk.CreatedAt = t
	}
	return &chunk, nil
}

// encodeEmbedding stores a vector as a JSON array of numbers.
func encodeEmbedding(vec []float32) (string, error) {
	data, err := json.Marshal(vec)
	if err != nil {
		return "", fmt.Errorf("%w: encoding embedding: %w", domain.ErrStorage, err)
	}
	return string(data), nil
}

// decodeEmbedding parses a stored JSON array. Anything else is corruption.
func decodeEmbedding(text string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(text), &vec); err != nil {
		return nil, fmt.Errorf("%w: decoding embedding: %w", domain.ErrStorage, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrStorage)
	}
	return vec, nil
}

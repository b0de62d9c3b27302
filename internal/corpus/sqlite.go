package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens the SQLite database the ingestion pipeline writes
// chunks into.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the chunk table if it does not exist. It is idempotent
// and matches the schema the ingestion pipeline produces.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			chunk_id TEXT NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			heading TEXT NOT NULL DEFAULT '',
			section_level INTEGER NOT NULL DEFAULT 0,
			chunk_index INTEGER NOT NULL,
			word_count INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL,
			UNIQUE (chunk_id, url)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_url ON chunks (url, chunk_index);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// InsertChunk inserts a single chunk row. Exposed for tests and for
// small manual corpus fixes; bulk ingestion happens outside this module.
func InsertChunk(ctx context.Context, db *sql.DB, c *Chunk) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO chunks (chunk_id, url, title, category, heading, section_level, chunk_index, word_count, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ChunkID, c.URL, c.Title, c.Category, c.Heading, c.SectionLevel, c.ChunkIndex, c.WordCount, c.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// LoadSQLite reads the full chunk table into an immutable Store,
// ordered by url then chunk_index so index positions are stable for a
// given database state. Rows below MinContentLength are skipped.
func LoadSQLite(ctx context.Context, db *sql.DB) (*Store, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT chunk_id, url, title, category, heading, section_level, chunk_index, word_count, content
		 FROM chunks ORDER BY url, chunk_index`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ChunkID, &c.URL, &c.Title, &c.Category, &c.Heading,
			&c.SectionLevel, &c.ChunkIndex, &c.WordCount, &c.Content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if len(strings.TrimSpace(c.Content)) < MinContentLength {
			continue
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return NewStore(chunks)
}

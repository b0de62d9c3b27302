package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// MinContentLength is the minimum content length for an indexable chunk.
// Shorter rows (stray headings, nav fragments) are skipped at load time.
const MinContentLength = 20

// Chunk is one unit of retrievable documentation text with its
// provenance metadata, produced by the external ingestion pipeline.
type Chunk struct {
	// ChunkID is a content hash, stable across index rebuilds.
	ChunkID string `json:"chunk_id"`
	// URL is the source page the chunk was extracted from.
	URL string `json:"url"`
	// Title is the source page title.
	Title string `json:"title"`
	// Category is the documentation category (e.g. "Billing").
	Category string `json:"category"`
	// Heading is the section heading the chunk belongs to.
	Heading string `json:"heading"`
	// SectionLevel is the heading depth, 1 = top level.
	SectionLevel int `json:"section_level"`
	// ChunkIndex is the 0-based position of the chunk within its page.
	ChunkIndex int `json:"chunk_index"`
	// WordCount is the word count of Content.
	WordCount int `json:"word_count"`
	// Content is the chunk text body.
	Content string `json:"content"`
}

// Validate checks the fields every downstream stage depends on.
func (c *Chunk) Validate() error {
	if strings.TrimSpace(c.ChunkID) == "" {
		return fmt.Errorf("chunk is missing chunk_id")
	}
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("chunk %s is missing url", c.ChunkID)
	}
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("chunk %s is missing content", c.ChunkID)
	}
	return nil
}

// Store is an immutable, in-memory table of chunks indexed by position.
// It is built once and shared read-only across concurrent requests.
type Store struct {
	chunks []Chunk
	byURL  map[string][]int
}

// NewStore validates the given chunks and builds the position table.
// Malformed rows are rejected here rather than surfacing as missing
// fields during retrieval.
func NewStore(chunks []Chunk) (*Store, error) {
	byURL := make(map[string][]int)
	for i := range chunks {
		if err := chunks[i].Validate(); err != nil {
			return nil, fmt.Errorf("corpus row %d: %w", i, err)
		}
		byURL[chunks[i].URL] = append(byURL[chunks[i].URL], i)
	}
	s := &Store{chunks: chunks, byURL: byURL}
	for url := range s.byURL {
		positions := s.byURL[url]
		sort.Slice(positions, func(i, j int) bool {
			return s.chunks[positions[i]].ChunkIndex < s.chunks[positions[j]].ChunkIndex
		})
	}
	return s, nil
}

// Len returns the number of chunks in the store.
func (s *Store) Len() int {
	return len(s.chunks)
}

// At returns the chunk at the given position. Positions come from the
// vector index built over this store.
func (s *Store) At(pos int) Chunk {
	return s.chunks[pos]
}

// All returns the full chunk table. Callers must treat it as read-only.
func (s *Store) All() []Chunk {
	return s.chunks
}

// Neighbors returns all chunks on the same page whose chunk_index is
// within window of chunkIndex, ordered by chunk_index.
func (s *Store) Neighbors(url string, chunkIndex, window int) []Chunk {
	positions := s.byURL[url]
	neighbors := make([]Chunk, 0, 2*window+1)
	for _, pos := range positions {
		c := s.chunks[pos]
		delta := c.ChunkIndex - chunkIndex
		if delta < 0 {
			delta = -delta
		}
		if delta <= window {
			neighbors = append(neighbors, c)
		}
	}
	return neighbors
}

// LoadJSONL reads a pre-chunked corpus from a JSONL file, one chunk per
// line, skipping blank lines and rows below MinContentLength.
func LoadJSONL(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var chunks []Chunk
	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var c Chunk
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("parse corpus line %d: %w", line, err)
		}
		if len(strings.TrimSpace(c.Content)) < MinContentLength {
			skipped++
			continue
		}
		chunks = append(chunks, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", path, err)
	}
	if skipped > 0 {
		slog.Debug("skipped short corpus rows", "path", path, "skipped", skipped)
	}

	return NewStore(chunks)
}

package vectorstore

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

// artifact is the on-disk form of a Memory index.
type artifact struct {
	Dim     int
	Vectors [][]float32
}

// Save writes the index to path. The file is written to a temporary
// name and renamed so a crashed write never leaves a half-written
// artifact at the published path.
func (m *Memory) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(artifact{Dim: m.dim, Vectors: m.vectors}); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode index: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close index file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish index file: %w", err)
	}
	return nil
}

// LoadMemory reads a persisted index from path.
func LoadMemory(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var a artifact
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode index file %s: %w", path, err)
	}
	if a.Dim <= 0 {
		return nil, fmt.Errorf("index file %s has invalid dimension %d", path, a.Dim)
	}
	for i, v := range a.Vectors {
		if len(v) != a.Dim {
			return nil, fmt.Errorf("index file %s: vector %d has size %d, expected %d", path, i, len(v), a.Dim)
		}
	}

	return &Memory{dim: a.Dim, vectors: a.Vectors}, nil
}

// FetchArtifact downloads an artifact from blob storage into path if the
// file does not exist yet. The download goes through a temporary file so
// callers never observe a partial artifact.
func FetchArtifact(ctx context.Context, url, path string, timeout time.Duration) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp := path + ".download"
	client := resty.New().SetTimeout(timeout)
	resp, err := client.R().
		SetContext(ctx).
		SetOutput(tmp).
		Get(url)
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("download artifact %s: %w", url, err)
	}
	if resp.IsError() {
		_ = os.Remove(tmp)
		return fmt.Errorf("download artifact %s: status %s", url, resp.Status())
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish artifact %s: %w", path, err)
	}
	return nil
}

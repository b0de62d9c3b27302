package rag

import (
	"sync"

	"rocon-docs-ai/internal/corpus"
	"rocon-docs-ai/internal/vectorstore"
)

// Snapshot pairs a chunk corpus with the vector index built over it.
// Index positions are only meaningful against the corpus in the same
// snapshot, so the two are always published together.
type Snapshot struct {
	Corpus *corpus.Store
	Index  vectorstore.Index
}

// Holder publishes snapshots to concurrent readers. Rebuilds construct
// a snapshot fully off to the side and then Swap it in, so requests
// never observe a half-built index.
type Holder struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewHolder creates an empty holder. Requests served before the first
// Swap fail with NotReady.
func NewHolder() *Holder {
	return &Holder{}
}

// Swap atomically publishes a new snapshot.
func (h *Holder) Swap(snap *Snapshot) {
	h.mu.Lock()
	h.snap = snap
	h.mu.Unlock()
}

// Current returns the published snapshot, or nil if none is available.
func (h *Holder) Current() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// indexedChunk pairs a retrieval chunk with its embedding.
type indexedChunk struct {
	chunk  model.RetrievalChunk
	vector []float32
}

// DocSummary describes one ingested document for audit display.
type DocSummary struct {
	Sections   []string `json:"sections"`
	ChunkCount int      `json:"chunk_count"`
}

// Engine is the in-memory guideline retrieval store. Queries take a read
// lock; Ingest is a full rebuild under the write lock, so a rebuild never
// interleaves with queries against the same index.
type Engine struct {
	mu           sync.RWMutex
	index        []indexedChunk
	rebuildCount int

	chunkSize    int
	chunkOverlap int
}

// Option configures an Engine.
type Option func(*Engine)

// WithChunking overrides the chunk size and overlap.
func WithChunking(size, overlap int) Option {
	return func(e *Engine) {
		e.chunkSize = size
		e.chunkOverlap = overlap
	}
}

// NewEngine creates an empty retrieval engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest replaces the index with chunks built from docs. Re-ingestion is a
// conscious rebuild: the previous index is swapped out atomically, never
// mutated in place. Returns the number of chunks indexed.
func (e *Engine) Ingest(docs []Document) (int, error) {
	if len(docs) == 0 {
		return 0, eris.New("retrieval: ingest with no documents")
	}

	var next []indexedChunk
	for _, doc := range docs {
		for _, sec := range splitSections(doc.Content) {
			for i, text := range chunkText(sec.body, e.chunkSize, e.chunkOverlap) {
				chunkID := fmt.Sprintf("%s_%s_%d_%s", doc.ID, sec.title, i, uuid.New().String()[:8])
				meta := map[string]string{
					"doc_id":      doc.ID,
					"doc_version": doc.Version,
					"section":     sec.title,
				}
				for k, v := range doc.Metadata {
					meta[k] = v
				}
				next = append(next, indexedChunk{
					chunk: model.RetrievalChunk{
						DocID:      doc.ID,
						DocVersion: doc.Version,
						Section:    sec.title,
						ChunkID:    chunkID,
						Text:       text,
						Metadata:   meta,
					},
					vector: embed(text),
				})
			}
		}
	}

	e.mu.Lock()
	e.index = next
	e.rebuildCount++
	rebuilds := e.rebuildCount
	e.mu.Unlock()

	zap.L().Info("retrieval: index rebuilt",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(next)),
		zap.Int("rebuilds", rebuilds),
	)
	return len(next), nil
}

// Query returns the top-k chunks ranked by cosine similarity, descending.
func (e *Engine) Query(ctx context.Context, query string, k int) ([]model.RetrievalChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "retrieval: query")
	}
	if k <= 0 {
		k = 5
	}

	qv := embed(query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.index) == 0 {
		return nil, eris.New("retrieval: index is empty, ingest documents first")
	}

	scored := make([]model.RetrievalChunk, 0, len(e.index))
	for _, ic := range e.index {
		c := ic.chunk
		c.RelevanceScore = cosine(qv, ic.vector)
		scored = append(scored, c)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Summary reports per-document section lists and chunk counts.
func (e *Engine) Summary() map[string]DocSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := make(map[string]map[string]bool)
	counts := make(map[string]int)
	for _, ic := range e.index {
		id := ic.chunk.DocID
		if seen[id] == nil {
			seen[id] = make(map[string]bool)
		}
		seen[id][ic.chunk.Section] = true
		counts[id]++
	}

	out := make(map[string]DocSummary, len(seen))
	for id, sections := range seen {
		names := make([]string, 0, len(sections))
		for s := range sections {
			names = append(names, s)
		}
		sort.Strings(names)
		out[id] = DocSummary{Sections: names, ChunkCount: counts[id]}
	}
	return out
}

// Len returns the number of indexed chunks.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.index)
}

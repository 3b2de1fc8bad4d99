// File path: internal/retriever/retriever.go

// Package retriever answers free-text queries with the closest catalog
// entries. It holds the embedding index and the metadata catalog in memory
// and refuses to serve until both artifacts line up.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrostack/cropdoctor/internal/catalog"
	"github.com/agrostack/cropdoctor/internal/common"
	"github.com/agrostack/cropdoctor/internal/common/telemetry"
	"github.com/agrostack/cropdoctor/internal/vector"
)

// Embedder turns texts into vectors. Satisfied by llm.Provider.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float32, error)
}

// Result is one retrieved case with its similarity score.
type Result struct {
	Score     float32 `json:"score"`
	ClassName string  `json:"class_name"`
	Crop      string  `json:"crop"`
	Condition string  `json:"condition"`
	IsHealthy bool    `json:"is_healthy"`
	ImagePath string  `json:"image_path"`
	Text      string  `json:"text"`
}

// Info reports the state of the loaded artifacts for status endpoints.
type Info struct {
	Ready      bool   `json:"ready"`
	Documents  int    `json:"documents"`
	Dimension  int    `json:"dimension"`
	IndexModel string `json:"index_model"`
	LoadError  string `json:"load_error,omitempty"`
}

// Retriever serves similarity search over a loaded index and catalog. The
// index and entry map are read-only after construction, so Search is safe
// for concurrent use.
type Retriever struct {
	index    *vector.Index
	entries  map[int64]catalog.Entry
	embedder Embedder
	loadErr  error
}

// New builds a retriever from already-loaded artifacts. It validates that
// every vector in the index has a matching catalog entry and that the row
// counts agree; a misaligned pair yields a permanently not-ready retriever
// rather than one that silently returns the wrong metadata.
func New(idx *vector.Index, entries []catalog.Entry, embedder Embedder) (*Retriever, error) {
	if idx == nil {
		return nil, errors.New("retriever: nil index")
	}
	if embedder == nil {
		return nil, errors.New("retriever: nil embedder")
	}
	if idx.Len() != len(entries) {
		return nil, fmt.Errorf("retriever: index has %d vectors but catalog has %d entries", idx.Len(), len(entries))
	}
	byID := make(map[int64]catalog.Entry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}
	for _, id := range idx.IDs {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("retriever: index id %d missing from catalog", id)
		}
	}
	return &Retriever{index: idx, entries: byID, embedder: embedder}, nil
}

// Load reads both artifacts from disk and assembles a retriever. It never
// returns an error: on any failure it logs the cause and returns a
// retriever that reports not-ready and answers every search with no
// results, so the server can still start and expose its status.
func Load(ctx context.Context, indexPath string, store *catalog.Store, embedder Embedder) *Retriever {
	logger := common.Logger()
	if embedder == nil {
		err := errors.New("no embedding backend available")
		logger.Warn("retriever: not ready", "error", err)
		return &Retriever{loadErr: err}
	}
	idx, err := vector.Load(indexPath)
	if err != nil {
		logger.Warn("retriever: index unavailable", "path", indexPath, "error", err)
		return &Retriever{loadErr: err, embedder: embedder}
	}
	entries, err := store.All(ctx)
	if err != nil {
		logger.Warn("retriever: catalog unavailable", "error", err)
		return &Retriever{loadErr: err, embedder: embedder}
	}
	r, err := New(idx, entries, embedder)
	if err != nil {
		logger.Warn("retriever: artifacts misaligned", "error", err)
		return &Retriever{loadErr: err, embedder: embedder}
	}
	logger.Info("retriever: loaded", "documents", idx.Len(), "dimension", idx.Dim, "model", idx.Model)
	return r
}

// Ready reports whether the retriever can serve queries.
func (r *Retriever) Ready() bool {
	return r != nil && r.index != nil && r.loadErr == nil
}

// Info summarizes the loaded artifacts.
func (r *Retriever) Info() Info {
	info := Info{Ready: r.Ready()}
	if r.index != nil {
		info.Documents = r.index.Len()
		info.Dimension = r.index.Dim
		info.IndexModel = r.index.Model
	}
	if r.loadErr != nil {
		info.LoadError = r.loadErr.Error()
	}
	return info
}

// Search embeds the query and returns up to topK matches ordered by
// descending similarity. Any failure along the way degrades to an empty
// result set; callers decide how to fall back.
func (r *Retriever) Search(ctx context.Context, query string, topK int) []Result {
	start := time.Now()
	logger := common.Logger()
	if !r.Ready() {
		logger.Warn("retriever: search refused, not ready")
		telemetry.RecordSearch(0, time.Since(start))
		return nil
	}
	if topK <= 0 {
		topK = 5
	}
	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vecs) == 0 {
		logger.Warn("retriever: query embedding failed", "error", err)
		telemetry.RecordSearch(0, time.Since(start))
		return nil
	}
	queryVec := vector.Normalize(vecs[0])
	if len(queryVec) != r.index.Dim {
		logger.Warn("retriever: query dimension mismatch", "got", len(queryVec), "want", r.index.Dim)
		telemetry.RecordSearch(0, time.Since(start))
		return nil
	}
	matches := r.index.Search(queryVec, topK)
	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		entry, ok := r.entries[match.ID]
		if !ok {
			continue
		}
		results = append(results, Result{
			Score:     match.Score,
			ClassName: entry.ClassName,
			Crop:      entry.Crop,
			Condition: entry.Condition,
			IsHealthy: entry.IsHealthy,
			ImagePath: entry.ImagePath,
			Text:      entry.Text,
		})
	}
	telemetry.RecordSearch(len(results), time.Since(start))
	logger.Debug("retriever: search complete", "results", len(results), "top_k", topK)
	return results
}

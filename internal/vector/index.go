// File path: internal/vector/index.go

// Package vector provides the flat embedding index the retrieval service
// serves from. Vectors are L2-normalized at insert time, so inner-product
// search is cosine similarity. The index is built once, offline, and loaded
// wholesale into memory at startup; nothing mutates it while serving.
package vector

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// CurrentIndexVersion is the persisted format version. Bump on breaking
// format changes so stale artifacts are rejected at load.
const CurrentIndexVersion = 1

var (
	ErrIndexNotFound      = errors.New("vector index not found")
	ErrUnsupportedVersion = errors.New("unsupported index version")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
)

// Index is an append-at-build-time collection of normalized vectors. Each row
// carries the catalog entry id it was built from; the retriever validates the
// ids against the metadata table before serving.
type Index struct {
	Version   int
	Model     string
	Dim       int
	CreatedAt time.Time
	IDs       []int64
	Vectors   [][]float32
}

// Match is one search hit: the row position, the catalog id stored for that
// row, and the inner-product score.
type Match struct {
	Row   int
	ID    int64
	Score float32
}

// New creates an empty index for vectors of the given dimensionality,
// stamped with the embedding model that must be used for queries against it.
func New(model string, dim int) *Index {
	return &Index{
		Version:   CurrentIndexVersion,
		Model:     model,
		Dim:       dim,
		CreatedAt: time.Now().UTC(),
	}
}

// Add normalizes and appends a vector for the given catalog id.
func (idx *Index) Add(id int64, vec []float32) error {
	if len(vec) != idx.Dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), idx.Dim)
	}
	idx.IDs = append(idx.IDs, id)
	idx.Vectors = append(idx.Vectors, Normalize(vec))
	return nil
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Vectors)
}

// Search returns up to limit matches ordered by descending score. Ties keep
// row order, so the first-indexed entry wins.
func (idx *Index) Search(query []float32, limit int) []Match {
	if idx == nil || limit <= 0 || len(query) != idx.Dim {
		return nil
	}
	matches := make([]Match, 0, len(idx.Vectors))
	for row, vec := range idx.Vectors {
		var dot float32
		for i := range vec {
			dot += query[i] * vec[i]
		}
		matches = append(matches, Match{Row: row, ID: idx.IDs[row], Score: dot})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Normalize returns the L2-normalized copy of vec. Zero vectors are returned
// unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	if norm == 0 {
		copy(out, vec)
		return out
	}
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// Save persists the index with gob encoding, writing through a temp file so
// a crash never leaves a truncated artifact behind.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(idx); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encode index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename temp index: %w", err)
	}
	return nil
}

// Load reads a persisted index and rejects incompatible format versions.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	var idx Index
	if err := gob.NewDecoder(f).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if idx.Version != CurrentIndexVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, idx.Version, CurrentIndexVersion)
	}
	if len(idx.IDs) != len(idx.Vectors) {
		return nil, fmt.Errorf("corrupt index: %d ids for %d vectors", len(idx.IDs), len(idx.Vectors))
	}
	return &idx, nil
}

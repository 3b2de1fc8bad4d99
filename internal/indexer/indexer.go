// File path: internal/indexer/indexer.go

// Package indexer builds the retrieval artifacts from a labeled leaf-image
// corpus: one embedding per image plus a metadata row keyed by the same id.
// The folder name is the label; the image bytes themselves are not embedded,
// only the descriptive text derived from the label.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
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

const defaultBatchSize = 64

// Config controls a corpus build.
type Config struct {
	DataDir   string
	IndexPath string
	Model     string
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	return c
}

// Stats summarizes a completed build.
type Stats struct {
	ClassDirs int           `json:"class_dirs"`
	Images    int           `json:"images"`
	Indexed   int           `json:"indexed"`
	Skipped   int           `json:"skipped"`
	Dimension int           `json:"dimension"`
	Duration  time.Duration `json:"duration"`
}

type candidate struct {
	label catalog.Label
	path  string
	text  string
}

// Build walks the corpus, embeds every image's descriptive text, and writes
// both artifacts. Ids are assigned sequentially after skips so the index and
// the catalog always agree row for row; a failed embedding drops the image,
// never shifts another image's metadata.
func Build(ctx context.Context, cfg Config, embedder Embedder, store *catalog.Store, labeler *catalog.Labeler) (Stats, error) {
	cfg = cfg.withDefaults()
	logger := common.Logger()
	start := time.Now()

	candidates, classDirs, err := collectCandidates(cfg.DataDir, labeler)
	if err != nil {
		return Stats{}, err
	}
	logger.Info("indexer: corpus scanned", "class_dirs", classDirs, "images", len(candidates))
	if len(candidates) == 0 {
		return Stats{}, fmt.Errorf("no images found under %s", cfg.DataDir)
	}

	var idx *vector.Index
	var entries []catalog.Entry
	skipped := 0
	for batchStart := 0; batchStart < len(candidates); batchStart += cfg.BatchSize {
		end := batchStart + cfg.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[batchStart:end]
		texts := make([]string, len(batch))
		for i, cand := range batch {
			texts[i] = cand.text
		}
		vecs, err := embedder.Embed(ctx, texts)
		if err != nil || len(vecs) != len(batch) {
			logger.Warn("indexer: batch embedding failed, retrying per item", "batch_start", batchStart, "error", err)
			vecs = embedOneByOne(ctx, embedder, texts)
		}
		for i, vec := range vecs {
			if vec == nil {
				skipped++
				logger.Warn("indexer: skipping image, embedding unavailable", "path", batch[i].path)
				continue
			}
			if idx == nil {
				idx = vector.New(cfg.Model, len(vec))
			}
			id := int64(len(entries) + 1)
			if err := idx.Add(id, vec); err != nil {
				skipped++
				logger.Warn("indexer: skipping image", "path", batch[i].path, "error", err)
				continue
			}
			entries = append(entries, catalog.Entry{
				ID:        id,
				ClassName: batch[i].label.ClassName,
				Crop:      batch[i].label.Crop,
				Condition: batch[i].label.Condition,
				IsHealthy: batch[i].label.IsHealthy,
				ImagePath: batch[i].path,
				Text:      batch[i].text,
			})
		}
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
	}
	if idx == nil || idx.Len() == 0 {
		return Stats{}, fmt.Errorf("embedding failed for every image")
	}

	if err := idx.Save(cfg.IndexPath); err != nil {
		return Stats{}, fmt.Errorf("save index: %w", err)
	}
	if err := store.Replace(ctx, entries); err != nil {
		return Stats{}, fmt.Errorf("write catalog: %w", err)
	}
	telemetry.RecordIndexed(len(entries), skipped)

	stats := Stats{
		ClassDirs: classDirs,
		Images:    len(candidates),
		Indexed:   len(entries),
		Skipped:   skipped,
		Dimension: idx.Dim,
		Duration:  time.Since(start),
	}
	logger.Info("indexer: build complete",
		"indexed", stats.Indexed, "skipped", stats.Skipped,
		"dimension", stats.Dimension, "duration", stats.Duration)
	return stats, nil
}

// collectCandidates walks the class directories in sorted order and gathers
// readable images with their derived labels.
func collectCandidates(dataDir string, labeler *catalog.Labeler) ([]candidate, int, error) {
	logger := common.Logger()
	dirEntries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, 0, fmt.Errorf("read data dir: %w", err)
	}
	var dirs []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)

	var candidates []candidate
	for _, dir := range dirs {
		label := labeler.Parse(dir)
		text := catalog.DescriptiveText(label)
		imageEntries, err := os.ReadDir(filepath.Join(dataDir, dir))
		if err != nil {
			logger.Warn("indexer: skipping unreadable class dir", "dir", dir, "error", err)
			continue
		}
		var names []string
		for _, img := range imageEntries {
			if img.IsDir() || !isImageFile(img.Name()) {
				continue
			}
			names = append(names, img.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			path := filepath.Join(dataDir, dir, name)
			if f, err := os.Open(path); err != nil {
				logger.Warn("indexer: skipping unreadable image", "path", path, "error", err)
				continue
			} else {
				f.Close()
			}
			candidates = append(candidates, candidate{label: label, path: path, text: text})
		}
	}
	return candidates, len(dirs), nil
}

// embedOneByOne retries a failed batch item by item. Items that still fail
// come back nil and get skipped by the caller.
func embedOneByOne(ctx context.Context, embedder Embedder, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vecs, err := embedder.Embed(ctx, []string{text})
		if err != nil || len(vecs) != 1 {
			continue
		}
		out[i] = vecs[0]
	}
	return out
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

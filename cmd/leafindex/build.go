// File path: cmd/leafindex/build.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agrostack/cropdoctor/internal/catalog"
	"github.com/agrostack/cropdoctor/internal/common"
	"github.com/agrostack/cropdoctor/internal/indexer"
	"github.com/agrostack/cropdoctor/internal/llm"
)

var (
	buildDataDir   string
	buildIndexPath string
	buildCatalog   string
	buildAliases   string
	buildBatchSize int
)

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildDataDir, "data-dir", "plant_disease_data", "root directory of class-labeled image folders")
	buildCmd.Flags().StringVar(&buildIndexPath, "index", "data/leaf_index.gob", "output path for the embedding index")
	buildCmd.Flags().StringVar(&buildCatalog, "catalog", "data/catalog.db", "output path for the SQLite catalog")
	buildCmd.Flags().StringVar(&buildAliases, "aliases", "", "optional YAML file with crop alias overrides")
	buildCmd.Flags().IntVar(&buildBatchSize, "batch-size", 64, "number of texts embedded per request")
}

// buildResult is the JSON summary printed after a build.
type buildResult struct {
	Status          string  `json:"status"`
	ClassDirs       int     `json:"class_dirs"`
	ImagesFound     int     `json:"images_found"`
	ImagesIndexed   int     `json:"images_indexed"`
	ImagesSkipped   int     `json:"images_skipped"`
	Dimension       int     `json:"dimension"`
	DurationSeconds float64 `json:"duration_seconds"`
	Model           string  `json:"model"`
	IndexPath       string  `json:"index_path"`
	CatalogPath     string  `json:"catalog_path"`
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or rebuild the retrieval artifacts from an image corpus",
	Long: `Walk the corpus directory, derive a label from each class folder name,
embed one descriptive sentence per image, and write the embedding index and
the metadata catalog. Requires an embedding backend: set OPENAI_API_KEY or
run a local Ollama daemon.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := common.Logger()

	provider := llm.NewProvider()
	if provider == nil {
		return fmt.Errorf("no embedding backend available: set OPENAI_API_KEY or start Ollama")
	}

	labeler := catalog.NewLabeler()
	if strings.TrimSpace(buildAliases) != "" {
		if err := labeler.LoadOverrides(buildAliases); err != nil {
			return err
		}
	}

	store, err := catalog.Open(buildCatalog)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()

	stats, err := indexer.Build(ctx, indexer.Config{
		DataDir:   buildDataDir,
		IndexPath: buildIndexPath,
		Model:     provider.Name() + "/" + provider.Model(),
		BatchSize: buildBatchSize,
	}, provider, store, labeler)
	if err != nil {
		logger.Error("leafindex: build failed", "error", err)
		return err
	}

	result := buildResult{
		Status:          "ok",
		ClassDirs:       stats.ClassDirs,
		ImagesFound:     stats.Images,
		ImagesIndexed:   stats.Indexed,
		ImagesSkipped:   stats.Skipped,
		Dimension:       stats.Dimension,
		DurationSeconds: stats.Duration.Seconds(),
		Model:           provider.Name() + "/" + provider.Model(),
		IndexPath:       buildIndexPath,
		CatalogPath:     buildCatalog,
	}
	return json.NewEncoder(os.Stdout).Encode(result)
}

// File path: cmd/leafindex/check.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrostack/cropdoctor/internal/catalog"
	"github.com/agrostack/cropdoctor/internal/vector"
)

var (
	checkIndexPath string
	checkCatalog   string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkIndexPath, "index", "data/leaf_index.gob", "path to the embedding index")
	checkCmd.Flags().StringVar(&checkCatalog, "catalog", "data/catalog.db", "path to the SQLite catalog")
}

type checkResult struct {
	Status    string `json:"status"`
	Vectors   int    `json:"vectors"`
	Entries   int    `json:"entries"`
	Dimension int    `json:"dimension"`
	Model     string `json:"model"`
	Problem   string `json:"problem,omitempty"`
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the index and catalog artifacts are aligned",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	idx, err := vector.Load(checkIndexPath)
	if err != nil {
		return reportProblem(checkResult{Status: "error"}, fmt.Sprintf("load index: %v", err))
	}
	result := checkResult{Vectors: idx.Len(), Dimension: idx.Dim, Model: idx.Model}

	store, err := catalog.Open(checkCatalog)
	if err != nil {
		return reportProblem(result, fmt.Sprintf("open catalog: %v", err))
	}
	defer store.Close()

	entries, err := store.All(ctx)
	if err != nil {
		return reportProblem(result, fmt.Sprintf("read catalog: %v", err))
	}
	result.Entries = len(entries)

	if idx.Len() != len(entries) {
		return reportProblem(result, fmt.Sprintf("index has %d vectors but catalog has %d entries", idx.Len(), len(entries)))
	}
	known := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		known[entry.ID] = struct{}{}
	}
	for _, id := range idx.IDs {
		if _, ok := known[id]; !ok {
			return reportProblem(result, fmt.Sprintf("index id %d missing from catalog", id))
		}
	}

	result.Status = "ok"
	return json.NewEncoder(os.Stdout).Encode(result)
}

func reportProblem(result checkResult, problem string) error {
	result.Status = "error"
	result.Problem = problem
	_ = json.NewEncoder(os.Stdout).Encode(result)
	return fmt.Errorf("%s", problem)
}

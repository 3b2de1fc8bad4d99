// File path: cmd/leafindex/main.go

// Package main provides the leafindex CLI, which builds and checks the
// retrieval artifacts offline.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agrostack/cropdoctor/internal/common"
)

func main() {
	if err := godotenv.Load(); err != nil {
		common.Logger().Debug("leafindex: .env file not loaded", "error", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "leafindex",
	Short: "Build and verify the leaf-disease retrieval artifacts",
	Long: `leafindex turns a labeled leaf-image corpus into the two artifacts the
cropdoctor server loads at startup: a gob-encoded embedding index and a
SQLite metadata catalog keyed by the same ids.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

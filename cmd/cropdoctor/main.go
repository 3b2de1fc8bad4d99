// File path: cmd/cropdoctor/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/agrostack/cropdoctor/internal/api"
	"github.com/agrostack/cropdoctor/internal/catalog"
	"github.com/agrostack/cropdoctor/internal/common"
	"github.com/agrostack/cropdoctor/internal/llm"
	"github.com/agrostack/cropdoctor/internal/recommend"
	"github.com/agrostack/cropdoctor/internal/retriever"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("cropdoctor: .env file not loaded", "error", err)
	} else {
		logger.Info("cropdoctor: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	indexPath := flag.String("index", defaultIndexPath(), "path to the embedding index")
	catalogPath := flag.String("catalog", defaultCatalogPath(), "path to the SQLite catalog database")
	generateTimeout := flag.Duration("generate-timeout", 60*time.Second, "timeout for a single generator call")
	flag.Parse()

	logger.Info("cropdoctor: startup initiated", "addr", *addr, "index", *indexPath, "catalog", *catalogPath)

	store, err := catalog.Open(*catalogPath)
	if err != nil {
		logger.Error("cropdoctor: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer store.Close()

	provider := llm.NewProvider()
	if provider == nil {
		logger.Warn("cropdoctor: serving without a generator, recommendations use fallbacks")
	}

	var embedder retriever.Embedder
	if provider != nil {
		embedder = provider
	}
	retr := retriever.Load(ctx, *indexPath, store, embedder)
	synthesizer := recommend.NewSynthesizer(provider, *generateTimeout)
	server := api.NewServer(retr, synthesizer)

	logger.Info("cropdoctor: listening", "addr", *addr, "ready", retr.Ready())
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		logger.Error("cropdoctor: server stopped", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}
}

func defaultIndexPath() string {
	if env := strings.TrimSpace(os.Getenv("CROPDOCTOR_INDEX_PATH")); env != "" {
		return env
	}
	return filepath.Join("data", "leaf_index.gob")
}

func defaultCatalogPath() string {
	if env := strings.TrimSpace(os.Getenv("CATALOG_DB_PATH")); env != "" {
		return env
	}
	return filepath.Join("data", "catalog.db")
}

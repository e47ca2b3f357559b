package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"menusearch/internal/catalog"
	"menusearch/internal/config"
	"menusearch/internal/embedding"
	"menusearch/internal/embedding/openai"
	"menusearch/internal/service"
	"menusearch/internal/vectorstore"
	"menusearch/internal/vectorstore/memory"
	"menusearch/internal/vectorstore/qdrant"
)

// menu-index performs a full rebuild of the menu collection from the
// configured relational catalog. It is meant to be run out-of-band by an
// operator; re-running it with an unchanged catalog is harmless.
func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/menusearch/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	opener := func(ctx context.Context) (catalog.Reader, error) {
		return catalog.Open(ctx, cfg.Catalog)
	}
	builder := service.NewBuilder(opener, newEmbedder(cfg), newIndex(cfg),
		cfg.VectorStore.Collection, slog.Default())

	stats, err := builder.Rebuild(context.Background())
	if err != nil {
		log.Fatalf("rebuild failed: %v", err)
	}
	fmt.Printf("indexed %d menu items into collection %q\n", stats.ItemsIndexed, cfg.VectorStore.Collection)
}

func newEmbedder(cfg *config.AppConfig) embedding.Embedder {
	switch cfg.Embedder.Type {
	case "openai", "":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			Provider:   "openai",
			BaseURL:    cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:  cfg.Embedder.OpenAI.APIKeyEnv,
			Model:      cfg.Embedder.OpenAI.Model,
			Dimensions: cfg.Embedder.OpenAI.Dimensions,
			Timeout:    time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		return client
	case "azure":
		if cfg.Embedder.Azure == nil {
			log.Fatalf("azure embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			Provider:   "azure",
			Endpoint:   cfg.Embedder.Azure.Endpoint,
			APIKeyEnv:  cfg.Embedder.Azure.APIKeyEnv,
			Model:      cfg.Embedder.Azure.Deployment,
			APIVersion: cfg.Embedder.Azure.APIVersion,
			Timeout:    time.Duration(cfg.Embedder.Azure.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("azure embedder init failed: %v", err)
		}
		return client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
		return nil
	}
}

func newIndex(cfg *config.AppConfig) vectorstore.Index {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewStore()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		return qdrant.NewStore(qdrant.Config{
			URL:     cfg.VectorStore.Qdrant.URL,
			APIKey:  os.Getenv(cfg.VectorStore.Qdrant.APIKeyEnv),
			Timeout: time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
		return nil
	}
}

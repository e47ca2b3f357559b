package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"menusearch/internal/config"
	"menusearch/internal/embedding"
	"menusearch/internal/embedding/openai"
	"menusearch/internal/service"
	"menusearch/internal/tui"
	"menusearch/internal/vectorstore"
	"menusearch/internal/vectorstore/memory"
	"menusearch/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var query string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/menusearch/config.yaml if not provided)")
	flag.StringVar(&query, "query", "", "Run a single query and exit instead of starting the TUI")
	flag.BoolVar(&verbose, "verbose", false, "Print the diagnostic trace after a -query run")
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

	emb := newEmbedder(cfg)
	index := newIndex(cfg)
	resolver := service.NewResolver(emb, index, cfg.VectorStore.Collection,
		*cfg.Search.ScoreThreshold, cfg.Search.TopK, slog.Default())

	if query != "" {
		q := strings.TrimSpace(query)
		if q == "" {
			log.Fatalf("query is empty")
		}
		result, trace, err := resolver.Resolve(context.Background(), q)
		if verbose && trace != nil {
			fmt.Fprintln(os.Stderr, trace.String())
		}
		if err != nil {
			log.Fatalf("query failed: %v", err)
		}
		if result.Matched {
			fmt.Printf("%s (score %.4f)\n", result.Hit.Name, result.Hit.Score)
		} else {
			fmt.Println("no match")
		}
		return
	}

	m := tui.New(resolver)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
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

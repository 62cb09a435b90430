package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/semsync/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/semsync/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/semsync/internal/adapters/driven/embedding/ratelimit"
	llmopenai "github.com/custodia-labs/semsync/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/semsync/internal/adapters/driven/logquery/loki"
	"github.com/custodia-labs/semsync/internal/adapters/driven/logquery/sample"
	"github.com/custodia-labs/semsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/semsync/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/semsync/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/semsync/internal/config"
	"github.com/custodia-labs/semsync/internal/core/ports/driven"
	"github.com/custodia-labs/semsync/internal/core/ports/driving"
	"github.com/custodia-labs/semsync/internal/core/services"
	"github.com/custodia-labs/semsync/internal/sources/jsonlog"
	"github.com/custodia-labs/semsync/internal/sources/logwindow"
	"github.com/custodia-labs/semsync/internal/sources/pdf"
)

// app bundles the wired services for one command invocation.
type app struct {
	store    *sqlite.Store
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	llm      driven.LLMService

	ingestor driving.Ingestor
	searcher driving.Searcher
	analyzer driving.Analyzer

	// watchDirs are the filesystem source directories, for --watch.
	watchDirs []string
}

// buildApp loads config and wires every adapter and service. withChat also
// wires the LLM for analysis.
func buildApp(ctx context.Context, withChat bool) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	a := &app{}

	a.embedder, err = buildEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	a.index, err = buildIndex(ctx, cfg.Vector, a.embedder.Dimensions())
	if err != nil {
		a.Close()
		return nil, err
	}

	a.store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		a.Close()
		return nil, err
	}

	srcs, dirs, err := buildSources(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.watchDirs = dirs

	a.ingestor = services.NewIngestOrchestrator(a.store.Ledger(), a.index, a.embedder, srcs...)
	a.searcher = services.NewSearchService(a.embedder, a.index)

	if withChat {
		a.llm, err = llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.Chat.APIKey,
			BaseURL: cfg.Chat.BaseURL,
			Model:   cfg.Chat.Model,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("chat service: %w", err)
		}
		a.analyzer = services.NewAnalysisService(a.searcher, a.llm)
	}

	return a, nil
}

// Close releases all resources, best effort.
func (a *app) Close() {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.index != nil {
		_ = a.index.Close()
	}
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
}

func buildEmbedder(cfg config.EmbeddingConfig) (driven.EmbeddingService, error) {
	var (
		embedder driven.EmbeddingService
		err      error
	)
	switch cfg.Provider {
	case "openai":
		embedder, err = openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding service: %w", err)
		}
	case "ollama", "":
		embedder = ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	if cfg.RatePerSecond > 0 {
		embedder = ratelimit.Wrap(embedder, cfg.RatePerSecond, cfg.Burst)
	}
	return embedder, nil
}

func buildIndex(ctx context.Context, cfg config.VectorConfig, dimensions int) (driven.VectorIndex, error) {
	switch cfg.Provider {
	case "qdrant":
		index, err := qdrant.NewIndex(qdrant.Config{
			URL:        cfg.URL,
			APIKey:     cfg.APIKey,
			Collection: cfg.Collection,
		})
		if err != nil {
			return nil, fmt.Errorf("vector index: %w", err)
		}
		if err := index.Init(ctx, dimensions); err != nil {
			return nil, fmt.Errorf("vector index init: %w", err)
		}
		return index, nil
	case "memory", "":
		return memory.NewIndex(), nil
	default:
		return nil, fmt.Errorf("unknown vector provider %q", cfg.Provider)
	}
}

// buildSources registers sources in config order: PDF directories, JSON log
// directories, then log windows. The returned dirs are the filesystem
// paths eligible for --watch.
func buildSources(cfg *config.Config) ([]driven.ContentSource, []string, error) {
	var (
		srcs []driven.ContentSource
		dirs []string
	)
	workers := cfg.Embedding.Workers

	for _, sc := range cfg.Sources.PDF {
		src := pdf.New(sc.Path, pdf.WithWorkers(workers))
		srcs = append(srcs, src)
		dirs = append(dirs, src.WatchPath())
	}
	for _, sc := range cfg.Sources.JSONLog {
		src := jsonlog.New(sc.Path, jsonlog.WithWorkers(workers))
		srcs = append(srcs, src)
		dirs = append(dirs, src.WatchPath())
	}
	for _, sc := range cfg.Sources.LogWindow {
		querier, err := buildQuerier(sc)
		if err != nil {
			return nil, nil, err
		}
		srcs = append(srcs, logwindow.New(querier, sc.Selector,
			logwindow.WithLookback(time.Duration(sc.LookbackHours)*time.Hour),
			logwindow.WithWorkers(workers),
		))
	}
	return srcs, dirs, nil
}

func buildQuerier(sc config.LogWindowSource) (driven.LogQuerier, error) {
	if sc.Sample {
		return sample.NewQuerier(sc.SampleSeed), nil
	}
	querier, err := loki.NewClient(loki.Config{URL: sc.URL})
	if err != nil {
		return nil, fmt.Errorf("log querier for %q: %w", sc.Selector, err)
	}
	return querier, nil
}

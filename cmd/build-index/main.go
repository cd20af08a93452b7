package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/config"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/ingest"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/logger"
	"github.com/AndresFMC/RAG-powered-AI-assistant/internal/providers"
)

func main() {
	dataFlag := flag.String("data", "", "documents root, one subdirectory per country (default: DATA_DIR)")
	countriesFlag := flag.String("countries", "", "comma-separated subset of countries to index (default: all configured)")
	rebuildFlag := flag.Bool("rebuild", false, "delete each country's namespace before re-indexing")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := logger.New(logger.WithDebug(*debugFlag))
	ctx := context.Background()

	cfg := config.Load()
	if *dataFlag != "" {
		cfg.DataDir = *dataFlag
	}

	countries := cfg.Countries
	if *countriesFlag != "" {
		countries = nil
		for _, c := range strings.Split(*countriesFlag, ",") {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				countries = append(countries, c)
			}
		}
	}

	components, err := providers.Build(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init providers", "error", err)
		os.Exit(1)
	}

	if components.Pg != nil {
		if err := components.Pg.EnsureSchema(ctx); err != nil {
			log.Error("failed to prepare pgvector schema", "error", err)
			os.Exit(1)
		}
	}

	builder := ingest.NewBuilder(
		components.Store,
		components.Embeddings,
		cfg.DataDir,
		countries,
		cfg.ChunkSize,
		cfg.ChunkOverlap,
		log,
		ingest.WithRebuild(*rebuildFlag),
	)

	report := builder.Run(ctx)
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}

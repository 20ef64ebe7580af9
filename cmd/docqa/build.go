package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/cache"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// build wires the driven adapters into the services the CLI uses.
func build(opts cli.Options) (*cli.Services, error) {
	configDir, err := resolveConfigDir(opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	aiServices := ai.NewServices(settings)
	for _, w := range aiServices.Warnings {
		logger.Debug("%s", w)
	}

	store, err := openStore(opts)
	if err != nil {
		aiServices.Close()
		return nil, err
	}
	chunks := cache.New(store)

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		_ = chunks.Close() //nolint:errcheck // already failing
		aiServices.Close()
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	locks := services.NewTitleLocker()
	embedder := services.NewEmbedder(aiServices.Embedding,
		services.WithRateLimit(settings.Ingest.EmbedRatePerSecond, settings.Ingest.EmbedConcurrency))

	ingest := services.NewIngestService(
		chunks,
		embedder,
		plaintext.New(),
		chunker.New(chunker.WithMaxChars(settings.Ingest.UploadChunkSize)),
		chunker.New(chunker.WithMaxChars(settings.Ingest.AdHocChunkSize)),
		locks,
	)
	ingest.SetConcurrency(settings.Ingest.EmbedConcurrency)

	retrieval := services.NewRetrievalService(embedder, chunks)

	synthesizer := services.NewSynthesizer(aiServices.LLM)
	synthesizer.SetPromptStore(prompts)

	return &cli.Services{
		Ingest:            ingest,
		Retrieval:         retrieval,
		Ask:               services.NewAskService(retrieval, synthesizer, settings.Retrieval),
		Document:          services.NewDocumentService(chunks, locks),
		Settings:          settingsService,
		RetrievalSettings: settings.Retrieval,
		Close: func() {
			if err := chunks.Close(); err != nil {
				logger.Warn("close store: %v", err)
			}
			aiServices.Close()
		},
	}, nil
}

func openStore(opts cli.Options) (driven.ChunkStore, error) {
	if opts.Ephemeral {
		logger.Debug("using in-memory store")
		return memory.NewChunkStore(), nil
	}
	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

func resolveConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".docqa"), nil
}

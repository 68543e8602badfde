// Command deckqa answers questions about slide decks and documents.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/deckqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/deckqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/deckqa/internal/adapters/driven/index/flat"
	"github.com/custodia-labs/deckqa/internal/adapters/driven/ocr/tesseract"
	artifactstore "github.com/custodia-labs/deckqa/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/deckqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deckqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/deckqa/internal/adapters/driven/tokenizer/tiktoken"
	transcribe "github.com/custodia-labs/deckqa/internal/adapters/driven/transcribe/openai"
	"github.com/custodia-labs/deckqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/deckqa/internal/core/domain"
	"github.com/custodia-labs/deckqa/internal/core/ports/driven"
	"github.com/custodia-labs/deckqa/internal/core/services"
	"github.com/custodia-labs/deckqa/internal/extractors"
	"github.com/custodia-labs/deckqa/internal/logger"
	"github.com/custodia-labs/deckqa/internal/observability"
	"github.com/custodia-labs/deckqa/internal/postprocessors/chunker"
	"github.com/custodia-labs/deckqa/internal/vision"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var (
		configStore driven.ConfigStore
		configDir   string
	)
	if fileStore, err := file.NewConfigStore(""); err != nil {
		logger.Warn("Config file unavailable, using defaults: %v", err)
		configStore = memory.NewConfigStore(map[string]any{
			"data_dir": filepath.Join(os.TempDir(), "deckqa"),
		})
	} else {
		configStore = fileStore
		configDir = filepath.Dir(fileStore.Path())
	}

	// Variables already set in the environment win over both files.
	if configDir != "" {
		_ = godotenv.Load(filepath.Join(configDir, cli.EnvFileName))
	}
	_ = godotenv.Load()

	settings := file.LoadSettings(configStore)

	tracer, err := observability.InitTracing(ctx, settings.Tracing, version)
	if err != nil {
		logger.Warn("Tracing disabled: %v", err)
	} else {
		defer func() { _ = tracer.Shutdown(context.Background()) }()
	}

	aiServices := ai.Init(ctx, settings)
	defer aiServices.Close()

	catalog, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open document catalog: %v\n", err)
		return err
	}
	defer func() { _ = catalog.Close() }()

	artifacts := artifactstore.NewArtifactStore(settings.DataDir)
	sessions := memory.NewSessionStore()

	dispatcher := extractors.NewDefault(extractorDeps(settings))

	var promptStore driven.PromptStore
	if configDir != "" {
		prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
		if err != nil {
			logger.Warn("Custom prompts disabled: %v", err)
		} else {
			promptStore = prompts
		}
	}

	var counter driven.TokenCounter = services.RuneCounter{}
	if tk, err := tiktoken.New(tiktoken.DefaultEncoding); err != nil {
		logger.Debug("Falling back to rune token counting: %v", err)
	} else {
		counter = tk
	}

	builder := services.NewIndexBuilder(
		chunker.New(chunker.WithWindows(settings.ChunkWindows)),
		aiServices.Embedding,
		flat.Codec{},
		artifacts,
	)
	ingest := services.NewIngestService(dispatcher, builder, catalog, artifacts, sessions)

	qa := services.NewQAService(sessions, builder,
		services.NewRetriever(aiServices.Embedding, settings.RetrievalK),
		services.NewSynthesizer(aiServices.Chat, promptStore, counter, settings.TokenBudget),
		services.NewAttributor(),
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingest:    ingest,
		QA:        qa,
		Config:    configStore,
		Validator: ai.NewConfigValidator(),
		Settings:  settings,
		Warnings:  aiServices.Warnings,
	})
	return cli.Execute(ctx)
}

// extractorDeps builds the OCR, table detection and transcription
// capabilities from settings.
func extractorDeps(settings domain.Settings) extractors.Deps {
	primary := tesseract.New(tesseract.Config{
		Binary:   settings.OCR.TesseractPath,
		Language: settings.OCR.Language,
	})
	secondary := tesseract.New(tesseract.Config{
		Binary:   settings.OCR.TesseractPath,
		Language: settings.OCR.Language,
		ForcePSM: driven.PageSegMode(settings.OCR.SecondaryPSM),
	})

	deps := extractors.Deps{
		Reader:      vision.NewClassifier(primary, vision.ConfigFromSettings(settings.Vision)),
		Primary:     primary,
		Secondary:   secondary,
		MinSignal:   settings.OCR.MinSignal,
		FFmpegPath:  settings.Transcription.FFmpegPath,
		MaxFileSize: settings.MaxFileSize,
	}

	if settings.Transcription.IsConfigured() {
		t, err := transcribe.NewTranscriber(transcribe.Config{
			APIKey:  settings.Transcription.APIKey,
			BaseURL: settings.Transcription.BaseURL,
			Model:   settings.Transcription.Model,
		})
		if err != nil {
			logger.Warn("Transcription disabled: %v", err)
		} else {
			deps.Transcriber = t
		}
	}
	return deps
}

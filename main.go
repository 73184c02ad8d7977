package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"podcast-archive/pkg/config"
	"podcast-archive/pkg/download"
	"podcast-archive/pkg/feed"
	"podcast-archive/pkg/openai"
	"podcast-archive/pkg/pipeline"
	"podcast-archive/pkg/publisher"
	"podcast-archive/pkg/retry"
	"podcast-archive/pkg/store"
	"podcast-archive/pkg/summarize"
	"podcast-archive/pkg/transcribe"
)

const (
	logDir         = "logs"
	promptFile     = "prompt.txt"
	promptFallback = "prompt.example.txt"
)

func main() {
	closeLog, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	cfg, cfgPath, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Using config %s", cfgPath)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	prompt, promptPath, err := loadPrompt()
	if err != nil {
		log.Fatalf("Failed to load extraction prompt: %v", err)
	}
	log.Printf("Using prompt %s", promptPath)

	ledger, err := store.LoadLedger(cfg.Storage.StateFile)
	if err != nil {
		log.Fatalf("Failed to load processed-episode state: %v", err)
	}

	site, err := publisher.New(cfg.Storage.SiteDir, cfg.Site.Title, cfg.Site.Description, cfg.Site.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize publisher: %v", err)
	}

	client := openai.NewClient(apiKey)
	policy := retry.Default()

	gatekeeper := download.NewGatekeeper(cfg.MaxDownloadBytes())
	gatekeeper.SetExtractor(download.NewYtDlp())

	deps := pipeline.Deps{
		Discoverer: feed.NewWatcher(cfg.Pipeline.PerFeedLimit),
		Downloader: gatekeeper,
		Transcriber: transcribe.New(
			transcribe.NewFFmpegSegmenter(),
			client,
			policy,
			cfg.OpenAI.TranscriptionModel,
			cfg.Pipeline.SegmentSeconds,
			cfg.Pipeline.LanguageHint,
		),
		Summarizer: summarize.New(client, policy, cfg.OpenAI.SummarizeModel, cfg.OpenAI.Temperature, prompt),
		Store:      store.NewStore(cfg.Storage.EpisodesDir),
		Publisher:  site,
		Ledger:     ledger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := pipeline.New(cfg, deps).Run(ctx); err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}
	log.Printf("Done. Duration: %s", time.Since(start))
}

// setupLogging mirrors every log line to logs/pipeline.log alongside stderr.
func setupLogging() (func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(logDir, "pipeline.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() { f.Close() }, nil
}

// loadPrompt reads prompt.txt, falling back to the checked-in example so a
// fresh clone runs without local setup.
func loadPrompt() (string, string, error) {
	for _, path := range []string{promptFile, promptFallback} {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), path, nil
		}
		if !os.IsNotExist(err) {
			return "", "", err
		}
	}
	return "", "", fmt.Errorf("neither %s nor %s found", promptFile, promptFallback)
}

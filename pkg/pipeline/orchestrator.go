// Package pipeline drives each discovered episode through download,
// transcription, extraction, and persistence, commits the processed ledger
// after every fully successful episode, and rebuilds the site at the end of
// every run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"podcast-archive/pkg/config"
	"podcast-archive/pkg/domain"
	"podcast-archive/pkg/feed"
	"podcast-archive/pkg/store"
	"podcast-archive/pkg/transcribe"
)

// Stage identifies where in an episode's lifecycle a failure happened.
type Stage string

const (
	StageMeta       Stage = "meta"
	StageDownload   Stage = "download"
	StageTranscribe Stage = "transcribe"
	StageSummarize  Stage = "summarize"
	StageCommit     Stage = "commit"
)

// StageError wraps a per-episode failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Discoverer finds new episode candidates not present in the processed set.
type Discoverer interface {
	FindNew(ctx context.Context, feedURLs []string, seen feed.ProcessedSet) []domain.Candidate
}

// Downloader fetches an audio payload. An empty path with a nil error is a
// deliberate negative result (size ceiling, extraction unavailable).
type Downloader interface {
	Fetch(ctx context.Context, audioURL, destDir string) (string, error)
}

// Transcriber produces the full transcript for a downloaded audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, inputPath, workDir string) (string, error)
}

// Summarizer extracts the structured summary from a transcript.
type Summarizer interface {
	Extract(ctx context.Context, transcript string) (domain.Summary, error)
}

// BundleStore persists and reloads per-episode artifacts.
type BundleStore interface {
	WriteMeta(meta domain.Meta) error
	WriteTranscript(id, text string) error
	WriteSummary(id string, summary domain.Summary) error
	LoadEpisodes() ([]domain.Episode, error)
}

// SitePublisher renders the site from the loaded episode list.
type SitePublisher interface {
	Publish(episodes []domain.Episode) error
}

// Deps are the orchestrator's collaborators.
type Deps struct {
	Discoverer  Discoverer
	Downloader  Downloader
	Transcriber Transcriber
	Summarizer  Summarizer
	Store       BundleStore
	Publisher   SitePublisher
	Ledger      *store.Ledger
}

// Orchestrator owns the per-episode lifecycle, including the temp working
// directory and the downloaded audio file, both removed unconditionally at
// the end of each episode's attempt.
type Orchestrator struct {
	cfg  *config.Config
	deps Deps
}

// New creates an orchestrator.
func New(cfg *config.Config, deps Deps) *Orchestrator {
	return &Orchestrator{cfg: cfg, deps: deps}
}

// Run processes all new candidates sequentially, then rebuilds the site from
// the full bundle set. A single episode's failure is logged and skipped; its
// ledger entry stays absent so the next run retries it. Only a missing
// segmentation tool aborts the remaining candidates, and even then the site
// is still rebuilt before the error is returned.
func (o *Orchestrator) Run(ctx context.Context) error {
	candidates := o.deps.Discoverer.FindNew(ctx, o.cfg.AllFeeds(), o.deps.Ledger)
	log.Printf("pipeline: new episodes to process: %d", len(candidates))

	var fatal error
	for _, candidate := range candidates {
		err := o.processEpisode(ctx, candidate)
		if err == nil {
			continue
		}
		log.Printf("pipeline: episode %s failed: %v", candidate.ID, err)
		if errors.Is(err, transcribe.ErrSegmenterUnavailable) {
			fatal = err
			break
		}
		if ctx.Err() != nil {
			fatal = ctx.Err()
			break
		}
	}

	if err := o.republish(); err != nil {
		log.Printf("pipeline: site rebuild failed: %v", err)
		if fatal == nil {
			fatal = err
		}
	}
	return fatal
}

// processEpisode runs one candidate through the stage sequence. The ledger is
// committed only after the summary artifact is durably written; every earlier
// exit leaves the ledger untouched for this id.
func (o *Orchestrator) processEpisode(ctx context.Context, c domain.Candidate) error {
	log.Printf("pipeline: processing %s (%s)", c.ID, c.Title)

	meta := domain.Meta{
		ID:           c.ID,
		GUID:         c.GUID,
		Title:        c.Title,
		Link:         c.Link,
		Published:    c.Published,
		PublishedTS:  c.PublishedTS,
		FeedAudioURL: c.AudioURL,
		ImageURL:     c.ImageURL,
		ShowNotes:    c.ShowNotes,
	}
	if err := o.deps.Store.WriteMeta(meta); err != nil {
		return &StageError{Stage: StageMeta, Err: err}
	}

	tmpDir := filepath.Join(o.cfg.Storage.DataDir, "tmp", c.ID)
	audioDir := filepath.Join(o.cfg.Storage.DataDir, "audio")

	var audioPath string
	defer func() {
		// Cleanup is unconditional: chunks, intermediates, and the raw audio
		// never outlive the episode's attempt.
		os.RemoveAll(tmpDir)
		if audioPath != "" {
			os.Remove(audioPath)
		}
	}()

	audioPath, err := o.deps.Downloader.Fetch(ctx, c.AudioURL, audioDir)
	if err != nil {
		return &StageError{Stage: StageDownload, Err: err}
	}
	if audioPath == "" {
		log.Printf("pipeline: skipping %s: download yielded no result (size ceiling or extraction unavailable)", c.ID)
		return nil
	}

	transcript, err := o.deps.Transcriber.Transcribe(ctx, audioPath, tmpDir)
	if err != nil {
		return &StageError{Stage: StageTranscribe, Err: err}
	}
	if err := o.deps.Store.WriteTranscript(c.ID, transcript); err != nil {
		return &StageError{Stage: StageTranscribe, Err: err}
	}

	summary, err := o.deps.Summarizer.Extract(ctx, transcript)
	if err != nil {
		return &StageError{Stage: StageSummarize, Err: err}
	}
	if max := o.cfg.Pipeline.MaxQuotes; len(summary.Quotes) > max {
		summary.Quotes = summary.Quotes[:max]
	}
	if err := o.deps.Store.WriteSummary(c.ID, summary); err != nil {
		return &StageError{Stage: StageSummarize, Err: err}
	}

	o.deps.Ledger.Add(c.ID)
	if err := o.deps.Ledger.Flush(); err != nil {
		return &StageError{Stage: StageCommit, Err: err}
	}

	log.Printf("pipeline: committed %s", c.ID)
	return nil
}

// republish rebuilds the site from every bundle on disk. Runs even when no
// new episode was processed.
func (o *Orchestrator) republish() error {
	episodes, err := o.deps.Store.LoadEpisodes()
	if err != nil {
		return err
	}
	return o.deps.Publisher.Publish(episodes)
}

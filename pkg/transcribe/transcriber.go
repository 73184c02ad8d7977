// Package transcribe converts one audio file into text by splitting it into
// fixed-duration chunks and transcribing each chunk through a remote
// speech-to-text call.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"podcast-archive/pkg/retry"
)

// ErrSegmenterUnavailable means the segmentation tool is missing. This is a
// deployment precondition, not a per-episode condition: callers must treat it
// as fatal for the whole transcription path and must not retry it.
var ErrSegmenterUnavailable = errors.New("audio segmenter unavailable: install ffmpeg")

// SpeechClient performs one remote speech-to-text call.
type SpeechClient interface {
	TranscribeFile(ctx context.Context, model, path, languageHint string) (string, error)
}

// Transcriber produces a full transcript from a source audio file.
type Transcriber struct {
	segmenter      Segmenter
	client         SpeechClient
	policy         retry.Policy
	model          string
	segmentSeconds int
	languageHint   string
}

// New creates a transcriber. languageHint may be empty.
func New(segmenter Segmenter, client SpeechClient, policy retry.Policy, model string, segmentSeconds int, languageHint string) *Transcriber {
	return &Transcriber{
		segmenter:      segmenter,
		client:         client,
		policy:         policy,
		model:          model,
		segmentSeconds: segmentSeconds,
		languageHint:   languageHint,
	}
}

// Transcribe splits inputPath into chunks under workDir and transcribes them
// in order. Each chunk call is retried with backoff; a chunk that exhausts its
// retries fails the whole transcription, because a silently missing chunk
// would corrupt the ordered transcript. An empty transcript is a valid result.
func (t *Transcriber) Transcribe(ctx context.Context, inputPath, workDir string) (string, error) {
	if t.segmenter == nil || !t.segmenter.Available() {
		return "", ErrSegmenterUnavailable
	}

	chunksDir := filepath.Join(workDir, "chunks")
	chunks, err := t.segmenter.Segment(ctx, inputPath, chunksDir, t.segmentSeconds)
	if err != nil {
		return "", fmt.Errorf("segment audio: %w", err)
	}
	log.Printf("transcribe: %d chunks from %s", len(chunks), filepath.Base(inputPath))

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		var text string
		err := t.policy.Do(ctx, func() error {
			var callErr error
			text, callErr = t.client.TranscribeFile(ctx, t.model, chunk, t.languageHint)
			return callErr
		})
		if err != nil {
			return "", fmt.Errorf("transcribe chunk %s: %w", filepath.Base(chunk), err)
		}
		parts = append(parts, strings.TrimSpace(text))
	}

	return strings.TrimSpace(strings.Join(parts, "\n\n")), nil
}

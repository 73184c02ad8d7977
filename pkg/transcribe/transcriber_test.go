package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"podcast-archive/pkg/retry"
)

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

// fakeSegmenter writes zero-padded chunk files whose content names their text.
type fakeSegmenter struct {
	available bool
	texts     []string
	err       error
}

func (s *fakeSegmenter) Available() bool { return s.available }

func (s *fakeSegmenter) Segment(ctx context.Context, inputPath, outDir string, segmentSeconds int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(s.texts))
	for i, text := range s.texts {
		path := filepath.Join(outDir, chunkName(i))
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func chunkName(i int) string {
	return fmt.Sprintf("chunk_%03d.mp3", i)
}

// fakeSpeechClient returns each chunk file's content as its transcript,
// optionally failing the first failures[path] calls.
type fakeSpeechClient struct {
	failures map[string]int
	calls    int
}

func (c *fakeSpeechClient) TranscribeFile(ctx context.Context, model, path, languageHint string) (string, error) {
	c.calls++
	base := filepath.Base(path)
	if c.failures[base] > 0 {
		c.failures[base]--
		return "", errors.New("transient remote failure")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func TestTranscribe_ChunkOrdering(t *testing.T) {
	tr := New(&fakeSegmenter{available: true, texts: []string{" A ", "B", " C"}}, &fakeSpeechClient{}, testPolicy(), "whisper-1", 600, "")

	got, err := tr.Transcribe(context.Background(), "/tmp/in.mp3", t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "A\n\nB\n\nC" {
		t.Errorf("Expected \"A\\n\\nB\\n\\nC\", got %q", got)
	}
}

func TestTranscribe_SegmenterUnavailable(t *testing.T) {
	tr := New(&fakeSegmenter{available: false}, &fakeSpeechClient{}, testPolicy(), "whisper-1", 600, "")

	_, err := tr.Transcribe(context.Background(), "/tmp/in.mp3", t.TempDir())
	if !errors.Is(err, ErrSegmenterUnavailable) {
		t.Fatalf("Expected ErrSegmenterUnavailable, got %v", err)
	}
}

func TestTranscribe_RetriesTransientChunkFailure(t *testing.T) {
	client := &fakeSpeechClient{failures: map[string]int{"chunk_001.mp3": 2}}
	tr := New(&fakeSegmenter{available: true, texts: []string{"A", "B"}}, client, testPolicy(), "whisper-1", 600, "")

	got, err := tr.Transcribe(context.Background(), "/tmp/in.mp3", t.TempDir())
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if got != "A\n\nB" {
		t.Errorf("Expected \"A\\n\\nB\", got %q", got)
	}
}

func TestTranscribe_ChunkExhaustsRetries(t *testing.T) {
	// chunk_000 fails more times than the attempt budget allows.
	client := &fakeSpeechClient{failures: map[string]int{"chunk_000.mp3": 10}}
	tr := New(&fakeSegmenter{available: true, texts: []string{"A", "B"}}, client, testPolicy(), "whisper-1", 600, "")

	_, err := tr.Transcribe(context.Background(), "/tmp/in.mp3", t.TempDir())
	if err == nil {
		t.Fatal("Expected error when a chunk exhausts retries, got nil")
	}
}

func TestTranscribe_EmptyAudioIsValid(t *testing.T) {
	tr := New(&fakeSegmenter{available: true, texts: nil}, &fakeSpeechClient{}, testPolicy(), "whisper-1", 600, "")

	got, err := tr.Transcribe(context.Background(), "/tmp/in.mp3", t.TempDir())
	if err != nil {
		t.Fatalf("Expected empty transcript to be valid, got error %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty transcript, got %q", got)
	}
}

func TestTranscribe_SegmentationFailure(t *testing.T) {
	tr := New(&fakeSegmenter{available: true, err: errors.New("corrupt input")}, &fakeSpeechClient{}, testPolicy(), "whisper-1", 600, "")

	_, err := tr.Transcribe(context.Background(), "/tmp/in.mp3", t.TempDir())
	if err == nil {
		t.Fatal("Expected segmentation error, got nil")
	}
	if errors.Is(err, ErrSegmenterUnavailable) {
		t.Error("Segmentation failure must not be reported as unavailability")
	}
}

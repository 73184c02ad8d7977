// Package download fetches episode audio payloads under a hard size ceiling.
package download

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"podcast-archive/pkg/feed"
	"podcast-archive/pkg/httpclient"
)

// copyChunkSize is the stream-copy granularity; the ceiling check runs after
// every chunk, so overshoot is bounded by one chunk.
const copyChunkSize = 1024 * 1024

// defaultFilename is used when the URL path yields no usable basename.
const defaultFilename = "episode.mp3"

// Gatekeeper downloads audio payloads, aborting and discarding any download
// whose cumulative size exceeds the configured ceiling. Watch-page URLs are
// delegated to an external audio extraction tool, with the same ceiling
// enforced on its output.
type Gatekeeper struct {
	client    *httpclient.HTTPClient
	extractor AudioExtractor
	maxBytes  int64
}

// NewGatekeeper creates a gatekeeper with the given byte ceiling, a media HTTP
// client, and the yt-dlp extractor for watch-page URLs.
func NewGatekeeper(maxBytes int64) *Gatekeeper {
	return &Gatekeeper{
		client:    httpclient.NewClient(httpclient.MediaClient),
		extractor: NewYtDlp(),
		maxBytes:  maxBytes,
	}
}

// SetExtractor replaces the watch-page audio extractor. Useful in tests.
func (g *Gatekeeper) SetExtractor(extractor AudioExtractor) {
	g.extractor = extractor
}

// Fetch downloads the payload at audioURL into destDir and returns the
// absolute local path. It returns ("", nil), deliberately not an error, when
// the payload exceeds the size ceiling or when watch-page extraction is
// unavailable or fails; no partial file remains on disk in either case.
func (g *Gatekeeper) Fetch(ctx context.Context, audioURL, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	if feed.IsWatchPageURL(audioURL) {
		return g.fetchWatchPage(ctx, audioURL, destDir)
	}
	return g.fetchDirect(ctx, audioURL, destDir)
}

func (g *Gatekeeper) fetchDirect(ctx context.Context, audioURL, destDir string) (string, error) {
	resp, err := g.client.Get(ctx, audioURL)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", audioURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download %s: unexpected status code %d", audioURL, resp.StatusCode)
	}

	dest := filepath.Join(destDir, filenameFromURL(audioURL))
	file, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}

	var total int64
	for {
		n, copyErr := io.CopyN(file, resp.Body, copyChunkSize)
		total += n
		if total > g.maxBytes {
			file.Close()
			os.Remove(dest)
			log.Printf("download: %s exceeds size ceiling (%d bytes), discarding", audioURL, g.maxBytes)
			return "", nil
		}
		if copyErr == io.EOF {
			break
		}
		if copyErr != nil {
			file.Close()
			os.Remove(dest)
			return "", fmt.Errorf("stream %s: %w", audioURL, copyErr)
		}
	}

	if err := file.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("close %s: %w", dest, err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dest, err)
	}
	log.Printf("download: saved %s (%d bytes)", abs, total)
	return abs, nil
}

func (g *Gatekeeper) fetchWatchPage(ctx context.Context, pageURL, destDir string) (string, error) {
	if g.extractor == nil || !g.extractor.Available() {
		log.Printf("download: no audio extractor available for %s, skipping", pageURL)
		return "", nil
	}

	produced, err := g.extractor.Extract(ctx, pageURL, destDir)
	if err != nil {
		log.Printf("download: audio extraction failed for %s: %v", pageURL, err)
		return "", nil
	}
	if produced == "" {
		return "", nil
	}

	info, err := os.Stat(produced)
	if err != nil {
		return "", nil
	}
	if info.Size() > g.maxBytes {
		os.Remove(produced)
		log.Printf("download: extracted audio for %s exceeds size ceiling (%d bytes), discarding", pageURL, g.maxBytes)
		return "", nil
	}

	abs, err := filepath.Abs(produced)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", produced, err)
	}
	return abs, nil
}

// filenameFromURL derives a local filename from the URL path, ignoring any
// query string.
func filenameFromURL(audioURL string) string {
	parsed, err := url.Parse(audioURL)
	if err != nil {
		return defaultFilename
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return defaultFilename
	}
	return name
}

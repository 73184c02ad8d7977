package download

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
)

// AudioExtractor produces a local best-effort audio file from a video
// watch-page URL.
type AudioExtractor interface {
	// Available reports whether the extraction tool can be invoked at all.
	Available() bool

	// Extract downloads and extracts audio for the URL into destDir and
	// returns the produced file path.
	Extract(ctx context.Context, pageURL, destDir string) (string, error)
}

// YtDlp extracts audio from watch pages by shelling out to yt-dlp.
type YtDlp struct {
	binary string
}

// NewYtDlp locates yt-dlp on PATH. The returned extractor reports unavailable
// when the tool is not installed.
func NewYtDlp() *YtDlp {
	binary, err := exec.LookPath("yt-dlp")
	if err != nil {
		binary = ""
	}
	return &YtDlp{binary: binary}
}

// Available reports whether yt-dlp was found on PATH.
func (y *YtDlp) Available() bool {
	return y.binary != ""
}

// Extract runs yt-dlp to produce an mp3 in destDir.
func (y *YtDlp) Extract(ctx context.Context, pageURL, destDir string) (string, error) {
	if y.binary == "" {
		return "", fmt.Errorf("yt-dlp not available")
	}

	outTemplate := filepath.Join(destDir, "episode.%(ext)s")
	cmd := exec.CommandContext(ctx, y.binary,
		"--no-playlist",
		"-x", "--audio-format", "mp3",
		"-o", outTemplate,
		pageURL,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("yt-dlp: %w: %s", err, output)
	}

	matches, err := filepath.Glob(filepath.Join(destDir, "episode.*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("yt-dlp produced no output file")
	}
	return matches[0], nil
}

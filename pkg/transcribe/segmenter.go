package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
)

// Segmenter splits one audio file into fixed-duration chunks whose lexical
// sort order equals temporal order.
type Segmenter interface {
	// Available reports whether the segmentation tool can be invoked.
	Available() bool

	// Segment splits inputPath into chunks of segmentSeconds each under
	// outDir and returns the chunk paths in temporal order.
	Segment(ctx context.Context, inputPath, outDir string, segmentSeconds int) ([]string, error)
}

// FFmpegSegmenter segments audio by shelling out to ffmpeg with stream copy,
// so chunking never re-encodes.
type FFmpegSegmenter struct {
	binary string
}

// NewFFmpegSegmenter locates ffmpeg on PATH. The returned segmenter reports
// unavailable when the tool is not installed.
func NewFFmpegSegmenter() *FFmpegSegmenter {
	binary, err := exec.LookPath("ffmpeg")
	if err != nil {
		binary = ""
	}
	return &FFmpegSegmenter{binary: binary}
}

// Available reports whether ffmpeg was found on PATH.
func (s *FFmpegSegmenter) Available() bool {
	return s.binary != ""
}

// Segment splits the input into contiguous chunks named chunk_000.mp3,
// chunk_001.mp3, ... so zero-padded numbering preserves order.
func (s *FFmpegSegmenter) Segment(ctx context.Context, inputPath, outDir string, segmentSeconds int) ([]string, error) {
	if s.binary == "" {
		return nil, fmt.Errorf("ffmpeg not available")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	pattern := filepath.Join(outDir, "chunk_%03d.mp3")
	cmd := exec.CommandContext(ctx, s.binary,
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", inputPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(segmentSeconds),
		"-c", "copy",
		pattern,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg segment: %w: %s", err, output)
	}

	chunks, err := filepath.Glob(filepath.Join(outDir, "chunk_*.mp3"))
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	sort.Strings(chunks)
	return chunks, nil
}

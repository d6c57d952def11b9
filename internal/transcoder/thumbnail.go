package transcoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultThumbnailCount is the number of frames sampled when none is configured.
const DefaultThumbnailCount = 10

// SampleThumbnails extracts count frames at evenly spaced offsets across the
// source, scaled to 320px wide. Individual frame failures are skipped, so the
// returned slice may be shorter than count.
func (f *FFmpeg) SampleThumbnails(ctx context.Context, inputPath, outputDir string, duration float64, count int) ([]string, error) {
	if count <= 0 {
		count = DefaultThumbnailCount
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	thumbnails := make([]string, 0, count)
	for i := 0; i < count; i++ {
		offset := duration * float64(i) / float64(count)
		outputPath := filepath.Join(outputDir, fmt.Sprintf("thumb_%03d.jpg", i))

		args := []string{
			"-ss", fmt.Sprintf("%.2f", offset),
			"-i", inputPath,
			"-vframes", "1",
			"-vf", "scale=320:-1",
			"-q:v", "2",
			"-y",
			outputPath,
		}

		if err := f.runner.Run(ctx, f.ffmpegPath, args...); err != nil {
			f.logger.Warnf("thumbnail at %.2fs failed: %v", offset, err)
			continue
		}
		if _, err := os.Stat(outputPath); err != nil {
			continue
		}

		thumbnails = append(thumbnails, outputPath)
	}

	return thumbnails, nil
}

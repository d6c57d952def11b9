package transcoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zentrya/ingest/pkg/models"
)

const (
	audioPlaylistName  = "audio_only.m3u8"
	audioBandwidth     = 128000
	audioSegmentLength = "6"
)

// PackageAudioOnly packages the source's audio track as a standalone HLS
// rendition for audio-only playback under constrained bandwidth.
func (f *FFmpeg) PackageAudioOnly(ctx context.Context, inputPath, outputDir string) (*models.AudioVariant, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	args := []string{
		"-y",
		"-i", inputPath,
		"-map", "0:a:0",
		"-vn",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ac", "2",
		"-ar", "48000",
		"-f", "hls",
		"-hls_time", audioSegmentLength,
		"-hls_playlist_type", "vod",
		"-hls_segment_type", "mpegts",
		"-hls_segment_filename", filepath.Join(outputDir, "audio_%03d.ts"),
		filepath.Join(outputDir, audioPlaylistName),
	}

	if err := f.runner.Run(ctx, f.ffmpegPath, args...); err != nil {
		return nil, fmt.Errorf("audio-only packaging failed: %w", err)
	}

	if _, err := os.Stat(filepath.Join(outputDir, audioPlaylistName)); err != nil {
		return nil, fmt.Errorf("playlist %s missing after encode", audioPlaylistName)
	}

	return &models.AudioVariant{
		Playlist:  audioPlaylistName,
		Bandwidth: audioBandwidth,
		Codecs:    models.AudioOnlyCodecs,
	}, nil
}

package transcoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/pkg/models"
)

// FFmpeg wraps ffmpeg invocations for HLS packaging
type FFmpeg struct {
	ffmpegPath string
	runner     Runner
	logger     *logging.Logger
}

// NewFFmpeg creates a new FFmpeg wrapper
func NewFFmpeg(ffmpegPath string, timeout time.Duration, logger *logging.Logger) *FFmpeg {
	return &FFmpeg{
		ffmpegPath: ffmpegPath,
		runner:     ExecRunner{Timeout: timeout},
		logger:     logger,
	}
}

// NewFFmpegWithRunner creates an FFmpeg wrapper with a custom runner. Used in tests.
func NewFFmpegWithRunner(ffmpegPath string, runner Runner, logger *logging.Logger) *FFmpeg {
	return &FFmpeg{
		ffmpegPath: ffmpegPath,
		runner:     runner,
		logger:     logger,
	}
}

// TranscodeRung encodes one quality rung of the HLS ladder into outputDir,
// producing stream_<name>.m3u8 and its mpegts segments.
func (f *FFmpeg) TranscodeRung(ctx context.Context, inputPath, outputDir string, rung models.QualityRung, source *models.SourceVideoInfo) (*models.TranscodeVariant, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &models.TranscodeError{Rung: rung.Name, Err: err}
	}

	width, height := rung.OutputResolution(source.Width, source.Height)
	args := rungArgs(inputPath, outputDir, rung, source)

	start := time.Now()
	if err := f.runner.Run(ctx, f.ffmpegPath, args...); err != nil {
		return nil, &models.TranscodeError{Rung: rung.Name, Err: err}
	}

	playlist := variantPlaylistName(rung.Name)
	if _, err := os.Stat(filepath.Join(outputDir, playlist)); err != nil {
		return nil, &models.TranscodeError{
			Rung: rung.Name,
			Err:  fmt.Errorf("playlist %s missing after encode", playlist),
		}
	}

	f.logger.Infof("encoded rung %s (%dx%d) in %s", rung.Name, width, height, time.Since(start).Round(time.Millisecond))

	bandwidth := rung.Bandwidth()
	return &models.TranscodeVariant{
		Rung:             rung.Name,
		Playlist:         playlist,
		Bandwidth:        bandwidth,
		AverageBandwidth: bandwidth * 8 / 10,
		Width:            width,
		Height:           height,
		FrameRate:        source.FrameRate,
		Codecs:           models.VideoVariantCodecs,
	}, nil
}

func variantPlaylistName(rungName string) string {
	return fmt.Sprintf("stream_%s.m3u8", rungName)
}

func rungArgs(inputPath, outputDir string, rung models.QualityRung, source *models.SourceVideoInfo) []string {
	width, height := rung.OutputResolution(source.Width, source.Height)
	gop := rung.GOPSize(source.FrameRate)
	bitrate := strconv.FormatInt(rung.VideoBitrate, 10)

	args := []string{
		"-y",
		"-i", inputPath,
		"-map", "0:v:0",
	}
	if source.HasAudio {
		args = append(args, "-map", "0:a:0")
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-profile:v", "main",
		"-level", "4.0",
		"-pix_fmt", "yuv420p",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-b:v", bitrate,
		"-maxrate", bitrate,
		"-bufsize", strconv.FormatInt(rung.VideoBitrate*2, 10),
		"-g", strconv.Itoa(gop),
		"-keyint_min", strconv.Itoa(gop),
		"-sc_threshold", "0",
	)

	if source.HasAudio {
		args = append(args,
			"-c:a", "aac",
			"-b:a", strconv.FormatInt(rung.AudioBitrate, 10),
			"-ac", "2",
			"-ar", "48000",
		)
	}

	args = append(args,
		"-f", "hls",
		"-hls_time", strconv.Itoa(rung.SegmentSeconds()),
		"-hls_playlist_type", "vod",
		"-hls_segment_type", "mpegts",
		"-hls_segment_filename", filepath.Join(outputDir, fmt.Sprintf("stream_%s_%%03d.ts", rung.Name)),
		filepath.Join(outputDir, variantPlaylistName(rung.Name)),
	)

	return args
}

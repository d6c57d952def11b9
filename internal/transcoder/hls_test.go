package transcoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/pkg/models"
)

// writingRunner pretends to be ffmpeg by creating the output file (the last
// argument) so playlist existence checks pass.
type writingRunner struct {
	calls [][]string
	err   error
}

func (r *writingRunner) Run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.err != nil {
		return r.err
	}
	out := args[len(args)-1]
	return os.WriteFile(out, []byte("#EXTM3U\n"), 0644)
}

func hdSource() *models.SourceVideoInfo {
	return &models.SourceVideoInfo{
		Duration:  600,
		Width:     1920,
		Height:    1080,
		FrameRate: 30,
		HasAudio:  true,
	}
}

func argValue(args []string, flag string) (string, bool) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func TestRungArgs(t *testing.T) {
	dir := t.TempDir()
	source := hdSource()

	args := rungArgs("/tmp/in.mp4", dir, models.Rung720p, source)

	checks := map[string]string{
		"-c:v":          "libx264",
		"-preset":       "fast",
		"-profile:v":    "main",
		"-pix_fmt":      "yuv420p",
		"-vf":           "scale=1280:720",
		"-b:v":          "3000000",
		"-maxrate":      "3000000",
		"-bufsize":      "6000000",
		"-g":            "180",
		"-keyint_min":   "180",
		"-sc_threshold": "0",
		"-b:a":          "128000",
		"-ac":           "2",
		"-ar":           "48000",
		"-hls_time":     "6",
	}
	for flag, want := range checks {
		got, ok := argValue(args, flag)
		if !ok {
			t.Errorf("missing flag %s", flag)
			continue
		}
		if got != want {
			t.Errorf("%s = %s, want %s", flag, got, want)
		}
	}

	if args[len(args)-1] != dir+"/stream_720p.m3u8" {
		t.Errorf("unexpected playlist path %s", args[len(args)-1])
	}
}

func TestRungArgsSegmentLengthTiered(t *testing.T) {
	dir := t.TempDir()
	source := hdSource()

	lowRes := rungArgs("/tmp/in.mp4", dir, models.Rung360p, source)
	if got, _ := argValue(lowRes, "-hls_time"); got != "4" {
		t.Errorf("360p hls_time = %s, want 4", got)
	}

	highRes := rungArgs("/tmp/in.mp4", dir, models.Rung480p, source)
	if got, _ := argValue(highRes, "-hls_time"); got != "6" {
		t.Errorf("480p hls_time = %s, want 6", got)
	}
}

func TestRungArgsNoAudioSource(t *testing.T) {
	dir := t.TempDir()
	source := hdSource()
	source.HasAudio = false

	args := rungArgs("/tmp/in.mp4", dir, models.Rung480p, source)

	joined := strings.Join(args, " ")
	if strings.Contains(joined, "0:a:0") {
		t.Error("audio stream should not be mapped for a silent source")
	}
	if strings.Contains(joined, "-c:a") {
		t.Error("audio codec should not be set for a silent source")
	}
}

func TestTranscodeRung(t *testing.T) {
	dir := t.TempDir()
	runner := &writingRunner{}
	f := NewFFmpegWithRunner("ffmpeg", runner, logging.NewNopLogger())

	variant, err := f.TranscodeRung(context.Background(), "/tmp/in.mp4", dir, models.Rung720p, hdSource())
	if err != nil {
		t.Fatalf("TranscodeRung failed: %v", err)
	}

	if len(runner.calls) != 1 || runner.calls[0][0] != "ffmpeg" {
		t.Fatalf("expected one ffmpeg invocation, got %v", runner.calls)
	}

	if variant.Rung != "720p" {
		t.Errorf("expected rung 720p, got %s", variant.Rung)
	}
	if variant.Playlist != "stream_720p.m3u8" {
		t.Errorf("unexpected playlist %s", variant.Playlist)
	}
	if variant.Bandwidth != 3128000 {
		t.Errorf("expected bandwidth 3128000, got %d", variant.Bandwidth)
	}
	if variant.AverageBandwidth != 2502400 {
		t.Errorf("expected average bandwidth 2502400, got %d", variant.AverageBandwidth)
	}
	if variant.Width != 1280 || variant.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", variant.Width, variant.Height)
	}
	if variant.Codecs != models.VideoVariantCodecs {
		t.Errorf("unexpected codecs %s", variant.Codecs)
	}
}

func TestTranscodeRungEncoderFailure(t *testing.T) {
	dir := t.TempDir()
	runner := &writingRunner{err: errors.New("exit status 1")}
	f := NewFFmpegWithRunner("ffmpeg", runner, logging.NewNopLogger())

	_, err := f.TranscodeRung(context.Background(), "/tmp/in.mp4", dir, models.Rung480p, hdSource())
	if err == nil {
		t.Fatal("expected error from failing encoder")
	}

	var tErr *models.TranscodeError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TranscodeError, got %T", err)
	}
	if tErr.Rung != "480p" {
		t.Errorf("expected rung 480p in error, got %s", tErr.Rung)
	}
}

type silentRunner struct{}

func (silentRunner) Run(ctx context.Context, name string, args ...string) error {
	return nil
}

func TestTranscodeRungMissingPlaylistIsFailure(t *testing.T) {
	dir := t.TempDir()
	f := NewFFmpegWithRunner("ffmpeg", silentRunner{}, logging.NewNopLogger())

	_, err := f.TranscodeRung(context.Background(), "/tmp/in.mp4", dir, models.Rung480p, hdSource())
	if err == nil {
		t.Fatal("expected error when encoder exits without writing the playlist")
	}

	var tErr *models.TranscodeError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TranscodeError, got %T", err)
	}
}

func TestPackageAudioOnly(t *testing.T) {
	dir := t.TempDir()
	runner := &writingRunner{}
	f := NewFFmpegWithRunner("ffmpeg", runner, logging.NewNopLogger())

	audio, err := f.PackageAudioOnly(context.Background(), "/tmp/in.mp4", dir)
	if err != nil {
		t.Fatalf("PackageAudioOnly failed: %v", err)
	}

	if audio.Playlist != "audio_only.m3u8" {
		t.Errorf("unexpected playlist %s", audio.Playlist)
	}
	if audio.Bandwidth != 128000 {
		t.Errorf("expected bandwidth 128000, got %d", audio.Bandwidth)
	}
	if audio.Codecs != models.AudioOnlyCodecs {
		t.Errorf("unexpected codecs %s", audio.Codecs)
	}

	args := runner.calls[0]
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-vn") {
		t.Error("expected -vn in audio-only args")
	}
	if !strings.Contains(joined, "audio_%03d.ts") {
		t.Error("expected audio segment pattern in args")
	}
}

func TestSampleThumbnailsSkipsFailures(t *testing.T) {
	dir := t.TempDir()
	runner := &flakyThumbnailRunner{failAt: 2}
	f := NewFFmpegWithRunner("ffmpeg", runner, logging.NewNopLogger())

	thumbs, err := f.SampleThumbnails(context.Background(), "/tmp/in.mp4", dir, 100, 5)
	if err != nil {
		t.Fatalf("SampleThumbnails failed: %v", err)
	}

	if len(thumbs) != 4 {
		t.Fatalf("expected 4 thumbnails (one skipped), got %d", len(thumbs))
	}
	for _, p := range thumbs {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("thumbnail %s missing on disk", p)
		}
	}
}

type flakyThumbnailRunner struct {
	call   int
	failAt int
}

func (r *flakyThumbnailRunner) Run(ctx context.Context, name string, args ...string) error {
	r.call++
	if r.call == r.failAt {
		return fmt.Errorf("frame extraction failed")
	}
	return os.WriteFile(args[len(args)-1], []byte("jpg"), 0644)
}

package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/pkg/models"
)

// defaultFrameRate is assumed when ffprobe reports no usable rate.
const defaultFrameRate = 30.0

// Runner executes an external command and returns its stdout.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Prober extracts source video metadata via ffprobe
type Prober struct {
	ffprobePath string
	timeout     time.Duration
	runner      Runner
	logger      *logging.Logger
}

// New creates a new Prober
func New(ffprobePath string, timeout time.Duration, logger *logging.Logger) *Prober {
	return &Prober{
		ffprobePath: ffprobePath,
		timeout:     timeout,
		runner:      execRunner{},
		logger:      logger,
	}
}

// NewWithRunner creates a Prober with a custom command runner. Used in tests.
func NewWithRunner(ffprobePath string, timeout time.Duration, runner Runner, logger *logging.Logger) *Prober {
	return &Prober{
		ffprobePath: ffprobePath,
		timeout:     timeout,
		runner:      runner,
		logger:      logger,
	}
}

// Probe extracts metadata from a video file. A source with no video
// stream is rejected with models.ErrNoVideoStream.
func (p *Prober) Probe(ctx context.Context, inputPath string) (*models.SourceVideoInfo, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	}

	out, err := p.runner.Output(ctx, p.ffprobePath, args...)
	if err != nil {
		return nil, &models.ProbeError{Path: inputPath, Err: err}
	}

	info, err := parseProbeOutput(out)
	if err != nil {
		return nil, &models.ProbeError{Path: inputPath, Err: err}
	}

	p.logger.Debugf("probed %s: %dx%d %.2ffps %.1fs codec=%s audio=%v",
		inputPath, info.Width, info.Height, info.FrameRate, info.Duration, info.Codec, info.HasAudio)

	return info, nil
}

type probeOutput struct {
	Format  formatInfo   `json:"format"`
	Streams []streamInfo `json:"streams"`
}

type formatInfo struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type streamInfo struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

func parseProbeOutput(data []byte) (*models.SourceVideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &models.SourceVideoInfo{}

	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	if s, err := strconv.ParseInt(out.Format.Size, 10, 64); err == nil {
		info.SizeBytes = s
	}
	if b, err := strconv.ParseInt(out.Format.BitRate, 10, 64); err == nil {
		info.Bitrate = b
	}

	var videoFound bool
	for _, stream := range out.Streams {
		switch stream.CodecType {
		case "video":
			if videoFound {
				continue
			}
			videoFound = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.Codec = stream.CodecName
			info.FrameRate = parseFrameRate(stream.AvgFrameRate)
			if info.FrameRate == 0 {
				info.FrameRate = parseFrameRate(stream.RFrameRate)
			}
			if info.FrameRate == 0 {
				info.FrameRate = defaultFrameRate
			}
		case "audio":
			info.HasAudio = true
		}
	}

	if !videoFound {
		return nil, models.ErrNoVideoStream
	}

	// Everything downstream divides by duration or scales by the source
	// dimensions. A source that reports zero for any of them is rejected
	// here rather than half-processed.
	if info.Duration <= 0 || info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("unusable source metadata: duration=%.2fs dimensions=%dx%d",
			info.Duration, info.Width, info.Height)
	}

	return info, nil
}

// parseFrameRate parses ffprobe's rational rate form, e.g. "30000/1001".
func parseFrameRate(rate string) float64 {
	parts := strings.Split(rate, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

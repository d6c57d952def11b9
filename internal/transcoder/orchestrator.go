package transcoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/internal/metrics"
	"github.com/zentrya/ingest/pkg/models"
)

// Progress range owned by the transcode phase. The pipeline maps phases
// before and after around these bounds.
const (
	transcodeProgressStart = 5
	transcodeProgressEnd   = 75
)

// Prober extracts source metadata.
type Prober interface {
	Probe(ctx context.Context, inputPath string) (*models.SourceVideoInfo, error)
}

// Encoder produces HLS renditions and thumbnails.
type Encoder interface {
	TranscodeRung(ctx context.Context, inputPath, outputDir string, rung models.QualityRung, source *models.SourceVideoInfo) (*models.TranscodeVariant, error)
	PackageAudioOnly(ctx context.Context, inputPath, outputDir string) (*models.AudioVariant, error)
	SampleThumbnails(ctx context.Context, inputPath, outputDir string, duration float64, count int) ([]string, error)
}

// Result holds everything the transcode phase produced in the output directory.
type Result struct {
	Source     *models.SourceVideoInfo
	Variants   []models.TranscodeVariant
	Audio      *models.AudioVariant
	Thumbnails []string
}

// Orchestrator drives probe, ladder selection, per-rung encodes, audio-only
// packaging, master playlist and thumbnail sampling for one source file.
type Orchestrator struct {
	prober         Prober
	encoder        Encoder
	thumbnailCount int
	logger         *logging.Logger
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(prober Prober, encoder Encoder, thumbnailCount int, logger *logging.Logger) *Orchestrator {
	if thumbnailCount <= 0 {
		thumbnailCount = DefaultThumbnailCount
	}
	return &Orchestrator{
		prober:         prober,
		encoder:        encoder,
		thumbnailCount: thumbnailCount,
		logger:         logger,
	}
}

// Transcode produces the full HLS rendition of inputPath under outputDir.
// Any rung failure aborts the whole run; audio-only and thumbnail failures
// are tolerated. The master playlist is written only after every rung
// succeeded.
func (o *Orchestrator) Transcode(ctx context.Context, inputPath, outputDir string, observer models.Observer) (*Result, error) {
	emit := func(progress int, message string) {
		if observer != nil {
			observer.OnProgress(models.ProgressUpdate{
				Status:   models.JobStatusProcessing,
				Progress: progress,
				Message:  message,
			})
		}
	}

	source, err := o.prober.Probe(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	rungs := models.SelectRungs(source.Height)
	o.logger.Infof("selected %d quality rungs for %dx%d source", len(rungs), source.Width, source.Height)
	emit(transcodeProgressStart, fmt.Sprintf("transcoding %d quality levels", len(rungs)))

	span := transcodeProgressEnd - transcodeProgressStart
	variants := make([]models.TranscodeVariant, 0, len(rungs))
	for i, rung := range rungs {
		start := time.Now()
		variant, err := o.encoder.TranscodeRung(ctx, inputPath, outputDir, rung, source)
		if err != nil {
			metrics.RecordRung(rung.Name, "failure")
			return nil, err
		}
		metrics.RecordRung(rung.Name, "success")
		if elapsed := time.Since(start).Seconds(); elapsed > 0 && source.Duration > 0 {
			metrics.TranscodeSpeed.WithLabelValues(rung.Name).Observe(source.Duration / elapsed)
		}

		variants = append(variants, *variant)
		emit(transcodeProgressStart+(i+1)*span/len(rungs), fmt.Sprintf("encoded %s", rung.Name))
	}

	var audio *models.AudioVariant
	if source.HasAudio {
		audio, err = o.encoder.PackageAudioOnly(ctx, inputPath, outputDir)
		if err != nil {
			o.logger.ErrorWithErr("audio-only packaging failed, continuing without it", err)
			metrics.RecordError("transcoder", "audio_only")
			audio = nil
		}
	}

	masterPath := filepath.Join(outputDir, MasterPlaylistName)
	if err := WriteMasterPlaylist(masterPath, variants, audio); err != nil {
		return nil, fmt.Errorf("failed to write master playlist: %w", err)
	}

	// Thumbnails live flat at the rendition root next to the playlists, so
	// thumb_NNN.jpg resolves directly under the content's public base URL.
	thumbnails, err := o.encoder.SampleThumbnails(ctx, inputPath, outputDir, source.Duration, o.thumbnailCount)
	if err != nil {
		o.logger.ErrorWithErr("thumbnail sampling failed, continuing without thumbnails", err)
		metrics.RecordError("transcoder", "thumbnails")
		thumbnails = nil
	}

	metrics.VideoDurationProcessed.Add(source.Duration)

	return &Result{
		Source:     source,
		Variants:   variants,
		Audio:      audio,
		Thumbnails: thumbnails,
	}, nil
}

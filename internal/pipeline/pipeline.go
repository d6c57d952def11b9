package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/internal/metrics"
	"github.com/zentrya/ingest/internal/tracing"
	"github.com/zentrya/ingest/internal/transcoder"
	"github.com/zentrya/ingest/internal/uploader"
	"github.com/zentrya/ingest/pkg/models"
)

// Transcoder produces the full local rendition of one source file.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputDir string, observer models.Observer) (*transcoder.Result, error)
}

// DirUploader pushes a finished rendition directory to object storage.
type DirUploader interface {
	Upload(ctx context.Context, entries []models.UploadManifestEntry, kind models.ContentKind, contentID int64, observer models.Observer) (*models.UploadResult, error)
}

// Request identifies one ingest run.
type Request struct {
	JobID      string
	ContentID  int64
	Kind       models.ContentKind
	SourcePath string
}

// Pipeline is the ingest entry point: probe, transcode, upload, report.
type Pipeline struct {
	transcoder Transcoder
	uploader   DirUploader
	workDir    string
	logger     *logging.Logger
}

// New creates a new Pipeline
func New(t Transcoder, u DirUploader, workDir string, logger *logging.Logger) *Pipeline {
	return &Pipeline{
		transcoder: t,
		uploader:   u,
		workDir:    workDir,
		logger:     logger,
	}
}

// Run executes one ingest job end to end. The observer always receives a
// terminal update: completed with the result, or failed with the error.
// The scratch directory is removed on every exit path, panics included.
func (p *Pipeline) Run(ctx context.Context, req Request, observer models.Observer) (result *models.PipelineResult, err error) {
	start := time.Now()
	log := p.logger.WithJobID(req.JobID).WithContent(string(req.Kind), req.ContentID)

	em := newEmitter(observer)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
		status := "completed"
		if err != nil {
			status = "failed"
			log.ErrorWithErr("ingest failed", err)
			em.fail(err)
		}
		metrics.RecordJobFinished(string(req.Kind), status, time.Since(start).Seconds())
	}()

	metrics.RecordJobStarted(string(req.Kind))
	log.Infof("starting ingest of %s", req.SourcePath)
	em.emit(models.JobStatusProcessing, 0, "starting")

	if !req.Kind.Valid() {
		return nil, fmt.Errorf("invalid content kind %q", req.Kind)
	}
	if _, err := os.Stat(req.SourcePath); err != nil {
		return nil, fmt.Errorf("source file unavailable: %w", err)
	}

	if err := os.MkdirAll(p.workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	outputDir, err := os.MkdirTemp(p.workDir, fmt.Sprintf("hls_%d_", req.ContentID))
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(outputDir); rmErr != nil {
			log.ErrorWithErr("failed to remove scratch dir", rmErr)
		}
	}()

	em.emit(models.JobStatusProcessing, 5, "probing source")
	log.LogPhase(req.JobID, "transcode", 5, "starting transcode")

	span, sctx := tracing.StartPhaseSpan(ctx, "transcode", req.JobID)
	tracing.SetContentTags(span, string(req.Kind), req.ContentID)
	phaseStart := time.Now()
	tRes, err := p.transcoder.Transcode(sctx, req.SourcePath, outputDir, em)
	tracing.LogError(span, err)
	tracing.FinishSpan(span)
	metrics.RecordPhase("transcode", time.Since(phaseStart).Seconds())
	if err != nil {
		return nil, err
	}

	em.emit(models.JobStatusProcessing, 75, "uploading rendition")
	log.LogPhase(req.JobID, "upload", 75, "starting upload")

	manifest, err := uploader.BuildManifest(outputDir, req.Kind, req.ContentID)
	if err != nil {
		return nil, err
	}

	span, sctx = tracing.StartPhaseSpan(ctx, "upload", req.JobID)
	phaseStart = time.Now()
	uRes, err := p.uploader.Upload(sctx, manifest, req.Kind, req.ContentID, em)
	tracing.LogError(span, err)
	tracing.FinishSpan(span)
	metrics.RecordPhase("upload", time.Since(phaseStart).Seconds())
	if err != nil {
		return nil, err
	}

	em.emit(models.JobStatusProcessing, 95, "cleaning up")
	log.LogPhase(req.JobID, "cleanup", 95, "removing scratch files")

	result = &models.PipelineResult{
		ContentID:             req.ContentID,
		Kind:                  req.Kind,
		HLSURL:                uRes.MasterURL,
		Duration:              tRes.Source.Duration,
		Variants:              uRes.Variants,
		Thumbnails:            len(tRes.Thumbnails),
		AudioOnly:             tRes.Audio != nil,
		FilesUploaded:         uRes.FilesUploaded,
		FailedUploads:         uRes.FailedUploads,
		TotalSizeBytes:        uRes.TotalSizeBytes,
		ProcessingTimeSeconds: time.Since(start).Seconds(),
	}

	em.complete(result)
	log.Infof("ingest finished in %.1fs: %d files, %d variants", result.ProcessingTimeSeconds, result.FilesUploaded, len(result.Variants))
	return result, nil
}

// emitter wraps the observer with monotonic progress. Phases report within
// their own ranges; the clamp here is the last line of defense for pollers.
type emitter struct {
	observer models.Observer
	last     int
	terminal bool
}

func newEmitter(observer models.Observer) *emitter {
	return &emitter{observer: observer}
}

func (e *emitter) OnProgress(update models.ProgressUpdate) {
	if e.observer == nil || e.terminal {
		return
	}
	if update.Progress < e.last {
		update.Progress = e.last
	}
	e.last = update.Progress
	e.observer.OnProgress(update)
}

func (e *emitter) emit(status string, progress int, message string) {
	e.OnProgress(models.ProgressUpdate{Status: status, Progress: progress, Message: message})
}

func (e *emitter) complete(result *models.PipelineResult) {
	e.OnProgress(models.ProgressUpdate{
		Status:   models.JobStatusCompleted,
		Progress: 100,
		Message:  "done",
		Result:   result,
	})
	e.terminal = true
}

func (e *emitter) fail(err error) {
	e.OnProgress(models.ProgressUpdate{
		Status:   models.JobStatusFailed,
		Progress: e.last,
		Message:  "failed",
		Error:    err.Error(),
	})
	e.terminal = true
}

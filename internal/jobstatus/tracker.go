package jobstatus

import (
	"context"
	"time"

	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/pkg/models"
)

// Tracker owns the status record of one running job. It adapts pipeline
// progress updates to store writes and clamps progress so readers never see
// it move backwards, whatever the phases report.
type Tracker struct {
	store  Store
	logger *logging.Logger
	job    models.ProcessingJob
}

// NewTracker creates the pending record for a job and writes it to the store.
func NewTracker(ctx context.Context, store Store, jobID string, contentID int64, kind models.ContentKind, logger *logging.Logger) (*Tracker, error) {
	now := time.Now().UTC()
	t := &Tracker{
		store:  store,
		logger: logger,
		job: models.ProcessingJob{
			ID:        jobID,
			ContentID: contentID,
			Kind:      kind,
			Status:    models.JobStatusPending,
			Progress:  0,
			Message:   "queued",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := store.Set(ctx, &t.job); err != nil {
		return nil, err
	}
	return t, nil
}

// OnProgress implements models.Observer. The pipeline drives all status
// transitions through here, the terminal completed update included.
func (t *Tracker) OnProgress(update models.ProgressUpdate) {
	t.apply(update)
}

// Fail writes the terminal failed record. Progress is left where it was.
// It exists for callers outside the pipeline, like the API failing a job
// it could not enqueue.
func (t *Tracker) Fail(err error) {
	t.apply(models.ProgressUpdate{
		Status:   models.JobStatusFailed,
		Progress: t.job.Progress,
		Message:  "failed",
		Error:    err.Error(),
	})
}

// Job returns a snapshot of the current record.
func (t *Tracker) Job() models.ProcessingJob {
	return t.job
}

func (t *Tracker) apply(update models.ProgressUpdate) {
	if update.Progress < t.job.Progress {
		update.Progress = t.job.Progress
	}

	t.job.Status = update.Status
	t.job.Progress = update.Progress
	if update.Message != "" {
		t.job.Message = update.Message
	}
	t.job.Error = update.Error
	t.job.Result = update.Result
	t.job.UpdatedAt = time.Now().UTC()

	// Status writes are best effort; a dropped update only delays pollers.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.store.Set(ctx, &t.job); err != nil {
		t.logger.ErrorWithErr("failed to write job status", err)
	}
}

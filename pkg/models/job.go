package models

import "time"

// JobStatus constants
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ProcessingJob is the TTL'd status record pollers read while an ingest run
// is in flight. It is write-owned by the single task driving the job;
// pollers only read it. The record expires on its own, so a missing job
// means "unknown", never "failed".
type ProcessingJob struct {
	ID        string          `json:"id"`
	ContentID int64           `json:"content_id"`
	Kind      ContentKind     `json:"content_kind"`
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	Message   string          `json:"message"`
	Error     string          `json:"error,omitempty"`
	Result    *PipelineResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Terminal reports whether the job has reached a final state.
func (j *ProcessingJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

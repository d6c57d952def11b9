package models

// ProgressUpdate is one observation of a running ingest job. Result is set
// only on the final completed update, Error only on the final failed one.
type ProgressUpdate struct {
	Status   string          `json:"status"`
	Progress int             `json:"progress"`
	Message  string          `json:"message"`
	Result   *PipelineResult `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Observer receives progress updates from a pipeline run. All calls for one
// job come from the single goroutine driving that job.
type Observer interface {
	OnProgress(update ProgressUpdate)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ProgressUpdate)

// OnProgress calls f(update).
func (f ObserverFunc) OnProgress(update ProgressUpdate) {
	f(update)
}

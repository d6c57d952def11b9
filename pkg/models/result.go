package models

// PipelineResult is the terminal payload of a successful ingest run. The
// caller persists HLSURL and Duration to the catalog only after receiving
// it; nothing else is authorized to populate those fields.
type PipelineResult struct {
	ContentID             int64       `json:"content_id"`
	Kind                  ContentKind `json:"content_kind"`
	HLSURL                string      `json:"hls_url"`
	Duration              float64     `json:"duration"`
	Variants              []string    `json:"variants"`
	Thumbnails            int         `json:"thumbnails"`
	AudioOnly             bool        `json:"audio_only"`
	FilesUploaded         int         `json:"files_uploaded"`
	FailedUploads         int         `json:"failed_uploads"`
	TotalSizeBytes        int64       `json:"total_size_bytes"`
	ProcessingTimeSeconds float64     `json:"processing_time_seconds"`
}

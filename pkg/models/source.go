package models

// SourceVideoInfo holds the probed characteristics of an uploaded source file.
// Everything downstream (ladder selection, GOP sizing, thumbnail spacing)
// is derived from these fields.
type SourceVideoInfo struct {
	Duration  float64 `json:"duration"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frame_rate"`
	Bitrate   int64   `json:"bitrate"`
	Codec     string  `json:"codec"`
	SizeBytes int64   `json:"size_bytes"`
	HasAudio  bool    `json:"has_audio"`
}

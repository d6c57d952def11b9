package models

import "fmt"

// H.264 main profile level 4.0 with AAC-LC, matching the encoder settings.
const (
	VideoVariantCodecs = "avc1.4d401f,mp4a.40.2"
	AudioOnlyCodecs    = "mp4a.40.2"
)

// TranscodeVariant describes one successfully encoded HLS rendition.
// Created once per rung, then consumed by the master playlist builder and
// the uploader; never mutated after creation.
type TranscodeVariant struct {
	Rung             string  `json:"rung"`
	Playlist         string  `json:"playlist"`
	Bandwidth        int64   `json:"bandwidth"`
	AverageBandwidth int64   `json:"average_bandwidth"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	FrameRate        float64 `json:"frame_rate"`
	Codecs           string  `json:"codecs"`
}

// Resolution formats the variant dimensions as an HLS RESOLUTION attribute.
func (v TranscodeVariant) Resolution() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// AudioVariant describes the optional audio-only rendition for
// low-bandwidth clients.
type AudioVariant struct {
	Playlist  string `json:"playlist"`
	Bandwidth int64  `json:"bandwidth"`
	Codecs    string `json:"codecs"`
}

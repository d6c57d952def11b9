package models

// QualityRung defines one level of the adaptive bitrate ladder.
// Bitrates are bits per second.
type QualityRung struct {
	Name         string `json:"name"`
	Height       int    `json:"height"`
	VideoBitrate int64  `json:"video_bitrate"`
	AudioBitrate int64  `json:"audio_bitrate"`
}

// Standard quality ladder, ordered ascending by height.
var (
	Rung240p = QualityRung{
		Name:         "240p",
		Height:       240,
		VideoBitrate: 400000,
		AudioBitrate: 64000,
	}

	Rung360p = QualityRung{
		Name:         "360p",
		Height:       360,
		VideoBitrate: 800000,
		AudioBitrate: 96000,
	}

	Rung480p = QualityRung{
		Name:         "480p",
		Height:       480,
		VideoBitrate: 1500000,
		AudioBitrate: 128000,
	}

	Rung720p = QualityRung{
		Name:         "720p",
		Height:       720,
		VideoBitrate: 3000000,
		AudioBitrate: 128000,
	}

	Rung1080p = QualityRung{
		Name:         "1080p",
		Height:       1080,
		VideoBitrate: 5000000,
		AudioBitrate: 192000,
	}
)

// QualityLadder returns the full rung catalog, ascending by height.
func QualityLadder() []QualityRung {
	return []QualityRung{
		Rung240p,
		Rung360p,
		Rung480p,
		Rung720p,
		Rung1080p,
	}
}

// SelectRungs returns every catalog rung whose height does not exceed the
// source. A source shorter than the smallest rung still gets that one rung,
// so ingestion always produces at least one playable rendition; the encode
// never upscales past the source (see OutputResolution).
func SelectRungs(sourceHeight int) []QualityRung {
	var selected []QualityRung

	ladder := QualityLadder()
	for _, rung := range ladder {
		if rung.Height <= sourceHeight {
			selected = append(selected, rung)
		}
	}

	if len(selected) == 0 {
		selected = append(selected, ladder[0])
	}

	return selected
}

// OutputResolution computes the encode dimensions for this rung: scale to
// the rung height preserving the source aspect ratio, with the width
// rounded down to an even number for 4:2:0 chroma subsampling. A rung
// taller than the source keeps the source's own dimensions.
func (q QualityRung) OutputResolution(sourceWidth, sourceHeight int) (width, height int) {
	if sourceHeight <= 0 || sourceWidth <= 0 {
		return sourceWidth, sourceHeight
	}

	if q.Height > sourceHeight {
		return sourceWidth, sourceHeight
	}

	aspect := float64(sourceWidth) / float64(sourceHeight)
	width = int(float64(q.Height) * aspect)
	width -= width % 2

	return width, q.Height
}

// SegmentSeconds returns the HLS segment duration for this rung. The lowest
// rungs get shorter segments to cut startup latency; higher rungs get longer
// segments to reduce per-segment overhead.
func (q QualityRung) SegmentSeconds() int {
	if q.Height <= 360 {
		return 4
	}
	return 6
}

// GOPSize returns the keyframe interval in frames: segment duration times
// source frame rate, so every segment opens on a keyframe and players can
// switch rungs at any segment boundary.
func (q QualityRung) GOPSize(frameRate float64) int {
	return int(float64(q.SegmentSeconds()) * frameRate)
}

// Bandwidth returns the peak variant bandwidth: video plus audio bitrate.
func (q QualityRung) Bandwidth() int64 {
	return q.VideoBitrate + q.AudioBitrate
}

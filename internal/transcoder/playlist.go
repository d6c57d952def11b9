package transcoder

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/zentrya/ingest/pkg/models"
)

// MasterPlaylistName is the filename of the top-level HLS playlist.
const MasterPlaylistName = "master.m3u8"

// WriteMasterPlaylist writes the master playlist referencing the audio-only
// rendition (if any) followed by the video variants in ascending bandwidth
// order, so players starting from the top entry begin with the cheapest stream.
func WriteMasterPlaylist(path string, variants []models.TranscodeVariant, audio *models.AudioVariant) error {
	if len(variants) == 0 {
		return fmt.Errorf("no variants for master playlist")
	}

	sorted := make([]models.TranscodeVariant, len(variants))
	copy(sorted, variants)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Bandwidth < sorted[j].Bandwidth
	})

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n\n")

	if audio != nil {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,CODECS=\"%s\"\n%s\n\n",
			audio.Bandwidth, audio.Codecs, audio.Playlist)
	}

	for _, v := range sorted {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,AVERAGE-BANDWIDTH=%d,RESOLUTION=%dx%d,CODECS=\"%s\"\n%s\n\n",
			v.Bandwidth, v.AverageBandwidth, v.Width, v.Height, v.Codecs, v.Playlist)
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

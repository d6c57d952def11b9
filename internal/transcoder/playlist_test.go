package transcoder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zentrya/ingest/pkg/models"
)

func TestWriteMasterPlaylist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, MasterPlaylistName)

	// Deliberately unsorted input.
	variants := []models.TranscodeVariant{
		{Rung: "720p", Playlist: "stream_720p.m3u8", Bandwidth: 3128000, AverageBandwidth: 2502400, Width: 1280, Height: 720, Codecs: models.VideoVariantCodecs},
		{Rung: "240p", Playlist: "stream_240p.m3u8", Bandwidth: 464000, AverageBandwidth: 371200, Width: 426, Height: 240, Codecs: models.VideoVariantCodecs},
		{Rung: "480p", Playlist: "stream_480p.m3u8", Bandwidth: 1628000, AverageBandwidth: 1302400, Width: 852, Height: 480, Codecs: models.VideoVariantCodecs},
	}
	audio := &models.AudioVariant{Playlist: "audio_only.m3u8", Bandwidth: 128000, Codecs: models.AudioOnlyCodecs}

	if err := WriteMasterPlaylist(path, variants, audio); err != nil {
		t.Fatalf("WriteMasterPlaylist failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read playlist: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "#EXTM3U\n#EXT-X-VERSION:3\n") {
		t.Error("missing playlist header")
	}

	// Audio entry first, then video variants in ascending bandwidth order.
	order := []string{"audio_only.m3u8", "stream_240p.m3u8", "stream_480p.m3u8", "stream_720p.m3u8"}
	last := -1
	for _, name := range order {
		idx := strings.Index(content, name)
		if idx < 0 {
			t.Fatalf("playlist missing entry %s", name)
		}
		if idx < last {
			t.Errorf("entry %s out of order", name)
		}
		last = idx
	}

	if !strings.Contains(content, `BANDWIDTH=1628000,AVERAGE-BANDWIDTH=1302400,RESOLUTION=852x480,CODECS="avc1.4d401f,mp4a.40.2"`) {
		t.Error("480p variant attributes malformed")
	}
	if !strings.Contains(content, `BANDWIDTH=128000,CODECS="mp4a.40.2"`) {
		t.Error("audio-only attributes malformed")
	}

	// Input order must not have been mutated.
	if variants[0].Rung != "720p" {
		t.Error("input slice was reordered")
	}
}

func TestWriteMasterPlaylistWithoutAudio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, MasterPlaylistName)

	variants := []models.TranscodeVariant{
		{Rung: "240p", Playlist: "stream_240p.m3u8", Bandwidth: 464000, AverageBandwidth: 371200, Width: 426, Height: 240, Codecs: models.VideoVariantCodecs},
	}

	if err := WriteMasterPlaylist(path, variants, nil); err != nil {
		t.Fatalf("WriteMasterPlaylist failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "audio_only") {
		t.Error("playlist should not reference an audio-only rendition")
	}
}

func TestWriteMasterPlaylistRejectsEmptyLadder(t *testing.T) {
	dir := t.TempDir()
	if err := WriteMasterPlaylist(filepath.Join(dir, MasterPlaylistName), nil, nil); err == nil {
		t.Fatal("expected error for empty variant list")
	}
}

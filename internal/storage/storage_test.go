package storage

import (
	"testing"
)

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"master.m3u8", "application/vnd.apple.mpegurl"},
		{"stream_720p_001.ts", "video/mp2t"},
		{"movie.mp4", "video/mp4"},
		{"trailer.MOV", "video/quicktime"},
		{"source.mkv", "video/x-matroska"},
		{"clip.webm", "video/webm"},
		{"thumb_000.jpg", "image/jpeg"},
		{"poster.png", "image/png"},
		{"banner.webp", "image/webp"},
		{"unknown.xyz", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ContentTypeFor(tt.path); got != tt.want {
				t.Errorf("ContentTypeFor(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCacheControlFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"master.m3u8", "public, max-age=3600"},
		{"stream_480p.m3u8", "public, max-age=3600"},
		{"stream_480p_000.ts", "public, max-age=31536000, immutable"},
		{"movie.mp4", "public, max-age=31536000, immutable"},
		{"thumb_003.jpg", "public, max-age=604800"},
		{"poster.png", "public, max-age=604800"},
		{"subtitles.vtt", "public, max-age=86400"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := CacheControlFor(tt.path); got != tt.want {
				t.Errorf("CacheControlFor(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

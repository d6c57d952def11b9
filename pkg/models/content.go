package models

import "fmt"

// ContentKind discriminates which catalog entity owns a video.
type ContentKind string

const (
	KindMovie   ContentKind = "movie"
	KindEpisode ContentKind = "episode"
)

// Valid reports whether the kind is one the pipeline knows.
func (k ContentKind) Valid() bool {
	return k == KindMovie || k == KindEpisode
}

// Prefix returns the object-storage namespace for one content item,
// e.g. "hls/movies/42". Keys are deterministic per (kind, id), so
// re-running ingestion for the same content overwrites in place; that is
// how "replace video" works.
func (k ContentKind) Prefix(contentID int64) string {
	return fmt.Sprintf("hls/%ss/%d", k, contentID)
}

// MasterKey returns the object key of the content item's master playlist.
func (k ContentKind) MasterKey(contentID int64) string {
	return k.Prefix(contentID) + "/master.m3u8"
}

// StorageCategory is the explicit asset class for standalone uploads.
// Callers pass it instead of having the storage layer guess from the file
// extension.
type StorageCategory string

const (
	CategoryVideo     StorageCategory = "video"
	CategoryTrailer   StorageCategory = "trailer"
	CategoryPoster    StorageCategory = "poster"
	CategoryBanner    StorageCategory = "banner"
	CategoryThumbnail StorageCategory = "thumbnail"
)

// Folder returns the bucket folder for the category.
func (c StorageCategory) Folder() string {
	return string(c) + "s"
}

// Valid reports whether the category is a known asset class.
func (c StorageCategory) Valid() bool {
	switch c {
	case CategoryVideo, CategoryTrailer, CategoryPoster, CategoryBanner, CategoryThumbnail:
		return true
	}
	return false
}

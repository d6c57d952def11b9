package uploader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/internal/metrics"
	"github.com/zentrya/ingest/internal/storage"
	"github.com/zentrya/ingest/pkg/models"
)

// DefaultWorkers is the upload pool size when none is configured.
const DefaultWorkers = 10

// Progress range owned by the upload phase.
const (
	uploadProgressStart = 75
	uploadProgressEnd   = 95
)

// Upload priority classes. Playlists go first so a partially visible
// rendition references segments that are already there by the time the
// master lands last in its class wave.
const (
	classPlaylist = iota
	classSegment
	classThumbnail
	classOther
)

// ObjectStore is the subset of the storage client the uploader needs.
type ObjectStore interface {
	PutFile(ctx context.Context, key, localPath string) error
	PublicURL(key string) string
}

// Uploader pushes a finished rendition directory to object storage with a
// bounded worker pool.
type Uploader struct {
	store   ObjectStore
	workers int
	logger  *logging.Logger
}

// New creates a new Uploader
func New(store ObjectStore, workers int, logger *logging.Logger) *Uploader {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Uploader{
		store:   store,
		workers: workers,
		logger:  logger,
	}
}

// BuildManifest walks the rendition directory and produces one entry per
// regular file, keyed under the content's storage prefix.
func BuildManifest(dir string, kind models.ContentKind, contentID int64) ([]models.UploadManifestEntry, error) {
	prefix := kind.Prefix(contentID)

	var entries []models.UploadManifestEntry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		entries = append(entries, models.UploadManifestEntry{
			LocalPath:    path,
			Key:          prefix + "/" + rel,
			Filename:     d.Name(),
			ContentType:  storage.ContentTypeFor(path),
			CacheControl: storage.CacheControlFor(path),
			SizeBytes:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build upload manifest for %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("nothing to upload in %s", dir)
	}

	sortByPriority(entries)
	return entries, nil
}

// Upload pushes all manifest entries through the worker pool. Individual
// failures are collected, not raised; only a failed master playlist fails
// the whole call.
func (u *Uploader) Upload(ctx context.Context, entries []models.UploadManifestEntry, kind models.ContentKind, contentID int64, observer models.Observer) (*models.UploadResult, error) {
	start := time.Now()

	emit := func(progress int, message string) {
		if observer != nil {
			observer.OnProgress(models.ProgressUpdate{
				Status:   models.JobStatusProcessing,
				Progress: progress,
				Message:  message,
			})
		}
	}
	emit(uploadProgressStart, fmt.Sprintf("uploading %d files", len(entries)))

	var (
		mu        sync.Mutex
		uploaded  int
		failed    []models.UploadManifestEntry
		totalSize int64
	)

	sem := make(chan struct{}, u.workers)
	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(entry models.UploadManifestEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			fileStart := time.Now()
			err := u.store.PutFile(ctx, entry.Key, entry.LocalPath)
			elapsed := time.Since(fileStart)
			u.logger.LogUpload(entry.Key, entry.SizeBytes, elapsed, err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, entry)
				metrics.RecordUpload(className(classOf(entry.Filename)), "failure", elapsed.Seconds(), 0)
				return
			}
			uploaded++
			totalSize += entry.SizeBytes
			metrics.RecordUpload(className(classOf(entry.Filename)), "success", elapsed.Seconds(), entry.SizeBytes)

			done := uploaded + len(failed)
			emit(uploadProgressStart+done*(uploadProgressEnd-uploadProgressStart)/len(entries),
				fmt.Sprintf("uploaded %d/%d files", done, len(entries)))
		}(entry)
	}
	wg.Wait()

	for _, entry := range failed {
		if entry.Filename == "master.m3u8" {
			return nil, models.ErrMasterUploadFailed
		}
	}

	masterKey := kind.MasterKey(contentID)
	result := &models.UploadResult{
		MasterURL:      u.store.PublicURL(masterKey),
		BaseURL:        u.store.PublicURL(kind.Prefix(contentID)),
		FilesUploaded:  uploaded,
		FailedUploads:  len(failed),
		TotalSizeBytes: totalSize,
		Variants:       variantNames(entries),
		UploadSeconds:  time.Since(start).Seconds(),
	}

	if len(failed) > 0 {
		u.logger.Warnf("upload finished with %d failures out of %d files", len(failed), len(entries))
	}
	emit(uploadProgressEnd, fmt.Sprintf("uploaded %d files (%d failed)", uploaded, len(failed)))

	return result, nil
}

// variantNames extracts the rung names from variant playlist entries,
// e.g. stream_720p.m3u8 -> 720p.
func variantNames(entries []models.UploadManifestEntry) []string {
	var names []string
	for _, entry := range entries {
		name := entry.Filename
		if strings.HasPrefix(name, "stream_") && strings.HasSuffix(name, ".m3u8") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(name, "stream_"), ".m3u8"))
		}
	}
	sort.Strings(names)
	return names
}

func sortByPriority(entries []models.UploadManifestEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return classOf(entries[i].Filename) < classOf(entries[j].Filename)
	})
}

func classOf(filename string) int {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".m3u8":
		return classPlaylist
	case ".ts", ".mp4":
		return classSegment
	case ".jpg", ".jpeg", ".png", ".webp":
		return classThumbnail
	default:
		return classOther
	}
}

func className(class int) string {
	switch class {
	case classPlaylist:
		return "playlist"
	case classSegment:
		return "segment"
	case classThumbnail:
		return "thumbnail"
	default:
		return "other"
	}
}

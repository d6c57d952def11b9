package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/zentrya/ingest/internal/config"
	"github.com/zentrya/ingest/pkg/models"
)

// Cache-control policies per object class. Segments are immutable once
// written (re-ingest replaces the whole prefix), playlists may be replaced.
const (
	cacheControlPlaylist = "public, max-age=3600"
	cacheControlSegment  = "public, max-age=31536000, immutable"
	cacheControlImage    = "public, max-age=604800"
	cacheControlDefault  = "public, max-age=86400"
)

// Store provides object storage operations against the media bucket
type Store struct {
	client        *minio.Client
	bucketName    string
	publicBaseURL string
}

// New creates a new storage client and ensures the bucket exists
func New(cfg config.StorageConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Store{
		client:        client,
		bucketName:    cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// PutFile uploads a local file under the given key with content-type and
// cache-control derived from the filename.
func (s *Store) PutFile(ctx context.Context, key, localPath string) error {
	_, err := s.client.FPutObject(ctx, s.bucketName, key, localPath, minio.PutObjectOptions{
		ContentType:  ContentTypeFor(localPath),
		CacheControl: CacheControlFor(localPath),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// PutAsset uploads a single standalone asset under its category folder and
// returns the object key.
func (s *Store) PutAsset(ctx context.Context, category models.StorageCategory, filename, localPath string) (string, error) {
	if !category.Valid() {
		return "", fmt.Errorf("invalid storage category %q", category)
	}
	key := category.Folder() + "/" + filename
	if err := s.PutFile(ctx, key, localPath); err != nil {
		return "", err
	}
	return key, nil
}

// Exists reports whether an object exists under the given key
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, nil
}

// RemoveByPrefix deletes every object under the given prefix and returns
// the number of objects removed. Used to drop a rendition before re-ingest.
func (s *Store) RemoveByPrefix(ctx context.Context, prefix string) (int, error) {
	objects := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	removed := 0
	for object := range objects {
		if object.Err != nil {
			return removed, fmt.Errorf("failed to list objects under %s: %w", prefix, object.Err)
		}
		err := s.client.RemoveObject(ctx, s.bucketName, object.Key, minio.RemoveObjectOptions{})
		if err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", object.Key, err)
		}
		removed++
	}
	return removed, nil
}

// PublicURL returns the publicly reachable URL for an object key
func (s *Store) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

// ContentTypeFor returns the content type for a filename by extension
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// CacheControlFor returns the cache-control policy for a filename by extension
func CacheControlFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3u8":
		return cacheControlPlaylist
	case ".ts", ".mp4":
		return cacheControlSegment
	case ".jpg", ".jpeg", ".png", ".webp":
		return cacheControlImage
	default:
		return cacheControlDefault
	}
}

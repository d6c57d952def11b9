package main

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zentrya/ingest/internal/jobstatus"
	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/internal/metrics"
	"github.com/zentrya/ingest/internal/queue"
	"github.com/zentrya/ingest/pkg/models"
)

// Publisher enqueues ingest requests for the worker.
type Publisher interface {
	Publish(ctx context.Context, req *queue.IngestRequest) error
}

// RenditionStore is the object-storage surface the API needs.
type RenditionStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	RemoveByPrefix(ctx context.Context, prefix string) (int, error)
	PublicURL(key string) string
}

// Catalog clears playback state when a rendition is deleted.
type Catalog interface {
	ClearPlayback(ctx context.Context, kind models.ContentKind, contentID int64) error
}

// API holds the handler dependencies
type API struct {
	publisher Publisher
	jobs      jobstatus.Store
	store     RenditionStore
	catalog   Catalog
	logger    *logging.Logger
}

// NewAPI creates the handler set
func NewAPI(publisher Publisher, jobs jobstatus.Store, store RenditionStore, catalog Catalog, logger *logging.Logger) *API {
	return &API{
		publisher: publisher,
		jobs:      jobs,
		store:     store,
		catalog:   catalog,
		logger:    logger,
	}
}

type ingestRequest struct {
	ContentID  int64  `json:"content_id" binding:"required"`
	Kind       string `json:"content_kind" binding:"required"`
	SourcePath string `json:"source_path" binding:"required"`
	Force      bool   `json:"force"`
}

// createIngest enqueues an ingest job for a source file already on shared
// storage. Re-ingest of existing content requires force, since the new
// rendition overwrites the old one in place.
func (api *API) createIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := models.ContentKind(req.Kind)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content_kind must be movie or episode"})
		return
	}

	if _, err := os.Stat(req.SourcePath); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source file not found"})
		return
	}

	if !req.Force {
		exists, err := api.store.Exists(c.Request.Context(), kind.MasterKey(req.ContentID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check existing rendition"})
			return
		}
		if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "rendition already exists, use force to replace"})
			return
		}
	}

	jobID := uuid.New().String()
	tracker, err := jobstatus.NewTracker(c.Request.Context(), api.jobs, jobID, req.ContentID, kind, api.logger)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job record"})
		return
	}

	err = api.publisher.Publish(c.Request.Context(), &queue.IngestRequest{
		JobID:      jobID,
		ContentID:  req.ContentID,
		Kind:       kind,
		SourcePath: req.SourcePath,
	})
	if err != nil {
		api.logger.ErrorWithErr("failed to enqueue ingest request", err)
		tracker.Fail(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	api.logger.WithJobID(jobID).WithContent(req.Kind, req.ContentID).Info("ingest job queued")

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": models.JobStatusPending,
	})
}

// getJob returns the status record of one ingest job. An expired or unknown
// job is a 404, never an error.
func (api *API) getJob(c *gin.Context) {
	job, err := api.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func contentParams(c *gin.Context) (models.ContentKind, int64, bool) {
	kind := models.ContentKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be movie or episode"})
		return "", 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return "", 0, false
	}
	return kind, id, true
}

// getRendition reports whether a playable rendition exists for the content.
func (api *API) getRendition(c *gin.Context) {
	kind, id, ok := contentParams(c)
	if !ok {
		return
	}

	masterKey := kind.MasterKey(id)
	exists, err := api.store.Exists(c.Request.Context(), masterKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check rendition"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "no rendition for this content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content_id":   id,
		"content_kind": kind,
		"hls_url":      api.store.PublicURL(masterKey),
	})
}

// deleteRendition removes every stored object of a rendition and clears the
// catalog row's playback state.
func (api *API) deleteRendition(c *gin.Context) {
	kind, id, ok := contentParams(c)
	if !ok {
		return
	}

	removed, err := api.store.RemoveByPrefix(c.Request.Context(), kind.Prefix(id))
	if err != nil {
		api.logger.ErrorWithErr("failed to delete rendition", err)
		metrics.RecordError("api", "delete_rendition")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete rendition"})
		return
	}

	if err := api.catalog.ClearPlayback(c.Request.Context(), kind, id); err != nil {
		api.logger.ErrorWithErr("failed to clear catalog playback", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"content_id":      id,
		"content_kind":    kind,
		"objects_removed": removed,
	})
}

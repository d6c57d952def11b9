package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zentrya/ingest/internal/jobstatus"
	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/internal/queue"
	"github.com/zentrya/ingest/pkg/models"
)

type fakePublisher struct {
	published []*queue.IngestRequest
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, req *queue.IngestRequest) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, req)
	return nil
}

type fakeRenditionStore struct {
	existing map[string]bool
	removed  []string
}

func (f *fakeRenditionStore) Exists(ctx context.Context, key string) (bool, error) {
	return f.existing[key], nil
}

func (f *fakeRenditionStore) RemoveByPrefix(ctx context.Context, prefix string) (int, error) {
	f.removed = append(f.removed, prefix)
	return 12, nil
}

func (f *fakeRenditionStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type fakeCatalog struct {
	cleared []int64
}

func (f *fakeCatalog) ClearPlayback(ctx context.Context, kind models.ContentKind, contentID int64) error {
	f.cleared = append(f.cleared, contentID)
	return nil
}

type testEnv struct {
	router    *gin.Engine
	publisher *fakePublisher
	store     *fakeRenditionStore
	catalog   *fakeCatalog
	jobs      *jobstatus.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		publisher: &fakePublisher{},
		store:     &fakeRenditionStore{existing: map[string]bool{}},
		catalog:   &fakeCatalog{},
		jobs:      jobstatus.NewMemoryStore(),
	}

	api := NewAPI(env.publisher, env.jobs, env.store, env.catalog, logging.NewNopLogger())

	router := gin.New()
	router.POST("/api/v1/ingest", api.createIngest)
	router.GET("/api/v1/jobs/:id", api.getJob)
	router.GET("/api/v1/renditions/:kind/:id", api.getRendition)
	router.DELETE("/api/v1/renditions/:kind/:id", api.deleteRendition)
	env.router = router

	return env
}

func writeSourceFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0644))
	return path
}

func postIngest(env *testEnv, body map[string]interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/ingest", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)
	return w
}

func TestCreateIngest(t *testing.T) {
	env := newTestEnv(t)

	w := postIngest(env, map[string]interface{}{
		"content_id":   42,
		"content_kind": "movie",
		"source_path":  writeSourceFile(t),
	})

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["job_id"])
	assert.Equal(t, models.JobStatusPending, resp["status"])

	require.Len(t, env.publisher.published, 1)
	published := env.publisher.published[0]
	assert.Equal(t, int64(42), published.ContentID)
	assert.Equal(t, models.KindMovie, published.Kind)
	assert.Equal(t, resp["job_id"], published.JobID)

	// A pending record must exist before the worker picks the job up.
	job, err := env.jobs.Get(context.Background(), resp["job_id"])
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, models.JobStatusPending, job.Status)
}

func TestCreateIngestInvalidKind(t *testing.T) {
	env := newTestEnv(t)

	w := postIngest(env, map[string]interface{}{
		"content_id":   42,
		"content_kind": "series",
		"source_path":  writeSourceFile(t),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.publisher.published)
}

func TestCreateIngestMissingSource(t *testing.T) {
	env := newTestEnv(t)

	w := postIngest(env, map[string]interface{}{
		"content_id":   42,
		"content_kind": "movie",
		"source_path":  "/nonexistent/source.mp4",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIngestConflictWithoutForce(t *testing.T) {
	env := newTestEnv(t)
	env.store.existing["hls/movies/42/master.m3u8"] = true

	w := postIngest(env, map[string]interface{}{
		"content_id":   42,
		"content_kind": "movie",
		"source_path":  writeSourceFile(t),
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, env.publisher.published)
}

func TestCreateIngestForceReplaces(t *testing.T) {
	env := newTestEnv(t)
	env.store.existing["hls/movies/42/master.m3u8"] = true

	w := postIngest(env, map[string]interface{}{
		"content_id":   42,
		"content_kind": "movie",
		"source_path":  writeSourceFile(t),
		"force":        true,
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Len(t, env.publisher.published, 1)
}

func TestCreateIngestPublishFailureFailsJob(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = fmt.Errorf("broker down")

	w := postIngest(env, map[string]interface{}{
		"content_id":   42,
		"content_kind": "movie",
		"source_path":  writeSourceFile(t),
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetJob(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.jobs.Set(context.Background(), &models.ProcessingJob{
		ID:        "job-9",
		ContentID: 7,
		Kind:      models.KindEpisode,
		Status:    models.JobStatusProcessing,
		Progress:  40,
	}))

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/jobs/job-9", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var job models.ProcessingJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, 40, job.Progress)
}

func TestGetJobUnknown(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/jobs/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRendition(t *testing.T) {
	env := newTestEnv(t)
	env.store.existing["hls/episodes/7/master.m3u8"] = true

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/renditions/episode/7", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn.example.com/hls/episodes/7/master.m3u8", resp["hls_url"])
}

func TestGetRenditionMissing(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/renditions/movie/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRendition(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/v1/renditions/movie/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"hls/movies/42"}, env.store.removed)
	assert.Equal(t, []int64{42}, env.catalog.cleared)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(12), resp["objects_removed"])
}

func TestDeleteRenditionBadParams(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/v1/renditions/movie/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/v1/renditions/show/42", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package jobstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zentrya/ingest/pkg/models"
)

const keyPrefix = "hls:jobs:"

// DefaultTTL keeps finished job records around for a day of polling.
const DefaultTTL = 24 * time.Hour

// Store holds TTL'd job status records. Get returns (nil, nil) for an
// unknown or expired job.
type Store interface {
	Set(ctx context.Context, job *models.ProcessingJob) error
	Get(ctx context.Context, jobID string) (*models.ProcessingJob, error)
	Delete(ctx context.Context, jobID string) error
}

// RedisStore is the production Store backed by Redis with a per-record TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed job status store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Set(ctx context.Context, job *models.ProcessingJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+job.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (*models.ProcessingJob, error) {
	data, err := s.client.Get(ctx, keyPrefix+jobID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	var job models.ProcessingJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", jobID, err)
	}
	return &job, nil
}

func (s *RedisStore) Delete(ctx context.Context, jobID string) error {
	if err := s.client.Del(ctx, keyPrefix+jobID).Err(); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", jobID, err)
	}
	return nil
}

// MemoryStore is an in-process Store for tests and single-node setups.
// Records never expire.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.ProcessingJob
}

// NewMemoryStore creates an in-memory job status store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*models.ProcessingJob)}
}

func (s *MemoryStore) Set(ctx context.Context, job *models.ProcessingJob) error {
	copied := *job
	s.mu.Lock()
	s.jobs[job.ID] = &copied
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, jobID string) (*models.ProcessingJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (s *MemoryStore) Delete(ctx context.Context, jobID string) error {
	s.mu.Lock()
	delete(s.jobs, jobID)
	s.mu.Unlock()
	return nil
}

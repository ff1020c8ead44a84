package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DoubtSolver/internal/config"
	"github.com/akolanti/DoubtSolver/internal/domain/jobModel"
	"github.com/akolanti/DoubtSolver/pkg/logger_i"
)

type storedJob struct {
	job       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore is the fallback when redis is offline. Jobs expire after the same TTL
// the redis store uses; expired entries are dropped lazily on read and on save.
type InMemoryJobStore struct {
	mu     sync.RWMutex
	jobs   map[string]storedJob
	ttl    time.Duration
	now    func() time.Time
	logger *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return NewInMemoryJobStore(config.RedisJobStoreTTL, time.Now)
}

func NewInMemoryJobStore(ttl time.Duration, now func() time.Time) *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs:   make(map[string]storedJob),
		ttl:    ttl,
		now:    now,
		logger: logger_i.NewLogger("InMem JobStore"),
	}
}

func (s *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked(now)
	s.jobs[job.Id] = storedJob{job: job, expiresAt: now.Add(s.ttl)}
	s.logger.Debug("Saved job to store", "jobId", job.Id, "status", job.Status)
	return nil
}

func (s *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	s.mu.RLock()
	entry, found := s.jobs[jobId]
	s.mu.RUnlock()
	if !found {
		return jobModel.Job{}, false
	}
	if !s.now().Before(entry.expiresAt) {
		s.DeleteJob(ctx, jobId)
		return jobModel.Job{}, false
	}
	return entry.job, true
}

func (s *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

func (s *InMemoryJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *InMemoryJobStore) evictExpiredLocked(now time.Time) {
	for id, entry := range s.jobs {
		if !now.Before(entry.expiresAt) {
			delete(s.jobs, id)
		}
	}
}

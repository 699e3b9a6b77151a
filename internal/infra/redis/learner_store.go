package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"learning-games-service/internal/app"
	"learning-games-service/internal/logger"
	"learning-games-service/internal/progress"
)

// LearnerStore is a Redis-aware implementation of LearnerRepository.
// Notes:
//   - It keeps a local in-memory map of learners to reuse the in-process event stream.
//   - Redis is used to mark learner liveness so other instances can see who is online.
type LearnerStore struct {
	client *redis.Client
	ttl    time.Duration
	repo   progress.Repository
	log    *logger.Logger
	opts   []progress.Option

	mu       sync.RWMutex
	learners map[string]*app.Learner
}

func NewLearnerStore(client *redis.Client, ttl time.Duration, repo progress.Repository, log *logger.Logger, opts ...progress.Option) *LearnerStore {
	return &LearnerStore{
		client:   client,
		ttl:      ttl,
		repo:     repo,
		log:      log,
		opts:     opts,
		learners: make(map[string]*app.Learner),
	}
}

func (s *LearnerStore) GetOrCreate(ctx context.Context, learnerID string) *app.Learner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if learner, ok := s.learners[learnerID]; ok {
		return learner
	}
	learner := app.NewLearner(progress.Open(ctx, learnerID, s.repo, s.log, s.opts...))
	s.learners[learnerID] = learner
	// best-effort liveness marker
	_ = s.client.Set(ctx, s.key(learnerID), "1", s.ttl).Err()
	return learner
}

func (s *LearnerStore) Get(learnerID string) (*app.Learner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	learner, ok := s.learners[learnerID]
	return learner, ok
}

func (s *LearnerStore) DeleteIfIdle(learnerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	learner, ok := s.learners[learnerID]
	if !ok {
		return
	}
	if learner.IsIdle() {
		learner.Close()
		delete(s.learners, learnerID)
		_ = s.client.Del(context.Background(), s.key(learnerID)).Err()
	}
}

func (s *LearnerStore) key(learnerID string) string {
	return "learner:online:" + learnerID
}

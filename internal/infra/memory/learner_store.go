package memory

import (
	"context"
	"sync"

	"learning-games-service/internal/app"
	"learning-games-service/internal/logger"
	"learning-games-service/internal/progress"
)

// LearnerStore is an in-memory implementation of app.LearnerRepository. Learners are opened
// against repo on first use.
type LearnerStore struct {
	repo progress.Repository
	log  *logger.Logger
	opts []progress.Option

	mu       sync.RWMutex
	learners map[string]*app.Learner
}

func NewLearnerStore(repo progress.Repository, log *logger.Logger, opts ...progress.Option) *LearnerStore {
	return &LearnerStore{
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
	}
}

package memory

import (
	"context"
	"sync"

	"learning-games-service/internal/domain"
)

// ProgressRepository keeps serialized progress documents in process memory.
type ProgressRepository struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{docs: make(map[string][]byte)}
}

func (r *ProgressRepository) Load(_ context.Context, learnerID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	raw, ok := r.docs[learnerID]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (r *ProgressRepository) Save(_ context.Context, learnerID string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[learnerID] = append([]byte(nil), data...)
	return nil
}

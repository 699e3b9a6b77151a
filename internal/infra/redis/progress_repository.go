package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"learning-games-service/internal/domain"
)

// ProgressRepository stores each learner's progress document under progress:{learnerID}.
// Keys never expire.
type ProgressRepository struct {
	client *redis.Client
}

func NewProgressRepository(client *redis.Client) *ProgressRepository {
	return &ProgressRepository{client: client}
}

func (r *ProgressRepository) Load(ctx context.Context, learnerID string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.key(learnerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *ProgressRepository) Save(ctx context.Context, learnerID string, data []byte) error {
	return r.client.Set(ctx, r.key(learnerID), data, 0).Err()
}

func (r *ProgressRepository) key(learnerID string) string {
	return "progress:" + learnerID
}

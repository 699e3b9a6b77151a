package redis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"learning-games-service/internal/domain"
)

// SpecLoader fetches game specs from a backing store (e.g., document DB).
type SpecLoader interface {
	LoadSpec(ctx context.Context, gameID string) (domain.GameSpec, error)
}

// SpecRepository caches encoded specs in Redis and falls back to a loader on cache miss.
// Specs are stored as: SET spec:{gameID} {type-tagged JSON}
type SpecRepository struct {
	client *redis.Client
	loader SpecLoader
	ttl    time.Duration
	sf     singleflight.Group

	// singleflight only serializes per key, so loads of different games share rnd.
	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewSpecRepository(client *redis.Client, loader SpecLoader, ttl time.Duration) *SpecRepository {
	return &SpecRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *SpecRepository) GetSpec(ctx context.Context, gameID string) (domain.GameSpec, error) {
	if spec, ok := r.cached(ctx, gameID); ok {
		return spec, nil
	}

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if spec, ok := r.cached(ctx, gameID); ok {
			return spec, nil
		}

		spec, err := r.loader.LoadSpec(ctx, gameID)
		if err != nil {
			return nil, err
		}

		if raw, err := domain.EncodeGameSpec(spec); err == nil {
			_ = r.client.Set(ctx, r.key(gameID), raw, r.ttlWithJitter()).Err()
		}
		return spec, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.GameSpec), nil
}

// cached treats unreadable entries as misses so a bad cache value is replaced on the next load.
func (r *SpecRepository) cached(ctx context.Context, gameID string) (domain.GameSpec, bool) {
	raw, err := r.client.Get(ctx, r.key(gameID)).Bytes()
	if err != nil {
		return nil, false
	}
	spec, err := domain.DecodeGameSpec(raw)
	if err != nil {
		return nil, false
	}
	return spec, true
}

func (r *SpecRepository) key(gameID string) string {
	return "spec:" + gameID
}

func (r *SpecRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	jitter := r.rnd.Int63n(jitterMax + 1)
	r.rndMu.Unlock()
	return r.ttl + time.Duration(jitter)
}

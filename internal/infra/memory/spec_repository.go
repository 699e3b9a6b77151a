package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"learning-games-service/internal/domain"
)

// SpecLoader fetches game specs from a backing store (e.g., document DB, spec directory).
type SpecLoader interface {
	LoadSpec(ctx context.Context, gameID string) (domain.GameSpec, error)
}

// Validator checks a raw spec document before it is decoded.
type Validator interface {
	Validate(raw []byte) error
}

// SpecRepository caches specs with TTL to avoid repeated loads.
type SpecRepository struct {
	loader SpecLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSpec
}

type cachedSpec struct {
	spec      domain.GameSpec
	expiresAt time.Time
}

func NewSpecRepository(loader SpecLoader, ttl time.Duration) *SpecRepository {
	return &SpecRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSpec),
	}
}

func (r *SpecRepository) GetSpec(ctx context.Context, gameID string) (domain.GameSpec, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[gameID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.spec, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[gameID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.spec, nil
		}
		r.mu.RUnlock()

		spec, err := r.loader.LoadSpec(ctx, gameID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[gameID] = cachedSpec{
			spec:      spec,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return spec, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.GameSpec), nil
}

// ttlWithJitter must be called with r.mu held; it guards rnd as well as the cache.
func (r *SpecRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticSpecLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticSpecLoader struct {
	specs map[string]domain.GameSpec
}

func NewStaticSpecLoader(specs map[string]domain.GameSpec) *StaticSpecLoader {
	return &StaticSpecLoader{specs: specs}
}

func (l *StaticSpecLoader) LoadSpec(_ context.Context, gameID string) (domain.GameSpec, error) {
	if spec, ok := l.specs[gameID]; ok {
		return spec, nil
	}
	return nil, domain.ErrGameNotFound
}

// DirSpecLoader reads specs from <dir>/<gameID>.json.
type DirSpecLoader struct {
	dir       string
	validator Validator
}

// NewDirSpecLoader returns a loader over dir. validator may be nil to skip validation.
func NewDirSpecLoader(dir string, validator Validator) *DirSpecLoader {
	return &DirSpecLoader{dir: dir, validator: validator}
}

func (l *DirSpecLoader) LoadSpec(_ context.Context, gameID string) (domain.GameSpec, error) {
	if gameID == "" || gameID != filepath.Base(gameID) {
		return nil, domain.ErrGameNotFound
	}
	raw, err := os.ReadFile(filepath.Join(l.dir, gameID+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read spec %s: %w", gameID, err)
	}
	if l.validator != nil {
		if err := l.validator.Validate(raw); err != nil {
			return nil, err
		}
	}
	return domain.DecodeGameSpec(raw)
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"learning-games-service/internal/app"
	"learning-games-service/internal/config"
	"learning-games-service/internal/domain"
	"learning-games-service/internal/infra/memory"
	pgstore "learning-games-service/internal/infra/postgres"
	redisstore "learning-games-service/internal/infra/redis"
	"learning-games-service/internal/infra/schema"
	"learning-games-service/internal/infra/sqlite"
	"learning-games-service/internal/logger"
	"learning-games-service/internal/progress"
)

// backends holds the storage wiring selected from config. Progress goes to the first
// configured of Redis, Postgres, SQLite, falling back to process memory.
type backends struct {
	redis    *redis.Client
	pool     *pgxpool.Pool
	bunDB    *bun.DB
	sqlite   *sqlite.ProgressRepository
	progress progress.Repository
	specs    app.SpecRepository
	learners app.LearnerRepository
}

func openBackends(ctx context.Context, cfg config.Config, log *logger.Logger) (*backends, error) {
	b := &backends{}
	var err error

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	if cfg.Postgres.URL != "" {
		b.pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	}

	switch {
	case b.redis != nil:
		b.progress = redisstore.NewProgressRepository(b.redis)
		log.Info("progress backend", "kind", "redis")
	case cfg.Postgres.URL != "":
		b.bunDB = openBunDB(cfg.Postgres.URL)
		b.progress = pgstore.NewProgressRepository(b.bunDB)
		log.Info("progress backend", "kind", "postgres")
	case cfg.SQLite.Path != "":
		b.sqlite, err = sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.progress = b.sqlite
		log.Info("progress backend", "kind", "sqlite", "path", cfg.SQLite.Path)
	default:
		b.progress = memory.NewProgressRepository()
		log.Warn("progress backend is in-memory; progress is lost on restart")
	}

	validator := schema.NewValidator()
	var loader memory.SpecLoader
	switch {
	case b.pool != nil:
		loader = pgstore.NewSpecLoader(b.pool, validator)
	case cfg.Specs.Dir != "":
		loader = memory.NewDirSpecLoader(cfg.Specs.Dir, validator)
	default:
		loader = memory.NewStaticSpecLoader(sampleSpecs())
	}

	specTTL := config.TTLDuration(cfg.Specs.TTL, 10*time.Minute)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	if b.redis != nil {
		b.specs = redisstore.NewSpecRepository(b.redis, loader, specTTL)
		b.learners = redisstore.NewLearnerStore(b.redis, redisTTL, b.progress, log)
	} else {
		b.specs = memory.NewSpecRepository(loader, specTTL)
		b.learners = memory.NewLearnerStore(b.progress, log)
	}
	return b, nil
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.bunDB != nil {
		_ = b.bunDB.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.sqlite != nil {
		_ = b.sqlite.Close()
	}
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.New(cfg.Log.Mode)
}

// sampleSpecs provides a minimal set of games; configure specs.dir or Postgres in production.
func sampleSpecs() map[string]domain.GameSpec {
	return map[string]domain.GameSpec{
		"sample-mcq": domain.MultipleChoiceSpec{
			GameInfo: domain.GameInfo{ID: "sample-mcq", Title: "Addition", OMIMapping: []string{"arith-add"}},
			Question: "What is 2 + 2?",
			Options: []domain.Option{
				{ID: "o1", Text: "3"},
				{ID: "o2", Text: "4"},
				{ID: "o3", Text: "5"},
			},
			CorrectOptionID: "o2",
			Explanation:     "Two plus two is four.",
		},
		"sample-ordering": domain.OrderingSpec{
			GameInfo: domain.GameInfo{ID: "sample-ordering", Title: "Counting", TimeLimitSeconds: 60, OMIMapping: []string{"number-order"}},
			Prompt:   "Put the numbers in ascending order",
			Items: []domain.Item{
				{ID: "one", Text: "1"},
				{ID: "two", Text: "2"},
				{ID: "three", Text: "3"},
			},
		},
	}
}

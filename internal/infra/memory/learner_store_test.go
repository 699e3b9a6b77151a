package memory

import (
	"context"
	"errors"
	"testing"

	"learning-games-service/internal/domain"
	"learning-games-service/internal/progress"
)

func TestLearnerStoreLifecycle(t *testing.T) {
	store := NewLearnerStore(NewProgressRepository(), nil, progress.WithTickInterval(0))

	learner := store.GetOrCreate(context.Background(), "learner-1")
	if learner == nil {
		t.Fatalf("expected learner")
	}
	if again := store.GetOrCreate(context.Background(), "learner-1"); again != learner {
		t.Fatalf("expected the same learner to be reused")
	}
	if _, ok := store.Get("learner-1"); !ok {
		t.Fatalf("expected learner present")
	}

	store.DeleteIfIdle("learner-1")
	if _, ok := store.Get("learner-1"); ok {
		t.Fatalf("expected learner removed when idle")
	}
}

func TestLearnerStoreLoadsPersistedProgress(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository()
	store := NewLearnerStore(repo, nil, progress.WithTickInterval(0))

	learner := store.GetOrCreate(ctx, "learner-1")
	learner.Store().RecordOMIEvidence(ctx, domain.OMIEvidence{OMIID: "x", Demonstrated: true, Accuracy: 1})
	store.DeleteIfIdle("learner-1")

	reloaded := store.GetOrCreate(ctx, "learner-1")
	if got := reloaded.Store().MasteryLevel("x"); got != domain.MasteryEmerging {
		t.Fatalf("expected persisted mastery, got %s", got)
	}
}

func TestProgressRepositoryNotFound(t *testing.T) {
	repo := NewProgressRepository()
	if _, err := repo.Load(context.Background(), "nobody"); !errors.Is(err, domain.ErrProgressNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.Save(context.Background(), "someone", []byte(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := repo.Load(context.Background(), "someone")
	if err != nil || string(raw) != `{}` {
		t.Fatalf("unexpected load result %q %v", raw, err)
	}
}

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"learning-games-service/internal/domain"
	"learning-games-service/internal/progress"
)

func openTestRepo(t *testing.T) *ProgressRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("open test repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestLoadMissing(t *testing.T) {
	repo := openTestRepo(t)
	if _, err := repo.Load(context.Background(), "nobody"); !errors.Is(err, domain.ErrProgressNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	if err := repo.Save(ctx, "learner-1", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, "learner-1", []byte(`{"version":2}`)); err != nil {
		t.Fatalf("save again: %v", err)
	}
	raw, err := repo.Load(ctx, "learner-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(raw) != `{"version":2}` {
		t.Fatalf("expected last write to win, got %s", raw)
	}
}

func TestPragmasApplied(t *testing.T) {
	repo := openTestRepo(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL = 1
	}
	for _, tt := range tests {
		var got string
		if err := repo.db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")

	repo, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store := progress.Open(ctx, "learner-1", repo, nil, progress.WithTickInterval(0))
	for i := 0; i < 3; i++ {
		store.RecordOMIEvidence(ctx, domain.OMIEvidence{OMIID: "x", Demonstrated: true, Accuracy: 1})
	}
	repo.Close()

	repo, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	reopened := progress.Open(ctx, "learner-1", repo, nil, progress.WithTickInterval(0))
	if got := reopened.MasteryLevel("x"); got != domain.MasteryMastered {
		t.Fatalf("expected mastered after reopen, got %s", got)
	}
}

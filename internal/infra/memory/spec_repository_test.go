package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"learning-games-service/internal/domain"
)

func TestSpecRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		SpecLoader: NewStaticSpecLoader(map[string]domain.GameSpec{
			"fractions": sampleSpec(),
		}),
	}
	repo := NewSpecRepository(loader, time.Minute)

	if _, err := repo.GetSpec(context.Background(), "fractions"); err != nil {
		t.Fatalf("get spec: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetSpec(context.Background(), "fractions"); err != nil {
		t.Fatalf("get spec 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestSpecRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{SpecLoader: NewStaticSpecLoader(map[string]domain.GameSpec{"fractions": sampleSpec()})}
	repo := NewSpecRepository(loader, time.Minute)
	now := time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetSpec(context.Background(), "fractions")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetSpec(context.Background(), "fractions")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestSpecRepositoryUnknownGame(t *testing.T) {
	repo := NewSpecRepository(NewStaticSpecLoader(nil), time.Minute)
	if _, err := repo.GetSpec(context.Background(), "missing"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDirSpecLoader(t *testing.T) {
	dir := t.TempDir()
	raw, err := domain.EncodeGameSpec(sampleSpec())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fractions.json"), raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loader := NewDirSpecLoader(dir, nil)
	spec, err := loader.LoadSpec(context.Background(), "fractions")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Kind() != domain.TypeMultipleChoice || spec.Info().ID != "fractions" {
		t.Fatalf("unexpected spec %+v", spec)
	}

	if _, err := loader.LoadSpec(context.Background(), "../fractions"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected path escape to be rejected, got %v", err)
	}
	if _, err := loader.LoadSpec(context.Background(), "nope"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDirSpecLoaderValidates(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"type":"mcq"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := NewDirSpecLoader(dir, rejectAll{})
	if _, err := loader.LoadSpec(context.Background(), "bad"); !errors.Is(err, domain.ErrInvalidSpec) {
		t.Fatalf("expected invalid spec, got %v", err)
	}
}

type rejectAll struct{}

func (rejectAll) Validate([]byte) error { return domain.ErrInvalidSpec }

type countingLoader struct {
	SpecLoader
	calls int
}

func (l *countingLoader) LoadSpec(ctx context.Context, gameID string) (domain.GameSpec, error) {
	l.calls++
	return l.SpecLoader.LoadSpec(ctx, gameID)
}

func sampleSpec() domain.GameSpec {
	return domain.MultipleChoiceSpec{
		GameInfo: domain.GameInfo{ID: "fractions", OMIMapping: []string{"omi-fractions"}},
		Question: "What is 1/2 + 1/4?",
		Options: []domain.Option{
			{ID: "o1", Text: "2/6"},
			{ID: "o2", Text: "3/4"},
		},
		CorrectOptionID: "o2",
	}
}

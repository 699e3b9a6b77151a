package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"learning-games-service/internal/app"
	"learning-games-service/internal/domain"
	"learning-games-service/internal/infra/memory"
	"learning-games-service/internal/progress"
	"learning-games-service/internal/scoring"
)

func TestStartAndSubmit(t *testing.T) {
	ctx := context.Background()
	service, _, repo := newTestService()

	instance, err := service.Start(ctx, "learner-1", "mcq-set")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if instance.InstanceID == "" || len(instance.QuestionIDs) != 2 {
		t.Fatalf("unexpected instance %+v", instance)
	}

	result, ok, err := service.Submit(ctx, "learner-1", "mcq-set", domain.MultipleChoiceSetAnswer{
		Answers: map[string]string{"Q1": "B", "Q2": "D"},
	})
	if err != nil || !ok {
		t.Fatalf("submit failed: ok=%v err=%v", ok, err)
	}
	if result.Correct || result.Score != 0.5 {
		t.Fatalf("expected half credit, got %+v", result)
	}

	doc := service.Progress(ctx, "learner-1")
	if len(doc.SubmittedQuestions) != 2 {
		t.Fatalf("expected 2 submitted questions, got %d", len(doc.SubmittedQuestions))
	}
	if len(doc.AskedQuestions) != 2 {
		t.Fatalf("expected 2 asked questions, got %d", len(doc.AskedQuestions))
	}
	if got := service.Mastery(ctx, "learner-1", "b"); got.TotalAttempts != 1 || got.SuccessfulAttempts != 0 {
		t.Fatalf("unexpected mastery for b: %+v", got)
	}
	if _, err := repo.Load(ctx, "learner-1"); err != nil {
		t.Fatalf("expected progress to be persisted: %v", err)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	ch, cancel := service.Subscribe(ctx, "learner-1")
	defer cancel()

	if _, err := service.Start(ctx, "learner-1", "single"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if ev := <-ch; ev.Type != domain.EventReady || ev.GameID != "single" || ev.InstanceID == "" {
		t.Fatalf("expected ready event, got %+v", ev)
	}

	if _, _, err := service.Submit(ctx, "learner-1", "single", domain.MultipleChoiceAnswer{SelectedOptionID: "A"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	want := []string{
		domain.EventAnswerSubmitted,
		domain.EventOMIEvidence,
		domain.EventMasteryChanged,
		domain.EventGameCompleted,
	}
	for _, typ := range want {
		ev := <-ch
		if ev.Type != typ {
			t.Fatalf("expected %s, got %s", typ, ev.Type)
		}
	}
}

func TestSubmitRequiresStartedGame(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	_, _, err := service.Submit(ctx, "learner-1", "single", domain.MultipleChoiceAnswer{SelectedOptionID: "A"})
	if !errors.Is(err, domain.ErrGameNotStarted) {
		t.Fatalf("expected not started error, got %v", err)
	}

	if _, err := service.Start(ctx, "learner-1", "unknown"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestMismatchedSubmissionRecordsNothing(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	if _, err := service.Start(ctx, "learner-1", "timed"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, ok, err := service.Submit(ctx, "learner-1", "timed", domain.OrderingAnswer{Order: []string{"A"}})
	if err != nil || ok {
		t.Fatalf("expected void result, got ok=%v err=%v", ok, err)
	}
	if doc := service.Progress(ctx, "learner-1"); len(doc.OMIProgress) != 0 || len(doc.SubmittedQuestions) != 0 {
		t.Fatalf("expected nothing recorded, got %+v", doc)
	}
}

func TestTimerExpiresWithoutSubmission(t *testing.T) {
	ctx := context.Background()
	service, learners, _ := newTestService()

	ch, cancel := service.Subscribe(ctx, "learner-1")
	defer cancel()
	if _, err := service.Start(ctx, "learner-1", "timed"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	learner := mustLearner(t, learners, "learner-1")
	learner.Store().TickTimer("timed")
	learner.Store().TickTimer("timed")

	<-ch // ready
	if ev := <-ch; ev.Type != domain.EventTimerTick {
		t.Fatalf("expected tick, got %s", ev.Type)
	}
	if ev := <-ch; ev.Type != domain.EventTimeExpired {
		t.Fatalf("expected expiry, got %s", ev.Type)
	}
}

func TestSubmitStopsTimer(t *testing.T) {
	ctx := context.Background()
	service, learners, _ := newTestService()

	if _, err := service.Start(ctx, "learner-1", "timed"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, ok, err := service.Submit(ctx, "learner-1", "timed", domain.MultipleChoiceAnswer{SelectedOptionID: "A"}); err != nil || !ok {
		t.Fatalf("submit failed: ok=%v err=%v", ok, err)
	}

	ch, cancel := service.Subscribe(ctx, "learner-1")
	defer cancel()
	learner := mustLearner(t, learners, "learner-1")
	learner.Store().TickTimer("timed")
	learner.Store().TickTimer("timed")

	select {
	case ev := <-ch:
		t.Fatalf("expected no events after submission, got %s", ev.Type)
	default:
	}
}

func TestEvaluateDoesNotRecordEvidence(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	if _, err := service.Start(ctx, "learner-1", "single"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, ok, _ := service.Evaluate(ctx, "learner-1", "single"); ok {
		t.Fatalf("expected no result before an answer is set")
	}
	if err := service.SetAnswer(ctx, "learner-1", "single", domain.MultipleChoiceAnswer{SelectedOptionID: "B"}); err != nil {
		t.Fatalf("set answer failed: %v", err)
	}
	result, ok, err := service.Evaluate(ctx, "learner-1", "single")
	if err != nil || !ok || result.Correct {
		t.Fatalf("unexpected evaluation %+v ok=%v err=%v", result, ok, err)
	}
	if got := service.Mastery(ctx, "learner-1", "omi-single"); got.TotalAttempts != 0 || got.MasteryLevel != domain.MasteryNotYet {
		t.Fatalf("expected untouched mastery, got %+v", got)
	}

	// Submit without a payload falls back to the stored answer.
	result, ok, err = service.Submit(ctx, "learner-1", "single", nil)
	if err != nil || !ok || result.Correct {
		t.Fatalf("unexpected submit %+v ok=%v err=%v", result, ok, err)
	}
}

func TestLeaveDiscardsSession(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	if _, err := service.Start(ctx, "learner-1", "single"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_ = service.SetAnswer(ctx, "learner-1", "single", domain.MultipleChoiceAnswer{SelectedOptionID: "A"})
	service.Leave(ctx, "learner-1", "single")

	if err := service.SetAnswer(ctx, "learner-1", "single", domain.MultipleChoiceAnswer{SelectedOptionID: "A"}); !errors.Is(err, domain.ErrGameNotStarted) {
		t.Fatalf("expected not started after leave, got %v", err)
	}
}

func TestResetProgress(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	_, _ = service.Start(ctx, "learner-1", "single")
	_, _, _ = service.Submit(ctx, "learner-1", "single", domain.MultipleChoiceAnswer{SelectedOptionID: "A"})
	service.ResetProgress(ctx, "learner-1")

	if got := service.Mastery(ctx, "learner-1", "omi-single"); got.MasteryLevel != domain.MasteryNotYet || got.TotalAttempts != 0 {
		t.Fatalf("expected reset mastery, got %+v", got)
	}
}

func mustLearner(t *testing.T, learners *memory.LearnerStore, learnerID string) *app.Learner {
	t.Helper()
	learner, ok := learners.Get(learnerID)
	if !ok {
		t.Fatalf("learner %s not found", learnerID)
	}
	return learner
}

func newTestService() (*app.GameService, *memory.LearnerStore, *memory.ProgressRepository) {
	repo := memory.NewProgressRepository()
	learners := memory.NewLearnerStore(repo, nil, progress.WithTickInterval(0))

	specs := memory.NewSpecRepository(memory.NewStaticSpecLoader(map[string]domain.GameSpec{
		"single": domain.MultipleChoiceSpec{
			GameInfo:        domain.GameInfo{ID: "single", OMIMapping: []string{"omi-single"}},
			Question:        "Select the right option",
			Options:         []domain.Option{{ID: "A", Text: "Right"}, {ID: "B", Text: "Wrong"}},
			CorrectOptionID: "A",
		},
		"timed": domain.MultipleChoiceSpec{
			GameInfo:        domain.GameInfo{ID: "timed", TimeLimitSeconds: 2},
			Question:        "Quick!",
			Options:         []domain.Option{{ID: "A"}, {ID: "B"}},
			CorrectOptionID: "A",
		},
		"mcq-set": domain.MultipleChoiceSetSpec{
			GameInfo: domain.GameInfo{ID: "mcq-set"},
			Questions: []domain.MultipleChoiceSpec{
				{GameInfo: domain.GameInfo{ID: "Q1", OMIMapping: []string{"a"}}, CorrectOptionID: "B"},
				{GameInfo: domain.GameInfo{ID: "Q2", OMIMapping: []string{"a", "b"}}, CorrectOptionID: "C"},
			},
		},
	}), 5*time.Minute)

	return app.NewGameService(learners, specs, scoring.NewEvaluator(), nil), learners, repo
}

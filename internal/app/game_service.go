package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"learning-games-service/internal/domain"
	"learning-games-service/internal/logger"
	"learning-games-service/internal/mastery"
	"learning-games-service/internal/progress"
	"learning-games-service/internal/scoring"
)

// LearnerRepository abstracts how live learners are tracked (in-memory, Redis, etc).
type LearnerRepository interface {
	GetOrCreate(ctx context.Context, learnerID string) *Learner
	Get(learnerID string) (*Learner, bool)
	DeleteIfIdle(learnerID string)
}

// SpecRepository loads validated game specs (from cache/backing store).
type SpecRepository interface {
	GetSpec(ctx context.Context, gameID string) (domain.GameSpec, error)
}

// GameInstance describes a started game.
type GameInstance struct {
	InstanceID       string          `json:"instanceId"`
	GameID           string          `json:"gameId"`
	Type             domain.GameType `json:"type"`
	TimeLimitSeconds int             `json:"timeLimitSeconds,omitempty"`
	QuestionIDs      []string        `json:"questionIds"`
}

// GameService contains the learning game use cases.
type GameService struct {
	learners  LearnerRepository
	specs     SpecRepository
	evaluator *scoring.Evaluator
	log       *logger.Logger
}

func NewGameService(learners LearnerRepository, specs SpecRepository, evaluator *scoring.Evaluator, log *logger.Logger) *GameService {
	if evaluator == nil {
		evaluator = scoring.NewEvaluator()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GameService{learners: learners, specs: specs, evaluator: evaluator, log: log}
}

// Start begins a new instance of gameID for the learner. Any previous instance of the same
// game is replaced, and its timer and in-progress answer are discarded.
func (s *GameService) Start(ctx context.Context, learnerID, gameID string) (GameInstance, error) {
	spec, err := s.specs.GetSpec(ctx, gameID)
	if err != nil {
		return GameInstance{}, err
	}

	learner := s.learners.GetOrCreate(ctx, learnerID)
	store := learner.store
	store.LeaveGame(gameID)

	instance := GameInstance{
		InstanceID:       uuid.New().String(),
		GameID:           gameID,
		Type:             spec.Kind(),
		TimeLimitSeconds: spec.Info().TimeLimitSeconds,
		QuestionIDs:      domain.QuestionIDs(spec),
	}
	learner.begin(gameID, instance.InstanceID)

	store.MarkQuestionAsked(ctx, gameID, instance.QuestionIDs...)

	if instance.TimeLimitSeconds > 0 {
		store.InitTimer(gameID, instance.TimeLimitSeconds,
			func(remaining int) {
				learner.publish(domain.EventTimerTick, gameID, map[string]int{"remaining": remaining})
			},
			func() {
				s.log.Info("game timed out", "learner", learnerID, "game", gameID)
				learner.publish(domain.EventTimeExpired, gameID, nil)
			},
		)
	}

	learner.publish(domain.EventReady, gameID, instance)
	return instance, nil
}

// SetAnswer stores the learner's in-progress answer for a started game.
func (s *GameService) SetAnswer(_ context.Context, learnerID, gameID string, answer domain.AnswerPayload) error {
	learner, err := s.active(learnerID, gameID)
	if err != nil {
		return err
	}
	learner.store.SetAnswer(gameID, answer)
	learner.store.ClearEvaluation(gameID)
	return nil
}

// Evaluate checks the stored answer without recording any evidence. ok is false when there is
// no answer yet or it does not apply to the game.
func (s *GameService) Evaluate(ctx context.Context, learnerID, gameID string) (domain.EvaluationResult, bool, error) {
	learner, err := s.active(learnerID, gameID)
	if err != nil {
		return domain.EvaluationResult{}, false, err
	}
	learner.publish(domain.EventEvaluateRequested, gameID, nil)

	answer, ok := learner.store.Answer(gameID)
	if !ok {
		return domain.EvaluationResult{}, false, nil
	}
	spec, err := s.specs.GetSpec(ctx, gameID)
	if err != nil {
		return domain.EvaluationResult{}, false, err
	}
	result, ok := s.evaluator.Evaluate(spec, answer)
	if ok {
		learner.store.SetEvaluation(gameID, result)
	}
	return result, ok, nil
}

// Submit scores answer (or the stored answer when nil), stops the game timer, and folds the
// resulting evidence into the learner's mastery records. ok is false when the answer does not
// apply to the game; nothing is recorded in that case and the timer keeps running.
func (s *GameService) Submit(ctx context.Context, learnerID, gameID string, answer domain.AnswerPayload) (domain.EvaluationResult, bool, error) {
	learner, err := s.active(learnerID, gameID)
	if err != nil {
		return domain.EvaluationResult{}, false, err
	}
	store := learner.store

	if answer == nil {
		answer, _ = store.Answer(gameID)
	}
	learner.publish(domain.EventAnswerSubmitted, gameID, nil)

	spec, err := s.specs.GetSpec(ctx, gameID)
	if err != nil {
		return domain.EvaluationResult{}, false, err
	}
	result, ok := s.evaluator.Evaluate(spec, answer)
	if !ok {
		s.log.Debug("answer not applicable", "learner", learnerID, "game", gameID)
		return domain.EvaluationResult{}, false, nil
	}

	store.StopTimer(gameID)
	store.SetAnswer(gameID, answer)
	store.SetEvaluation(gameID, result)

	transitions := store.RecordOMIEvidence(ctx, result.OMIEvidence...)
	for _, unit := range result.Details {
		store.MarkQuestionSubmitted(ctx, gameID, unit.ID, unit.Correct)
	}

	if len(result.OMIEvidence) > 0 {
		learner.publish(domain.EventOMIEvidence, gameID, result.OMIEvidence)
	}
	for _, tr := range transitions {
		s.log.Info("mastery changed", "learner", learnerID, "omi", tr.OMIID, "from", tr.From, "to", tr.To)
		learner.publish(domain.EventMasteryChanged, gameID, tr)
	}
	learner.publish(domain.EventGameCompleted, gameID, result)
	return result, true, nil
}

// Leave tears down a game instance and drops the learner if nothing else is using it.
func (s *GameService) Leave(_ context.Context, learnerID, gameID string) {
	learner, ok := s.learners.Get(learnerID)
	if !ok {
		return
	}
	learner.end(gameID)
	learner.store.LeaveGame(gameID)
	if learner.IsIdle() {
		s.learners.DeleteIfIdle(learnerID)
	}
}

// Subscribe returns a channel that receives the learner's game events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(ctx context.Context, learnerID string) (<-chan domain.GameEvent, func()) {
	learner := s.learners.GetOrCreate(ctx, learnerID)
	ch, cancel := learner.subscribe()
	return ch, func() {
		cancel()
		if learner.IsIdle() {
			s.learners.DeleteIfIdle(learnerID)
		}
	}
}

// Mastery returns the learner's record for omiID, or a fresh not-yet record.
func (s *GameService) Mastery(ctx context.Context, learnerID, omiID string) domain.OMIProgress {
	learner := s.learners.GetOrCreate(ctx, learnerID)
	defer s.releaseIfIdle(learnerID, learner)
	if p, ok := learner.store.OMIMastery(omiID); ok {
		return p
	}
	return mastery.New(omiID)
}

// Progress returns a copy of the learner's persisted progress.
func (s *GameService) Progress(ctx context.Context, learnerID string) domain.ProgressDocument {
	learner := s.learners.GetOrCreate(ctx, learnerID)
	defer s.releaseIfIdle(learnerID, learner)
	return learner.store.Snapshot()
}

func (s *GameService) ResetProgress(ctx context.Context, learnerID string) {
	learner := s.learners.GetOrCreate(ctx, learnerID)
	defer s.releaseIfIdle(learnerID, learner)
	learner.store.ResetProgress(ctx)
	s.log.Info("progress reset", "learner", learnerID)
}

func (s *GameService) active(learnerID, gameID string) (*Learner, error) {
	learner, ok := s.learners.Get(learnerID)
	if !ok || !learner.playing(gameID) {
		return nil, domain.ErrGameNotStarted
	}
	return learner, nil
}

func (s *GameService) releaseIfIdle(learnerID string, learner *Learner) {
	if learner.IsIdle() {
		s.learners.DeleteIfIdle(learnerID)
	}
}

// Learner is the in-memory presence of one learner: their progress store, the games they
// are playing and the subscribers to their event stream.
type Learner struct {
	id    string
	store *progress.Store
	now   func() time.Time

	mu          sync.RWMutex
	games       map[string]string
	subscribers map[chan domain.GameEvent]struct{}
}

// NewLearner is exported for infrastructure layers that need to seed learners.
func NewLearner(store *progress.Store) *Learner {
	return NewLearnerWithClock(store, time.Now)
}

// NewLearnerWithClock is test-only for deterministic event timestamps.
func NewLearnerWithClock(store *progress.Store, now func() time.Time) *Learner {
	return &Learner{
		id:          store.LearnerID(),
		store:       store,
		now:         now,
		games:       make(map[string]string),
		subscribers: make(map[chan domain.GameEvent]struct{}),
	}
}

func (l *Learner) ID() string { return l.id }

func (l *Learner) Store() *progress.Store { return l.store }

// IsIdle reports whether the learner has no running games and no subscribers.
func (l *Learner) IsIdle() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.games) == 0 && len(l.subscribers) == 0
}

// Close stops every timer the learner still has running.
func (l *Learner) Close() {
	l.store.Close()
}

func (l *Learner) begin(gameID, instanceID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.games[gameID] = instanceID
}

func (l *Learner) end(gameID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.games, gameID)
}

func (l *Learner) playing(gameID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.games[gameID]
	return ok
}

func (l *Learner) subscribe() (<-chan domain.GameEvent, func()) {
	ch := make(chan domain.GameEvent, 16)

	l.mu.Lock()
	l.subscribers[ch] = struct{}{}
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subscribers[ch]; ok {
			delete(l.subscribers, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

// publish never touches the progress store, so timer callbacks may call it.
func (l *Learner) publish(eventType, gameID string, payload any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := domain.GameEvent{
		Type:       eventType,
		GameID:     gameID,
		InstanceID: l.games[gameID],
		Payload:    payload,
		At:         l.now(),
	}
	for ch := range l.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop its oldest event rather than block the game.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

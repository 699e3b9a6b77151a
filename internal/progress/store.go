package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"learning-games-service/internal/domain"
	"learning-games-service/internal/logger"
	"learning-games-service/internal/mastery"
)

// Repository persists one serialized progress document per learner.
// Load returns domain.ErrProgressNotFound when nothing has been saved yet.
type Repository interface {
	Load(ctx context.Context, learnerID string) ([]byte, error)
	Save(ctx context.Context, learnerID string, data []byte) error
}

const defaultTickInterval = time.Second

type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTickInterval sets how often timers tick. Zero leaves timers to be driven by TickTimer.
func WithTickInterval(d time.Duration) Option {
	return func(s *Store) { s.tickInterval = d }
}

// Store is the state container for one learner. Answers, evaluations and timers live only in
// memory; mastery records and question history are written through to the Repository after
// every change.
type Store struct {
	learnerID    string
	repo         Repository
	log          *logger.Logger
	now          func() time.Time
	tickInterval time.Duration

	mu          sync.Mutex
	doc         domain.ProgressDocument
	version     uint64
	answers     map[string]domain.AnswerPayload
	evaluations map[string]domain.EvaluationResult
	timers      map[string]*Countdown

	// saveMu orders writes to repo without holding mu across network I/O.
	saveMu       sync.Mutex
	savedVersion uint64
}

// Open loads the learner's persisted progress. Missing or unreadable state falls back to the
// empty defaults, so Open never fails.
func Open(ctx context.Context, learnerID string, repo Repository, log *logger.Logger, opts ...Option) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		learnerID:    learnerID,
		repo:         repo,
		log:          log.With("learner", learnerID),
		now:          time.Now,
		tickInterval: defaultTickInterval,
		doc:          domain.NewProgressDocument(),
		answers:      make(map[string]domain.AnswerPayload),
		evaluations:  make(map[string]domain.EvaluationResult),
		timers:       make(map[string]*Countdown),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func (s *Store) LearnerID() string { return s.learnerID }

func (s *Store) load(ctx context.Context) {
	if s.repo == nil {
		return
	}
	raw, err := s.repo.Load(ctx, s.learnerID)
	if err != nil {
		if !errors.Is(err, domain.ErrProgressNotFound) {
			s.log.Warn("load progress failed, using defaults", "error", err)
		}
		return
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		s.log.Warn("persisted progress unreadable, using defaults", "error", err)
		return
	}
	s.doc = doc
}

// apply reduces ev into the document and writes it through. The document is encoded under mu
// and saved after mu is released; a save older than one already written is skipped. Save
// failures are logged and the in-memory state is kept.
func (s *Store) apply(ctx context.Context, ev Event) []mastery.Transition {
	s.mu.Lock()
	next, transitions := Reduce(s.doc, ev)
	s.doc = next
	s.version++
	version := s.version
	var raw []byte
	var err error
	if s.repo != nil {
		raw, err = EncodeDocument(next)
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("encode progress failed", "error", err)
		return transitions
	}
	s.persist(ctx, version, raw)
	return transitions
}

func (s *Store) persist(ctx context.Context, version uint64, raw []byte) {
	if s.repo == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if version <= s.savedVersion {
		return
	}
	s.savedVersion = version
	if err := s.repo.Save(ctx, s.learnerID, raw); err != nil {
		s.log.Error("save progress failed", "error", err)
	}
}

func (s *Store) SetAnswer(gameID string, answer domain.AnswerPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[gameID] = answer
}

func (s *Store) ClearAnswer(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.answers, gameID)
}

func (s *Store) Answer(gameID string) (domain.AnswerPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[gameID]
	return a, ok
}

func (s *Store) SetEvaluation(gameID string, result domain.EvaluationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluations[gameID] = result
}

func (s *Store) ClearEvaluation(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.evaluations, gameID)
}

func (s *Store) Evaluation(gameID string) (domain.EvaluationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.evaluations[gameID]
	return r, ok
}

// InitTimer replaces any timer for gameID with a fresh countdown of seconds. onTick and
// onExpire run under the countdown's lock and must not touch the timer again.
func (s *Store) InitTimer(gameID string, seconds int, onTick func(remaining int), onExpire func()) *Countdown {
	c := NewCountdown(seconds, onTick, onExpire)

	s.mu.Lock()
	if old, ok := s.timers[gameID]; ok {
		old.Stop()
	}
	s.timers[gameID] = c
	interval := s.tickInterval
	s.mu.Unlock()

	if interval > 0 {
		c.Start(interval)
	}
	return c
}

// TickTimer advances the timer for gameID by one second.
func (s *Store) TickTimer(gameID string) (remaining int, ok bool) {
	c := s.timer(gameID)
	if c == nil {
		return 0, false
	}
	remaining, _ = c.Tick()
	return remaining, true
}

// StopTimer halts the timer for gameID. Once it returns no timeout can fire for that game.
func (s *Store) StopTimer(gameID string) bool {
	c := s.timer(gameID)
	if c == nil {
		return false
	}
	c.Stop()
	return true
}

func (s *Store) TimeRemaining(gameID string) (int, bool) {
	c := s.timer(gameID)
	if c == nil {
		return 0, false
	}
	return c.Remaining(), true
}

func (s *Store) timer(gameID string) *Countdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[gameID]
}

// LeaveGame stops the game's timer and drops its answer and evaluation.
func (s *Store) LeaveGame(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.timers[gameID]; ok {
		c.Stop()
		delete(s.timers, gameID)
	}
	delete(s.answers, gameID)
	delete(s.evaluations, gameID)
}

// Close stops every running timer.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.timers {
		c.Stop()
		delete(s.timers, id)
	}
}

// RecordOMIEvidence folds evidence into the mastery records in order and persists the result.
func (s *Store) RecordOMIEvidence(ctx context.Context, evidence ...domain.OMIEvidence) []mastery.Transition {
	if len(evidence) == 0 {
		return nil
	}
	return s.apply(ctx, EvidenceRecorded{Evidence: evidence})
}

func (s *Store) OMIMastery(omiID string) (domain.OMIProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.doc.OMIProgress[omiID]
	if !ok {
		return domain.OMIProgress{}, false
	}
	return copyProgress(p), true
}

// MasteryLevel returns not-yet for indicators with no evidence.
func (s *Store) MasteryLevel(omiID string) domain.MasteryLevel {
	if p, ok := s.OMIMastery(omiID); ok {
		return p.MasteryLevel
	}
	return domain.MasteryNotYet
}

// MarkQuestionAsked records every question id as shown from specPath with a single save.
func (s *Store) MarkQuestionAsked(ctx context.Context, specPath string, questionIDs ...string) {
	if len(questionIDs) == 0 {
		return
	}
	s.apply(ctx, QuestionAsked{SpecPath: specPath, QuestionIDs: questionIDs, At: s.now()})
}

// AskedQuestions lists questions shown from specPath in the order first shown.
func (s *Store) AskedQuestions(specPath string) []domain.AskedQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.AskedQuestion{}
	for _, q := range s.doc.AskedQuestions {
		if q.SpecPath == specPath {
			out = append(out, q)
		}
	}
	return out
}

func (s *Store) MarkQuestionSubmitted(ctx context.Context, gameID, questionID string, correct bool) {
	s.apply(ctx, QuestionSubmitted{GameID: gameID, QuestionID: questionID, Correct: correct, At: s.now()})
}

func (s *Store) SubmittedQuestionsForGame(gameID string) []domain.SubmittedQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.SubmittedQuestion{}
	for _, q := range s.doc.SubmittedQuestions {
		if q.GameID == gameID {
			out = append(out, q)
		}
	}
	return out
}

// ResetProgress clears the persisted document. Session state is left alone.
func (s *Store) ResetProgress(ctx context.Context) {
	s.apply(ctx, ProgressReset{})
}

// Snapshot returns a deep copy of the persisted document.
func (s *Store) Snapshot() domain.ProgressDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := domain.ProgressDocument{
		Version:            s.doc.Version,
		OMIProgress:        make(map[string]domain.OMIProgress, len(s.doc.OMIProgress)),
		AskedQuestions:     append([]domain.AskedQuestion{}, s.doc.AskedQuestions...),
		SubmittedQuestions: append([]domain.SubmittedQuestion{}, s.doc.SubmittedQuestions...),
	}
	for id, p := range s.doc.OMIProgress {
		out.OMIProgress[id] = copyProgress(p)
	}
	return out
}

func copyProgress(p domain.OMIProgress) domain.OMIProgress {
	p.EvidenceHistory = append([]domain.OMIEvidence{}, p.EvidenceHistory...)
	return p
}

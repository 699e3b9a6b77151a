package domain

import "time"

// EvaluationResult summarizes the outcome of one submission.
type EvaluationResult struct {
	GameID      string        `json:"gameId"`
	Correct     bool          `json:"correct"`
	Score       float64       `json:"score"`
	Feedback    string        `json:"feedback,omitempty"`
	OMIEvidence []OMIEvidence `json:"omiEvidence"`
	Details     []UnitResult  `json:"details"`
}

// UnitResult is the outcome of a single scored unit: the game itself for atomic games, a
// sub-question, activity or showdown otherwise.
type UnitResult struct {
	ID       string  `json:"id"`
	Correct  bool    `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// OMIEvidence is how well one submission supported one indicator.
type OMIEvidence struct {
	OMIID        string    `json:"omiId"`
	Demonstrated bool      `json:"demonstrated"`
	Accuracy     float64   `json:"accuracy"`
	Timestamp    time.Time `json:"timestamp"`
}

// MasteryLevel is the four-tier lifetime classification of an indicator.
type MasteryLevel string

const (
	MasteryNotYet     MasteryLevel = "not-yet"
	MasteryEmerging   MasteryLevel = "emerging"
	MasteryProficient MasteryLevel = "proficient"
	MasteryMastered   MasteryLevel = "mastered"
)

// OMIProgress holds the running aggregates for one indicator.
type OMIProgress struct {
	OMIID              string        `json:"omiId"`
	MasteryLevel       MasteryLevel  `json:"masteryLevel"`
	TotalAttempts      int           `json:"totalAttempts"`
	SuccessfulAttempts int           `json:"successfulAttempts"`
	AverageAccuracy    float64       `json:"averageAccuracy"`
	LastAttempt        time.Time     `json:"lastAttempt"`
	EvidenceHistory    []OMIEvidence `json:"evidenceHistory"`
}

// AskedQuestion records that a question from a spec file was shown to the learner.
type AskedQuestion struct {
	SpecPath   string    `json:"specPath"`
	QuestionID string    `json:"questionId"`
	Timestamp  time.Time `json:"timestamp"`
}

// SubmittedQuestion is the latest submission outcome for a question within a game.
type SubmittedQuestion struct {
	GameID     string    `json:"gameId"`
	QuestionID string    `json:"questionId"`
	Correct    bool      `json:"correct"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProgressDocumentVersion is bumped whenever the persisted layout changes.
const ProgressDocumentVersion = 1

// ProgressDocument is the persisted part of a learner's state.
type ProgressDocument struct {
	Version            int                    `json:"version"`
	OMIProgress        map[string]OMIProgress `json:"omiProgress"`
	AskedQuestions     []AskedQuestion        `json:"askedQuestions"`
	SubmittedQuestions []SubmittedQuestion    `json:"submittedQuestions"`
}

// NewProgressDocument returns the empty defaults used for new learners and unreadable state.
func NewProgressDocument() ProgressDocument {
	return ProgressDocument{
		Version:            ProgressDocumentVersion,
		OMIProgress:        make(map[string]OMIProgress),
		AskedQuestions:     []AskedQuestion{},
		SubmittedQuestions: []SubmittedQuestion{},
	}
}

// Event types published to a learner's game stream.
const (
	EventReady             = "ready"
	EventAnswerSubmitted   = "answer.submitted"
	EventEvaluateRequested = "evaluate.requested"
	EventTimeExpired       = "time.expired"
	EventTimerTick         = "timer.tick"
	EventOMIEvidence       = "omi.evidence"
	EventMasteryChanged    = "mastery.changed"
	EventGameCompleted     = "game.completed"
)

// GameEvent is one message on a learner's game stream.
type GameEvent struct {
	Type       string    `json:"type"`
	GameID     string    `json:"gameId"`
	InstanceID string    `json:"instanceId,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	At         time.Time `json:"at"`
}

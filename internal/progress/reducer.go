package progress

import (
	"encoding/json"
	"fmt"
	"time"

	"learning-games-service/internal/domain"
	"learning-games-service/internal/mastery"
)

// Event is a change to the persisted progress document.
type Event interface {
	progressEvent()
}

// EvidenceRecorded folds OMI evidence into the mastery records.
type EvidenceRecorded struct {
	Evidence []domain.OMIEvidence
}

// QuestionAsked notes that questions from a spec file were shown, upserting each
// (SpecPath, question id) pair.
type QuestionAsked struct {
	SpecPath    string
	QuestionIDs []string
	At          time.Time
}

// QuestionSubmitted upserts the latest outcome for (GameID, QuestionID).
type QuestionSubmitted struct {
	GameID     string
	QuestionID string
	Correct    bool
	At         time.Time
}

// ProgressReset clears everything persisted for the learner.
type ProgressReset struct{}

func (EvidenceRecorded) progressEvent()  {}
func (QuestionAsked) progressEvent()     {}
func (QuestionSubmitted) progressEvent() {}
func (ProgressReset) progressEvent()     {}

// Reduce returns the document that results from applying ev to doc. doc is not modified.
func Reduce(doc domain.ProgressDocument, ev Event) (domain.ProgressDocument, []mastery.Transition) {
	switch e := ev.(type) {
	case EvidenceRecorded:
		next := doc
		var transitions []mastery.Transition
		next.OMIProgress, transitions = mastery.Reduce(doc.OMIProgress, e.Evidence...)
		return next, transitions

	case QuestionAsked:
		next := doc
		next.AskedQuestions = append([]domain.AskedQuestion{}, doc.AskedQuestions...)
		for _, questionID := range e.QuestionIDs {
			asked := domain.AskedQuestion{SpecPath: e.SpecPath, QuestionID: questionID, Timestamp: e.At}
			replaced := false
			for i, q := range next.AskedQuestions {
				if q.SpecPath == e.SpecPath && q.QuestionID == questionID {
					next.AskedQuestions[i] = asked
					replaced = true
					break
				}
			}
			if !replaced {
				next.AskedQuestions = append(next.AskedQuestions, asked)
			}
		}
		return next, nil

	case QuestionSubmitted:
		next := doc
		submitted := domain.SubmittedQuestion{GameID: e.GameID, QuestionID: e.QuestionID, Correct: e.Correct, Timestamp: e.At}
		next.SubmittedQuestions = make([]domain.SubmittedQuestion, 0, len(doc.SubmittedQuestions)+1)
		replaced := false
		for _, q := range doc.SubmittedQuestions {
			if q.GameID == e.GameID && q.QuestionID == e.QuestionID {
				q = submitted
				replaced = true
			}
			next.SubmittedQuestions = append(next.SubmittedQuestions, q)
		}
		if !replaced {
			next.SubmittedQuestions = append(next.SubmittedQuestions, submitted)
		}
		return next, nil

	case ProgressReset:
		return domain.NewProgressDocument(), nil
	}
	return doc, nil
}

// DecodeDocument parses a persisted document, filling in defaults for absent collections.
func DecodeDocument(raw []byte) (domain.ProgressDocument, error) {
	doc := domain.NewProgressDocument()
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.NewProgressDocument(), fmt.Errorf("decode progress: %w", err)
	}
	if doc.OMIProgress == nil {
		doc.OMIProgress = make(map[string]domain.OMIProgress)
	}
	if doc.AskedQuestions == nil {
		doc.AskedQuestions = []domain.AskedQuestion{}
	}
	if doc.SubmittedQuestions == nil {
		doc.SubmittedQuestions = []domain.SubmittedQuestion{}
	}
	if doc.Version == 0 {
		doc.Version = domain.ProgressDocumentVersion
	}
	return doc, nil
}

func EncodeDocument(doc domain.ProgressDocument) ([]byte, error) {
	return json.Marshal(doc)
}

package scoring

import (
	"fmt"
	"time"

	"learning-games-service/internal/domain"
)

const (
	successFeedback   = "Correct!"
	orderingFeedback  = "Some items are out of order."
	pairMatchFeedback = "Some pairs are not matched correctly."
)

// Evaluator scores answers against game specs. It holds no state besides its clock, which only
// stamps OMI evidence.
type Evaluator struct {
	now func() time.Time
}

func NewEvaluator() *Evaluator {
	return NewEvaluatorWithClock(time.Now)
}

// NewEvaluatorWithClock allows deterministic evidence timestamps in tests.
func NewEvaluatorWithClock(now func() time.Time) *Evaluator {
	return &Evaluator{now: now}
}

// Evaluate scores answer against spec. ok is false when the answer does not apply to the spec
// (nil or of another game type); that is a "nothing to evaluate" signal, not a failure.
func (e *Evaluator) Evaluate(spec domain.GameSpec, answer domain.AnswerPayload) (domain.EvaluationResult, bool) {
	if spec == nil || answer == nil || answer.Kind() != spec.Kind() {
		return domain.EvaluationResult{}, false
	}
	gameID := spec.Info().ID

	switch s := spec.(type) {
	case domain.MultipleChoiceSpec, domain.OrderingSpec, domain.PairMatchSpec, domain.FillBlankSpec:
		u, score, feedback, ok := scoreAtomic(s, answer)
		if !ok {
			return domain.EvaluationResult{}, false
		}
		return e.result(gameID, u.Result.Correct, score, feedback, []Unit{u}), true

	case domain.MultipleChoiceSetSpec:
		a, ok := answer.(domain.MultipleChoiceSetAnswer)
		if !ok {
			return domain.EvaluationResult{}, false
		}
		units := make([]Unit, 0, len(s.Questions))
		for _, q := range s.Questions {
			selected, answered := a.Answers[q.ID]
			if !answered {
				units = append(units, missing(q.GameInfo))
				continue
			}
			units = append(units, multipleChoice(q, selected))
		}
		return e.aggregate(gameID, units), true

	case domain.OrderingSetSpec:
		a, ok := answer.(domain.OrderingSetAnswer)
		if !ok {
			return domain.EvaluationResult{}, false
		}
		units := make([]Unit, 0, len(s.Questions))
		for _, q := range s.Questions {
			order, answered := a.Answers[q.ID]
			if !answered {
				units = append(units, missing(q.GameInfo))
				continue
			}
			units = append(units, ordering(q, order))
		}
		return e.aggregate(gameID, units), true

	case domain.PairMatchSetSpec:
		a, ok := answer.(domain.PairMatchSetAnswer)
		if !ok {
			return domain.EvaluationResult{}, false
		}
		units := make([]Unit, 0, len(s.Questions))
		for _, q := range s.Questions {
			matches, answered := a.Answers[q.ID]
			if !answered {
				units = append(units, missing(q.GameInfo))
				continue
			}
			units = append(units, pairMatch(q, matches))
		}
		return e.aggregate(gameID, units), true

	case domain.FillBlankSetSpec:
		a, ok := answer.(domain.FillBlankSetAnswer)
		if !ok {
			return domain.EvaluationResult{}, false
		}
		units := make([]Unit, 0, len(s.Questions))
		for _, q := range s.Questions {
			blanks, answered := a.Answers[q.ID]
			if !answered {
				units = append(units, missing(q.GameInfo))
				continue
			}
			u, _ := fillBlank(q, blanks)
			units = append(units, u)
		}
		return e.aggregate(gameID, units), true

	case domain.ClassificationSetSpec:
		a, ok := answer.(domain.ClassificationSetAnswer)
		if !ok {
			return domain.EvaluationResult{}, false
		}
		units := make([]Unit, 0, len(s.Questions))
		for _, q := range s.Questions {
			assigned, answered := a.Answers[q.ID]
			if !answered {
				units = append(units, missing(q.GameInfo))
				continue
			}
			units = append(units, classification(q, assigned))
		}
		return e.aggregate(gameID, units), true

	case domain.ActivitySetSpec:
		a, ok := answer.(domain.ActivitySetAnswer)
		if !ok {
			return domain.EvaluationResult{}, false
		}
		units := make([]Unit, 0, len(s.Activities))
		for _, activity := range s.Activities {
			info := activity.Info()
			sub, answered := a.Answers[info.ID]
			if !answered || sub == nil || sub.Kind() != activity.Kind() {
				units = append(units, missing(info))
				continue
			}
			u, _, _, ok := scoreAtomic(activity, sub)
			if !ok {
				u = missing(info)
			}
			units = append(units, u)
		}
		return e.aggregate(gameID, units), true

	case domain.ShowdownSetSpec:
		a, ok := answer.(domain.ShowdownSetAnswer)
		if !ok {
			return domain.EvaluationResult{}, false
		}
		units := make([]Unit, 0, len(s.Showdowns))
		for _, sd := range s.Showdowns {
			choice, answered := a.Answers[sd.ID]
			if !answered {
				units = append(units, missing(sd.GameInfo))
				continue
			}
			units = append(units, showdown(sd, choice))
		}
		return e.aggregate(gameID, units), true
	}
	return domain.EvaluationResult{}, false
}

// scoreAtomic applies the rule of a single-question game. score is the learner-visible score,
// which is binary for every atomic type except fill-blank.
func scoreAtomic(spec domain.GameSpec, answer domain.AnswerPayload) (u Unit, score float64, feedback string, ok bool) {
	switch s := spec.(type) {
	case domain.MultipleChoiceSpec:
		a, ok := answer.(domain.MultipleChoiceAnswer)
		if !ok {
			return Unit{}, 0, "", false
		}
		u = multipleChoice(s, a.SelectedOptionID)
		if u.Result.Correct {
			return u, 1, successFeedback, true
		}
		return u, 0, s.Explanation, true

	case domain.OrderingSpec:
		a, ok := answer.(domain.OrderingAnswer)
		if !ok {
			return Unit{}, 0, "", false
		}
		u = ordering(s, a.Order)
		if u.Result.Correct {
			return u, 1, successFeedback, true
		}
		return u, 0, orderingFeedback, true

	case domain.PairMatchSpec:
		a, ok := answer.(domain.PairMatchAnswer)
		if !ok {
			return Unit{}, 0, "", false
		}
		u = pairMatch(s, a.Matches)
		if u.Result.Correct {
			return u, 1, successFeedback, true
		}
		return u, 0, pairMatchFeedback, true

	case domain.FillBlankSpec:
		a, ok := answer.(domain.FillBlankAnswer)
		if !ok {
			return Unit{}, 0, "", false
		}
		u, filled := fillBlank(s, a.Blanks)
		if u.Result.Correct {
			return u, u.Result.Accuracy, successFeedback, true
		}
		return u, u.Result.Accuracy, fmt.Sprintf("%d of %d blanks correct.", filled, len(s.Sentences)), true
	}
	return Unit{}, 0, "", false
}

// aggregate folds sub-unit outcomes: the set is correct only when every unit is, and its score
// is the fraction of correct units. An empty set scores 0.
func (e *Evaluator) aggregate(gameID string, units []Unit) domain.EvaluationResult {
	correct := 0
	for _, u := range units {
		if u.Result.Correct {
			correct++
		}
	}
	allCorrect := len(units) > 0 && correct == len(units)

	feedback := successFeedback
	if !allCorrect {
		feedback = fmt.Sprintf("%d of %d correct.", correct, len(units))
	}
	return e.result(gameID, allCorrect, ratio(correct, len(units)), feedback, units)
}

func (e *Evaluator) result(gameID string, correct bool, score float64, feedback string, units []Unit) domain.EvaluationResult {
	details := make([]domain.UnitResult, 0, len(units))
	for _, u := range units {
		details = append(details, u.Result)
	}
	return domain.EvaluationResult{
		GameID:      gameID,
		Correct:     correct,
		Score:       score,
		Feedback:    feedback,
		OMIEvidence: AggregateEvidence(units, e.now()),
		Details:     details,
	}
}

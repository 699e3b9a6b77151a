package mastery

import "learning-games-service/internal/domain"

// HistoryCapacity is the number of evidence records retained per indicator.
const HistoryCapacity = 10

// Tier thresholds, checked from the highest tier down.
const (
	masteredRate     = 0.9
	masteredAccuracy = 0.9
	masteredAttempts = 3

	proficientRate     = 0.7
	proficientAccuracy = 0.7
	proficientAttempts = 2

	emergingRate     = 0.4
	emergingAttempts = 1
)

// Transition records a mastery level change caused by one evidence record.
type Transition struct {
	OMIID string              `json:"omiId"`
	From  domain.MasteryLevel `json:"from"`
	To    domain.MasteryLevel `json:"to"`
}

// New returns the record for an indicator that has no evidence yet.
func New(omiID string) domain.OMIProgress {
	return domain.OMIProgress{
		OMIID:           omiID,
		MasteryLevel:    domain.MasteryNotYet,
		EvidenceHistory: []domain.OMIEvidence{},
	}
}

// Apply folds one evidence record into p and reclassifies it from the lifetime aggregates.
// The average accuracy covers every record ever applied, not only the retained history.
func Apply(p domain.OMIProgress, ev domain.OMIEvidence) domain.OMIProgress {
	next := p
	next.OMIID = ev.OMIID
	next.TotalAttempts = p.TotalAttempts + 1
	next.SuccessfulAttempts = p.SuccessfulAttempts
	if ev.Demonstrated {
		next.SuccessfulAttempts++
	}
	next.AverageAccuracy = (p.AverageAccuracy*float64(p.TotalAttempts) + ev.Accuracy) / float64(next.TotalAttempts)
	next.LastAttempt = ev.Timestamp
	next.EvidenceHistory = appendHistory(p.EvidenceHistory, ev)
	next.MasteryLevel = Classify(next.TotalAttempts, next.SuccessfulAttempts, next.AverageAccuracy)
	return next
}

// Classify maps lifetime aggregates to a mastery level. The first matching tier wins.
func Classify(totalAttempts, successfulAttempts int, averageAccuracy float64) domain.MasteryLevel {
	successRate := 0.0
	if totalAttempts > 0 {
		successRate = float64(successfulAttempts) / float64(totalAttempts)
	}

	switch {
	case successRate >= masteredRate && averageAccuracy >= masteredAccuracy && totalAttempts >= masteredAttempts:
		return domain.MasteryMastered
	case successRate >= proficientRate && averageAccuracy >= proficientAccuracy && totalAttempts >= proficientAttempts:
		return domain.MasteryProficient
	case successRate >= emergingRate || totalAttempts >= emergingAttempts:
		return domain.MasteryEmerging
	default:
		return domain.MasteryNotYet
	}
}

// Reduce applies evidence in order to a copy of state, creating records on first evidence.
// It reports every level change along the way.
func Reduce(state map[string]domain.OMIProgress, evidence ...domain.OMIEvidence) (map[string]domain.OMIProgress, []Transition) {
	next := make(map[string]domain.OMIProgress, len(state)+len(evidence))
	for id, p := range state {
		next[id] = p
	}

	var transitions []Transition
	for _, ev := range evidence {
		if ev.OMIID == "" {
			continue
		}
		prev, ok := next[ev.OMIID]
		if !ok {
			prev = New(ev.OMIID)
		}
		updated := Apply(prev, ev)
		if updated.MasteryLevel != prev.MasteryLevel {
			transitions = append(transitions, Transition{
				OMIID: ev.OMIID,
				From:  prev.MasteryLevel,
				To:    updated.MasteryLevel,
			})
		}
		next[ev.OMIID] = updated
	}
	return next, transitions
}

// appendHistory returns a new slice so records shared with a previous state are never mutated.
func appendHistory(history []domain.OMIEvidence, ev domain.OMIEvidence) []domain.OMIEvidence {
	start := 0
	if len(history)+1 > HistoryCapacity {
		start = len(history) + 1 - HistoryCapacity
	}
	out := make([]domain.OMIEvidence, 0, HistoryCapacity)
	out = append(out, history[start:]...)
	return append(out, ev)
}

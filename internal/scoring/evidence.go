package scoring

import (
	"time"

	"learning-games-service/internal/domain"
)

// Unit is a scored unit together with the indicators it feeds.
type Unit struct {
	Result     domain.UnitResult
	OMIMapping []string
}

// AggregateEvidence emits one record per indicator touched by units, in order of first
// appearance. An indicator is demonstrated only if every unit touching it in this submission
// is correct; its accuracy is the mean accuracy of those units.
func AggregateEvidence(units []Unit, at time.Time) []domain.OMIEvidence {
	type tally struct {
		touched  int
		correct  int
		accuracy float64
	}
	var order []string
	tallies := make(map[string]*tally)

	for _, u := range units {
		seen := make(map[string]struct{}, len(u.OMIMapping))
		for _, omiID := range u.OMIMapping {
			if omiID == "" {
				continue
			}
			if _, dup := seen[omiID]; dup {
				continue
			}
			seen[omiID] = struct{}{}

			t, ok := tallies[omiID]
			if !ok {
				t = &tally{}
				tallies[omiID] = t
				order = append(order, omiID)
			}
			t.touched++
			t.accuracy += u.Result.Accuracy
			if u.Result.Correct {
				t.correct++
			}
		}
	}

	evidence := make([]domain.OMIEvidence, 0, len(order))
	for _, omiID := range order {
		t := tallies[omiID]
		evidence = append(evidence, domain.OMIEvidence{
			OMIID:        omiID,
			Demonstrated: t.correct == t.touched,
			Accuracy:     t.accuracy / float64(t.touched),
			Timestamp:    at,
		})
	}
	return evidence
}

package scoring

import (
	"strings"

	"learning-games-service/internal/domain"
)

func multipleChoice(q domain.MultipleChoiceSpec, selected string) Unit {
	correct := selected != "" && selected == q.CorrectOptionID
	return newUnit(q.GameInfo, correct, binary(correct))
}

// ordering is all-or-nothing; Accuracy carries the positional partial credit.
func ordering(q domain.OrderingSpec, order []string) Unit {
	canonical := make([]string, len(q.Items))
	for i, item := range q.Items {
		canonical[i] = item.ID
	}

	correct := len(order) == len(canonical)
	inPlace := 0
	for i, id := range canonical {
		if i < len(order) && order[i] == id {
			inPlace++
		} else {
			correct = false
		}
	}
	return newUnit(q.GameInfo, correct, partial(inPlace, len(canonical), correct))
}

func pairMatch(q domain.PairMatchSpec, matches []domain.Pair) Unit {
	canonical := pairMap(q.Pairs)
	submitted := pairMap(matches)

	matched := 0
	for left, right := range canonical {
		if got, ok := submitted[left]; ok && got == right {
			matched++
		}
	}
	correct := len(canonical) == len(submitted) && matched == len(canonical)
	return newUnit(q.GameInfo, correct, partial(matched, len(canonical), correct))
}

// fillBlank scores genuine partial credit; the unit is correct only when every blank is.
func fillBlank(q domain.FillBlankSpec, blanks map[string]string) (Unit, int) {
	filled := 0
	for _, s := range q.Sentences {
		if got, ok := blanks[s.ID]; ok && blankMatches(got, s.Answer) {
			filled++
		}
	}
	score := ratio(filled, len(q.Sentences))
	return newUnit(q.GameInfo, score == 1, score), filled
}

func classification(q domain.ClassificationQuestion, assigned map[string]string) Unit {
	correct := true
	for _, item := range q.Items {
		if got, ok := assigned[item.ID]; !ok || got != item.CategoryID {
			correct = false
			break
		}
	}
	return newUnit(q.GameInfo, correct, binary(correct))
}

// showdown requires the right option and exactly the reasons flagged correct.
func showdown(sd domain.Showdown, choice domain.ShowdownChoice) Unit {
	want := make(map[string]struct{})
	for _, r := range sd.Reasons {
		if r.Correct {
			want[r.ID] = struct{}{}
		}
	}
	got := make(map[string]struct{}, len(choice.ReasonIDs))
	for _, id := range choice.ReasonIDs {
		got[id] = struct{}{}
	}
	correct := choice.OptionID != "" && choice.OptionID == sd.CorrectOptionID && setEqual(want, got)
	return newUnit(sd.GameInfo, correct, binary(correct))
}

// missing is the outcome of a sub-question the learner did not answer.
func missing(info domain.GameInfo) Unit {
	return newUnit(info, false, 0)
}

func newUnit(info domain.GameInfo, correct bool, accuracy float64) Unit {
	return Unit{
		Result: domain.UnitResult{
			ID:       info.ID,
			Correct:  correct,
			Accuracy: accuracy,
		},
		OMIMapping: info.OMIMapping,
	}
}

func pairMap(pairs []domain.Pair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Left] = p.Right
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func blankMatches(got, want string) bool {
	return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
}

func binary(correct bool) float64 {
	if correct {
		return 1
	}
	return 0
}

// partial is n/d, falling back to the binary outcome for units with nothing to count.
func partial(n, d int, correct bool) float64 {
	if d == 0 {
		return binary(correct)
	}
	return ratio(n, d)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

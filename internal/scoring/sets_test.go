package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-games-service/internal/domain"
)

type setCase struct {
	name         string
	answer       domain.AnswerPayload
	score        float64
	correct      bool
	unitsCorrect []bool
	demonstrated bool
	accuracy     float64
}

func runSetCases(t *testing.T, spec domain.GameSpec, cases []setCase) {
	t.Helper()
	e := newTestEvaluator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, ok := e.Evaluate(spec, tc.answer)
			require.True(t, ok)
			assert.InDelta(t, tc.score, res.Score, 1e-9)
			assert.Equal(t, tc.correct, res.Correct)

			require.Len(t, res.Details, len(tc.unitsCorrect))
			for i, want := range tc.unitsCorrect {
				assert.Equal(t, want, res.Details[i].Correct, "unit %s", res.Details[i].ID)
			}

			require.Len(t, res.OMIEvidence, 1)
			ev := res.OMIEvidence[0]
			assert.Equal(t, "x", ev.OMIID)
			assert.Equal(t, tc.demonstrated, ev.Demonstrated)
			assert.InDelta(t, tc.accuracy, ev.Accuracy, 1e-9)
			assert.Equal(t, fixedNow, ev.Timestamp)
		})
	}
}

func TestFillBlankSetAccuracyFeedsEvidence(t *testing.T) {
	spec := domain.FillBlankSetSpec{
		GameInfo: domain.GameInfo{ID: "fb-set"},
		Questions: []domain.FillBlankSpec{
			{
				GameInfo: domain.GameInfo{ID: "q1", OMIMapping: []string{"x"}},
				Sentences: []domain.Sentence{
					{ID: "s1", Text: "The capital of France is ___.", Answer: "Paris"},
					{ID: "s2", Text: "The capital of Italy is ___.", Answer: "Rome"},
				},
			},
			{
				GameInfo:  domain.GameInfo{ID: "q2", OMIMapping: []string{"x"}},
				Sentences: []domain.Sentence{{ID: "s1", Text: "The capital of Germany is ___.", Answer: "Berlin"}},
			},
		},
	}

	runSetCases(t, spec, []setCase{
		{
			name: "full",
			answer: domain.FillBlankSetAnswer{Answers: map[string]map[string]string{
				"q1": {"s1": " paris ", "s2": "Rome"},
				"q2": {"s1": "berlin"},
			}},
			score: 1, correct: true, unitsCorrect: []bool{true, true},
			demonstrated: true, accuracy: 1,
		},
		{
			name: "partial blanks",
			answer: domain.FillBlankSetAnswer{Answers: map[string]map[string]string{
				"q1": {"s1": "Paris", "s2": "Madrid"},
				"q2": {"s1": "Berlin"},
			}},
			score: 0.5, correct: false, unitsCorrect: []bool{false, true},
			demonstrated: false, accuracy: 0.75,
		},
		{
			name: "missing question",
			answer: domain.FillBlankSetAnswer{Answers: map[string]map[string]string{
				"q1": {"s1": "Paris", "s2": "Rome"},
			}},
			score: 0.5, correct: false, unitsCorrect: []bool{true, false},
			demonstrated: false, accuracy: 0.5,
		},
	})
}

func TestOrderingSetPositionalAccuracy(t *testing.T) {
	spec := domain.OrderingSetSpec{
		GameInfo: domain.GameInfo{ID: "ord-set"},
		Questions: []domain.OrderingSpec{
			{
				GameInfo: domain.GameInfo{ID: "q1", OMIMapping: []string{"x"}},
				Items:    []domain.Item{{ID: "1"}, {ID: "2"}, {ID: "3"}},
			},
			{
				GameInfo: domain.GameInfo{ID: "q2", OMIMapping: []string{"x"}},
				Items:    []domain.Item{{ID: "a"}, {ID: "b"}},
			},
		},
	}

	runSetCases(t, spec, []setCase{
		{
			name: "full",
			answer: domain.OrderingSetAnswer{Answers: map[string][]string{
				"q1": {"1", "2", "3"},
				"q2": {"a", "b"},
			}},
			score: 1, correct: true, unitsCorrect: []bool{true, true},
			demonstrated: true, accuracy: 1,
		},
		{
			name: "out of order with extra item",
			answer: domain.OrderingSetAnswer{Answers: map[string][]string{
				"q1": {"1", "3", "2", "4"},
				"q2": {"a", "b"},
			}},
			score: 0.5, correct: false, unitsCorrect: []bool{false, true},
			demonstrated: false, accuracy: (1.0/3 + 1) / 2,
		},
		{
			name: "missing question",
			answer: domain.OrderingSetAnswer{Answers: map[string][]string{
				"q1": {"1", "2", "3"},
			}},
			score: 0.5, correct: false, unitsCorrect: []bool{true, false},
			demonstrated: false, accuracy: 0.5,
		},
	})
}

func TestPairMatchSetExtraPairIsIncorrect(t *testing.T) {
	spec := domain.PairMatchSetSpec{
		GameInfo: domain.GameInfo{ID: "pm-set"},
		Questions: []domain.PairMatchSpec{
			{
				GameInfo: domain.GameInfo{ID: "q1", OMIMapping: []string{"x"}},
				Pairs:    []domain.Pair{{Left: "a", Right: "1"}, {Left: "b", Right: "2"}},
			},
			{
				GameInfo: domain.GameInfo{ID: "q2", OMIMapping: []string{"x"}},
				Pairs:    []domain.Pair{{Left: "c", Right: "3"}},
			},
		},
	}

	runSetCases(t, spec, []setCase{
		{
			name: "full",
			answer: domain.PairMatchSetAnswer{Answers: map[string][]domain.Pair{
				"q1": {{Left: "b", Right: "2"}, {Left: "a", Right: "1"}},
				"q2": {{Left: "c", Right: "3"}},
			}},
			score: 1, correct: true, unitsCorrect: []bool{true, true},
			demonstrated: true, accuracy: 1,
		},
		{
			name: "extra pair keeps accuracy",
			answer: domain.PairMatchSetAnswer{Answers: map[string][]domain.Pair{
				"q1": {{Left: "a", Right: "1"}, {Left: "b", Right: "2"}, {Left: "z", Right: "9"}},
				"q2": {{Left: "c", Right: "3"}},
			}},
			score: 0.5, correct: false, unitsCorrect: []bool{false, true},
			demonstrated: false, accuracy: 1,
		},
		{
			name: "partial matches",
			answer: domain.PairMatchSetAnswer{Answers: map[string][]domain.Pair{
				"q1": {{Left: "a", Right: "2"}, {Left: "b", Right: "2"}},
				"q2": {{Left: "c", Right: "3"}},
			}},
			score: 0.5, correct: false, unitsCorrect: []bool{false, true},
			demonstrated: false, accuracy: 0.75,
		},
		{
			name: "missing question",
			answer: domain.PairMatchSetAnswer{Answers: map[string][]domain.Pair{
				"q2": {{Left: "c", Right: "3"}},
			}},
			score: 0.5, correct: false, unitsCorrect: []bool{false, true},
			demonstrated: false, accuracy: 0.5,
		},
	})
}

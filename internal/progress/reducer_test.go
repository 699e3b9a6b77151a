package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-games-service/internal/domain"
)

func TestReduceDoesNotMutateInput(t *testing.T) {
	doc := domain.NewProgressDocument()
	doc, _ = Reduce(doc, QuestionSubmitted{GameID: "g", QuestionID: "q", Correct: false, At: testNow})

	next, _ := Reduce(doc, QuestionSubmitted{GameID: "g", QuestionID: "q", Correct: true, At: testNow})
	assert.False(t, doc.SubmittedQuestions[0].Correct)
	assert.True(t, next.SubmittedQuestions[0].Correct)

	withEvidence, tr := Reduce(doc, EvidenceRecorded{Evidence: []domain.OMIEvidence{perfect("x")}})
	assert.Empty(t, doc.OMIProgress)
	assert.Contains(t, withEvidence.OMIProgress, "x")
	assert.Len(t, tr, 1)
}

func TestReduceReset(t *testing.T) {
	doc, _ := Reduce(domain.NewProgressDocument(), QuestionAsked{SpecPath: "p", QuestionIDs: []string{"q"}, At: testNow})
	reset, _ := Reduce(doc, ProgressReset{})
	assert.Equal(t, domain.NewProgressDocument(), reset)
}

func TestDecodeDocumentFillsDefaults(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"omiProgress":{"x":{"omiId":"x","masteryLevel":"emerging","totalAttempts":1}}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressDocumentVersion, doc.Version)
	assert.NotNil(t, doc.AskedQuestions)
	assert.NotNil(t, doc.SubmittedQuestions)
	assert.Equal(t, domain.MasteryEmerging, doc.OMIProgress["x"].MasteryLevel)

	_, err = DecodeDocument([]byte(`[]`))
	assert.Error(t, err)
}

func TestEncodeDecodeKeepsHistory(t *testing.T) {
	doc, _ := Reduce(domain.NewProgressDocument(), EvidenceRecorded{Evidence: []domain.OMIEvidence{perfect("x"), perfect("x")}})
	raw, err := EncodeDocument(doc)
	require.NoError(t, err)

	decoded, err := DecodeDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, doc.OMIProgress["x"].TotalAttempts, decoded.OMIProgress["x"].TotalAttempts)
	assert.Len(t, decoded.OMIProgress["x"].EvidenceHistory, 2)
}

func TestReduceQuestionAskedUpsertsBatch(t *testing.T) {
	doc, _ := Reduce(domain.NewProgressDocument(), QuestionAsked{SpecPath: "p", QuestionIDs: []string{"q1", "q2"}, At: testNow})

	later := testNow.Add(time.Minute)
	next, _ := Reduce(doc, QuestionAsked{SpecPath: "p", QuestionIDs: []string{"q2", "q3", "q3"}, At: later})
	require.Len(t, next.AskedQuestions, 3)
	assert.Equal(t, []string{"q1", "q2", "q3"}, []string{
		next.AskedQuestions[0].QuestionID, next.AskedQuestions[1].QuestionID, next.AskedQuestions[2].QuestionID,
	})
	assert.Equal(t, testNow, next.AskedQuestions[0].Timestamp)
	assert.Equal(t, later, next.AskedQuestions[1].Timestamp)
	assert.Equal(t, testNow, doc.AskedQuestions[1].Timestamp)
}

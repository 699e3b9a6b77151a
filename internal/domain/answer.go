package domain

// AnswerPayload is a learner submission. Its Kind must match the spec it answers.
type AnswerPayload interface {
	Kind() GameType
}

type MultipleChoiceAnswer struct {
	SelectedOptionID string `json:"selectedOptionId"`
}

// OrderingAnswer lists item ids in the submitted order.
type OrderingAnswer struct {
	Order []string `json:"order"`
}

type PairMatchAnswer struct {
	Matches []Pair `json:"matches"`
}

// FillBlankAnswer maps sentence id to the text typed or picked for its blank.
type FillBlankAnswer struct {
	Blanks map[string]string `json:"blanks"`
}

// MultipleChoiceSetAnswer maps question id to the selected option id.
type MultipleChoiceSetAnswer struct {
	Answers map[string]string `json:"answers"`
}

type OrderingSetAnswer struct {
	Answers map[string][]string `json:"answers"`
}

type PairMatchSetAnswer struct {
	Answers map[string][]Pair `json:"answers"`
}

// FillBlankSetAnswer maps question id to sentence id to blank text.
type FillBlankSetAnswer struct {
	Answers map[string]map[string]string `json:"answers"`
}

// ClassificationSetAnswer maps question id to item id to the assigned category id.
type ClassificationSetAnswer struct {
	Answers map[string]map[string]string `json:"answers"`
}

// ActivitySetAnswer maps activity id to a payload tagged with that activity's own type.
type ActivitySetAnswer struct {
	Answers map[string]AnswerPayload `json:"-"`
}

// ShowdownChoice is the option picked for a showdown and the reasons backing it.
type ShowdownChoice struct {
	OptionID  string   `json:"optionId"`
	ReasonIDs []string `json:"reasonIds"`
}

type ShowdownSetAnswer struct {
	Answers map[string]ShowdownChoice `json:"answers"`
}

func (MultipleChoiceAnswer) Kind() GameType    { return TypeMultipleChoice }
func (OrderingAnswer) Kind() GameType          { return TypeOrdering }
func (PairMatchAnswer) Kind() GameType         { return TypePairMatch }
func (FillBlankAnswer) Kind() GameType         { return TypeFillBlank }
func (MultipleChoiceSetAnswer) Kind() GameType { return TypeMultipleChoiceSet }
func (OrderingSetAnswer) Kind() GameType       { return TypeOrderingSet }
func (PairMatchSetAnswer) Kind() GameType      { return TypePairMatchSet }
func (FillBlankSetAnswer) Kind() GameType      { return TypeFillBlankSet }
func (ClassificationSetAnswer) Kind() GameType { return TypeClassificationSet }
func (ActivitySetAnswer) Kind() GameType       { return TypeActivitySet }
func (ShowdownSetAnswer) Kind() GameType       { return TypeShowdownSet }

package domain

// GameType is the discriminator shared by game specs and answer payloads.
type GameType string

const (
	TypeMultipleChoice    GameType = "mcq"
	TypeOrdering          GameType = "ordering"
	TypePairMatch         GameType = "pair-match"
	TypeFillBlank         GameType = "fill-blank"
	TypeMultipleChoiceSet GameType = "mcq-set"
	TypeOrderingSet       GameType = "ordering-set"
	TypePairMatchSet      GameType = "pair-match-set"
	TypeFillBlankSet      GameType = "fill-blank-set"
	TypeClassificationSet GameType = "classification-set"
	TypeActivitySet       GameType = "activity-set"
	TypeShowdownSet       GameType = "showdown-set"
)

// IsAtomic reports whether t is a single-question game that may appear inside an activity set.
func (t GameType) IsAtomic() bool {
	switch t {
	case TypeMultipleChoice, TypeOrdering, TypePairMatch, TypeFillBlank:
		return true
	}
	return false
}

// GameSpec is a validated, read-only game description.
type GameSpec interface {
	Kind() GameType
	Info() GameInfo
}

// GameInfo carries the fields common to every game and sub-question.
type GameInfo struct {
	ID               string   `json:"id"`
	Title            string   `json:"title,omitempty"`
	Instructions     string   `json:"instructions,omitempty"`
	TimeLimitSeconds int      `json:"timeLimitSeconds,omitempty"`
	OMIMapping       []string `json:"omiMapping,omitempty"`
}

func (g GameInfo) Info() GameInfo { return g }

// Option is a selectable choice.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MultipleChoiceSpec is a single-answer multiple choice question.
type MultipleChoiceSpec struct {
	GameInfo
	Question        string   `json:"question"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctOptionId"`
	Explanation     string   `json:"explanation,omitempty"`
}

// Item is an orderable element.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// OrderingSpec lists Items in their canonical order.
type OrderingSpec struct {
	GameInfo
	Prompt string `json:"prompt,omitempty"`
	Items  []Item `json:"items"`
}

// Pair links a left value to a right value.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// PairMatchSpec holds the truth pairs.
type PairMatchSpec struct {
	GameInfo
	Prompt string `json:"prompt,omitempty"`
	Pairs  []Pair `json:"pairs"`
}

// Sentence holds one blank and its expected answer.
type Sentence struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Answer  string   `json:"answer"`
	Options []string `json:"options,omitempty"`
}

// FillBlankSpec is a list of sentences with one blank each.
type FillBlankSpec struct {
	GameInfo
	Sentences []Sentence `json:"sentences"`
}

type MultipleChoiceSetSpec struct {
	GameInfo
	Questions []MultipleChoiceSpec `json:"questions"`
}

type OrderingSetSpec struct {
	GameInfo
	Questions []OrderingSpec `json:"questions"`
}

type PairMatchSetSpec struct {
	GameInfo
	Questions []PairMatchSpec `json:"questions"`
}

type FillBlankSetSpec struct {
	GameInfo
	Questions []FillBlankSpec `json:"questions"`
}

// Category is a classification bucket.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ClassifiedItem is an item with its designated category.
type ClassifiedItem struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	CategoryID string `json:"categoryId"`
}

// ClassificationQuestion asks the learner to sort Items into Categories.
type ClassificationQuestion struct {
	GameInfo
	Prompt     string           `json:"prompt,omitempty"`
	Categories []Category       `json:"categories"`
	Items      []ClassifiedItem `json:"items"`
}

type ClassificationSetSpec struct {
	GameInfo
	Questions []ClassificationQuestion `json:"questions"`
}

// ActivitySetSpec mixes atomic games of different types. Each activity keeps its own type tag.
type ActivitySetSpec struct {
	GameInfo
	Activities []GameSpec `json:"-"`
}

// Reason is a justification offered for a showdown choice.
type Reason struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Showdown is a comparative-reasoning question: pick an option and justify it.
type Showdown struct {
	GameInfo
	Prompt          string   `json:"prompt,omitempty"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctOptionId"`
	Reasons         []Reason `json:"reasons"`
}

type ShowdownSetSpec struct {
	GameInfo
	Showdowns []Showdown `json:"showdowns"`
}

func (MultipleChoiceSpec) Kind() GameType    { return TypeMultipleChoice }
func (OrderingSpec) Kind() GameType          { return TypeOrdering }
func (PairMatchSpec) Kind() GameType         { return TypePairMatch }
func (FillBlankSpec) Kind() GameType         { return TypeFillBlank }
func (MultipleChoiceSetSpec) Kind() GameType { return TypeMultipleChoiceSet }
func (OrderingSetSpec) Kind() GameType       { return TypeOrderingSet }
func (PairMatchSetSpec) Kind() GameType      { return TypePairMatchSet }
func (FillBlankSetSpec) Kind() GameType      { return TypeFillBlankSet }
func (ClassificationSetSpec) Kind() GameType { return TypeClassificationSet }
func (ActivitySetSpec) Kind() GameType       { return TypeActivitySet }
func (ShowdownSetSpec) Kind() GameType       { return TypeShowdownSet }

// QuestionIDs lists the ids of the units a learner is asked in spec: sub-question ids for
// sets, the game id for atomic games.
func QuestionIDs(spec GameSpec) []string {
	var ids []string
	switch s := spec.(type) {
	case MultipleChoiceSetSpec:
		for _, q := range s.Questions {
			ids = append(ids, q.ID)
		}
	case OrderingSetSpec:
		for _, q := range s.Questions {
			ids = append(ids, q.ID)
		}
	case PairMatchSetSpec:
		for _, q := range s.Questions {
			ids = append(ids, q.ID)
		}
	case FillBlankSetSpec:
		for _, q := range s.Questions {
			ids = append(ids, q.ID)
		}
	case ClassificationSetSpec:
		for _, q := range s.Questions {
			ids = append(ids, q.ID)
		}
	case ActivitySetSpec:
		for _, a := range s.Activities {
			ids = append(ids, a.Info().ID)
		}
	case ShowdownSetSpec:
		for _, sd := range s.Showdowns {
			ids = append(ids, sd.ID)
		}
	default:
		ids = append(ids, spec.Info().ID)
	}
	return ids
}

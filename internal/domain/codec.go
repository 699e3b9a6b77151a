package domain

import (
	"encoding/json"
	"fmt"
)

type envelope struct {
	Type GameType `json:"type"`
}

// DecodeGameSpec decodes a type-tagged spec document into its concrete GameSpec.
func DecodeGameSpec(raw []byte) (GameSpec, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode game spec: %w", err)
	}
	switch env.Type {
	case TypeMultipleChoice:
		return decodeAs[MultipleChoiceSpec](raw)
	case TypeOrdering:
		return decodeAs[OrderingSpec](raw)
	case TypePairMatch:
		return decodeAs[PairMatchSpec](raw)
	case TypeFillBlank:
		return decodeAs[FillBlankSpec](raw)
	case TypeMultipleChoiceSet:
		return decodeAs[MultipleChoiceSetSpec](raw)
	case TypeOrderingSet:
		return decodeAs[OrderingSetSpec](raw)
	case TypePairMatchSet:
		return decodeAs[PairMatchSetSpec](raw)
	case TypeFillBlankSet:
		return decodeAs[FillBlankSetSpec](raw)
	case TypeClassificationSet:
		return decodeAs[ClassificationSetSpec](raw)
	case TypeShowdownSet:
		return decodeAs[ShowdownSetSpec](raw)
	case TypeActivitySet:
		return decodeActivitySet(raw)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, env.Type)
}

// EncodeGameSpec is the inverse of DecodeGameSpec.
func EncodeGameSpec(spec GameSpec) ([]byte, error) {
	if set, ok := spec.(ActivitySetSpec); ok {
		activities := make([]json.RawMessage, 0, len(set.Activities))
		for _, a := range set.Activities {
			b, err := EncodeGameSpec(a)
			if err != nil {
				return nil, err
			}
			activities = append(activities, b)
		}
		return withType(set.Kind(), struct {
			GameInfo
			Activities []json.RawMessage `json:"activities"`
		}{set.GameInfo, activities})
	}
	return withType(spec.Kind(), spec)
}

// DecodeAnswer decodes a type-tagged answer payload.
func DecodeAnswer(raw []byte) (AnswerPayload, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	switch env.Type {
	case TypeMultipleChoice:
		return decodeAs[MultipleChoiceAnswer](raw)
	case TypeOrdering:
		return decodeAs[OrderingAnswer](raw)
	case TypePairMatch:
		return decodeAs[PairMatchAnswer](raw)
	case TypeFillBlank:
		return decodeAs[FillBlankAnswer](raw)
	case TypeMultipleChoiceSet:
		return decodeAs[MultipleChoiceSetAnswer](raw)
	case TypeOrderingSet:
		return decodeAs[OrderingSetAnswer](raw)
	case TypePairMatchSet:
		return decodeAs[PairMatchSetAnswer](raw)
	case TypeFillBlankSet:
		return decodeAs[FillBlankSetAnswer](raw)
	case TypeClassificationSet:
		return decodeAs[ClassificationSetAnswer](raw)
	case TypeShowdownSet:
		return decodeAs[ShowdownSetAnswer](raw)
	case TypeActivitySet:
		return decodeActivityAnswer(raw)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, env.Type)
}

// EncodeAnswer is the inverse of DecodeAnswer.
func EncodeAnswer(answer AnswerPayload) ([]byte, error) {
	if set, ok := answer.(ActivitySetAnswer); ok {
		answers := make(map[string]json.RawMessage, len(set.Answers))
		for id, a := range set.Answers {
			b, err := EncodeAnswer(a)
			if err != nil {
				return nil, err
			}
			answers[id] = b
		}
		return withType(set.Kind(), struct {
			Answers map[string]json.RawMessage `json:"answers"`
		}{answers})
	}
	return withType(answer.Kind(), answer)
}

func decodeAs[T any](raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %T: %w", v, err)
	}
	return v, nil
}

func decodeActivitySet(raw []byte) (GameSpec, error) {
	var doc struct {
		GameInfo
		Activities []json.RawMessage `json:"activities"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode activity set: %w", err)
	}
	set := ActivitySetSpec{GameInfo: doc.GameInfo}
	for i, a := range doc.Activities {
		var env envelope
		if err := json.Unmarshal(a, &env); err != nil {
			return nil, fmt.Errorf("decode activity %d: %w", i, err)
		}
		if !env.Type.IsAtomic() {
			return nil, fmt.Errorf("%w: activity %d has type %q", ErrUnsupportedActivity, i, env.Type)
		}
		spec, err := DecodeGameSpec(a)
		if err != nil {
			return nil, fmt.Errorf("decode activity %d: %w", i, err)
		}
		set.Activities = append(set.Activities, spec)
	}
	return set, nil
}

func decodeActivityAnswer(raw []byte) (AnswerPayload, error) {
	var doc struct {
		Answers map[string]json.RawMessage `json:"answers"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode activity answer: %w", err)
	}
	set := ActivitySetAnswer{Answers: make(map[string]AnswerPayload, len(doc.Answers))}
	for id, a := range doc.Answers {
		answer, err := DecodeAnswer(a)
		if err != nil {
			return nil, fmt.Errorf("decode activity answer %q: %w", id, err)
		}
		set.Answers[id] = answer
	}
	return set, nil
}

func withType(t GameType, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	fields["type"] = tag
	return json.Marshal(fields)
}

package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"learning-games-service/internal/domain"
)

//go:embed game_spec.schema.json
var gameSpecSchema []byte

const gameSpecURL = "schema://game-spec.json"

// Validator checks raw game spec documents against the embedded JSON schema.
type Validator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns an error wrapping domain.ErrInvalidSpec when raw does not conform.
func (v *Validator) Validate(raw []byte) error {
	compiled, err := v.schema()
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrInvalidSpec, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSpec, err)
	}
	return nil
}

func (v *Validator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(gameSpecSchema))
		if err != nil {
			v.err = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(gameSpecURL, def); err != nil {
			v.err = fmt.Errorf("add resource: %w", err)
			return
		}
		v.compiled, v.err = c.Compile(gameSpecURL)
	})
	return v.compiled, v.err
}

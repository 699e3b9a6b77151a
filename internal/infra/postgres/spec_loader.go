package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"learning-games-service/internal/domain"
)

// Validator checks a raw spec document before it is decoded.
type Validator interface {
	Validate(raw []byte) error
}

// SpecLoader loads game spec JSONB from Postgres.
type SpecLoader struct {
	pool      *pgxpool.Pool
	validator Validator
}

// NewSpecLoader returns a loader over pool. validator may be nil to skip validation.
func NewSpecLoader(pool *pgxpool.Pool, validator Validator) *SpecLoader {
	return &SpecLoader{pool: pool, validator: validator}
}

func (l *SpecLoader) LoadSpec(ctx context.Context, gameID string) (domain.GameSpec, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM game_specs WHERE id=$1`, gameID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load spec: %w", err)
	}
	if l.validator != nil {
		if err := l.validator.Validate(raw); err != nil {
			return nil, err
		}
	}
	spec, err := domain.DecodeGameSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("decode spec %s: %w", gameID, err)
	}
	return spec, nil
}

// SaveSpec upserts an encoded spec. It is used to seed specs from files.
func (l *SpecLoader) SaveSpec(ctx context.Context, spec domain.GameSpec) error {
	raw, err := domain.EncodeGameSpec(spec)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO game_specs (id, type, data) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, data = EXCLUDED.data`,
		spec.Info().ID, string(spec.Kind()), raw)
	if err != nil {
		return fmt.Errorf("save spec: %w", err)
	}
	return nil
}

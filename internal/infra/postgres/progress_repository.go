package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"learning-games-service/internal/domain"
)

type learnerProgress struct {
	bun.BaseModel `bun:"table:learner_progress"`

	LearnerID string          `bun:"learner_id,pk"`
	Data      json.RawMessage `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}

// ProgressRepository persists progress documents in the learner_progress table.
type ProgressRepository struct {
	db  *bun.DB
	now func() time.Time
}

func NewProgressRepository(db *bun.DB) *ProgressRepository {
	return &ProgressRepository{db: db, now: time.Now}
}

func (r *ProgressRepository) Load(ctx context.Context, learnerID string) ([]byte, error) {
	row := new(learnerProgress)
	err := r.db.NewSelect().Model(row).Where("learner_id = ?", learnerID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Data, nil
}

func (r *ProgressRepository) Save(ctx context.Context, learnerID string, data []byte) error {
	row := &learnerProgress{LearnerID: learnerID, Data: json.RawMessage(data), UpdatedAt: r.now()}
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (learner_id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

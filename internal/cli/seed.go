package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"learning-games-service/internal/config"
	"learning-games-service/internal/domain"
	pgstore "learning-games-service/internal/infra/postgres"
	"learning-games-service/internal/infra/schema"
)

// NewSeedCmd loads every *.json spec in a directory into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate spec files and upsert them into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "specs", "directory of spec JSON files")
	return cmd
}

func runSeed(ctx context.Context, configPath, dir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	specs, err := readSpecDir(dir, schema.NewValidator())
	if err != nil {
		return err
	}
	loader := pgstore.NewSpecLoader(pool, nil)
	for _, spec := range specs {
		if err := loader.SaveSpec(ctx, spec); err != nil {
			return err
		}
		log.Info("seeded spec", "id", spec.Info().ID, "type", spec.Kind())
	}
	return nil
}

func readSpecDir(dir string, validator *schema.Validator) ([]domain.GameSpec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var specs []domain.GameSpec
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if err := validator.Validate(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		spec, err := domain.DecodeGameSpec(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

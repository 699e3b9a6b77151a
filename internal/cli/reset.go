package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"learning-games-service/internal/config"
	"learning-games-service/internal/domain"
	"learning-games-service/internal/progress"
)

// NewResetCmd clears a learner's persisted progress in the configured backend.
func NewResetCmd(configPath *string) *cobra.Command {
	var learnerID string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear a learner's persisted progress (run with the server stopped)",
		Long: `Clear a learner's persisted progress in the configured backend.

The last write wins: a running server that has the learner loaded will write its in-memory
progress back on the learner's next change and undo this reset. Stop the server first, or
reset a live learner through POST /progress/reset?learnerId=<id> instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd.Context(), *configPath, learnerID)
		},
	}
	cmd.Flags().StringVar(&learnerID, "learner", "", "learner id")
	_ = cmd.MarkFlagRequired("learner")
	return cmd
}

func runReset(ctx context.Context, configPath, learnerID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	// Probe first so a backend outage is reported instead of silently logged.
	if _, err := b.progress.Load(ctx, learnerID); err != nil && !errors.Is(err, domain.ErrProgressNotFound) {
		return fmt.Errorf("load progress: %w", err)
	}
	store := progress.Open(ctx, learnerID, b.progress, log, progress.WithTickInterval(0))
	store.ResetProgress(ctx)
	log.Info("progress reset", "learner", learnerID)
	return nil
}

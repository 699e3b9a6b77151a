package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"learning-games-service/internal/domain"
	"learning-games-service/internal/infra/schema"
	"learning-games-service/internal/scoring"
)

// NewEvaluateCmd scores one answer file against one spec file and prints the result.
func NewEvaluateCmd() *cobra.Command {
	var specPath, answerPath string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate an answer against a game spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.OutOrStdout(), specPath, answerPath)
		},
	}
	cmd.Flags().StringVar(&specPath, "spec", "", "path to the game spec JSON")
	cmd.Flags().StringVar(&answerPath, "answer", "", "path to the answer JSON")
	_ = cmd.MarkFlagRequired("spec")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}

func runEvaluate(out io.Writer, specPath, answerPath string) error {
	rawSpec, err := os.ReadFile(specPath)
	if err != nil {
		return err
	}
	if err := schema.NewValidator().Validate(rawSpec); err != nil {
		return err
	}
	spec, err := domain.DecodeGameSpec(rawSpec)
	if err != nil {
		return err
	}

	rawAnswer, err := os.ReadFile(answerPath)
	if err != nil {
		return err
	}
	answer, err := domain.DecodeAnswer(rawAnswer)
	if err != nil {
		return err
	}

	result, ok := scoring.NewEvaluator().Evaluate(spec, answer)
	if !ok {
		return fmt.Errorf("answer of type %q does not apply to %q game", answer.Kind(), spec.Kind())
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

var (
	quoteFile    string
	quoteAnswers string
	quoteMode    string
	quoteRunID   string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Underwrite a single quote submission",
	Long:  "Reads a quote submission from a JSON file, runs the underwriting pipeline, persists the run record, and prints it. Use --answers with --run-id to resume a run that is waiting for missing information.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "quote")
		if err != nil {
			return err
		}
		defer env.Close()

		answers, err := parseAnswers(quoteAnswers)
		if err != nil {
			return err
		}

		// Resume path: re-run a persisted submission with new answers.
		if quoteRunID != "" {
			if len(answers) == 0 {
				return eris.New("--answers is required with --run-id")
			}
			return resumeRun(cmd, env, quoteRunID, answers)
		}

		if quoteFile == "" {
			return eris.New("--file is required")
		}

		raw, err := os.ReadFile(quoteFile)
		if err != nil {
			return eris.Wrap(err, "read submission file")
		}
		var sub model.QuoteSubmission
		if err := json.Unmarshal(raw, &sub); err != nil {
			return eris.Wrap(err, "decode submission")
		}

		engine, err := env.Engine(quoteMode)
		if err != nil {
			return err
		}

		runID := uuid.NewString()
		state, runErr := engine.Run(ctx, sub, answers)
		rec := model.NewRunRecord(runID, state, runErr)

		if err := env.Store.SaveRun(ctx, rec); err != nil {
			return eris.Wrap(err, "save run")
		}
		if runErr != nil {
			zap.L().Error("underwriting failed", zap.String("run_id", runID), zap.Error(runErr))
			return eris.Wrap(runErr, "underwriting run")
		}

		zap.L().Info("underwriting complete",
			zap.String("run_id", runID),
			zap.String("decision", string(state.Decision.Decision)),
			zap.String("status", string(rec.Status)),
		)

		return printJSON(rec)
	},
}

func resumeRun(cmd *cobra.Command, env *underwriterEnv, runID string, answers map[string]any) error {
	ctx := cmd.Context()

	rec, err := env.Store.GetRun(ctx, runID)
	if err != nil {
		return eris.Wrap(err, "load run")
	}
	if rec.Status != model.RunStatusWaitingForInfo {
		return eris.Errorf("run %s is %s, not waiting for info", runID, rec.Status)
	}

	state, runErr := env.Interactive.Run(ctx, rec.WorkflowState.QuoteSubmission, answers)
	rec.Resume(state, runErr)

	if err := env.Store.SaveRun(ctx, rec); err != nil {
		return eris.Wrap(err, "save resumed run")
	}
	if runErr != nil {
		return eris.Wrap(runErr, "underwriting resume")
	}

	zap.L().Info("run resumed",
		zap.String("run_id", runID),
		zap.String("decision", string(state.Decision.Decision)),
		zap.String("status", string(rec.Status)),
	)

	return printJSON(rec)
}

// parseAnswers accepts inline JSON or an @file reference.
func parseAnswers(arg string) (map[string]any, error) {
	if arg == "" {
		return nil, nil
	}

	raw := []byte(arg)
	if arg[0] == '@' {
		var err error
		raw, err = os.ReadFile(arg[1:])
		if err != nil {
			return nil, eris.Wrap(err, "read answers file")
		}
	}

	var answers map[string]any
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, eris.Wrap(err, "decode answers")
	}
	return answers, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	quoteCmd.Flags().StringVar(&quoteFile, "file", "", "path to a submission JSON file")
	quoteCmd.Flags().StringVar(&quoteAnswers, "answers", "", `missing-info answers as inline JSON or @file, e.g. '{"construction_year": 1995}'`)
	quoteCmd.Flags().StringVar(&quoteMode, "mode", "", "workflow mode: basic or interactive (default from config)")
	quoteCmd.Flags().StringVar(&quoteRunID, "run-id", "", "resume the run with this id instead of starting a new one")
	rootCmd.AddCommand(quoteCmd)
}

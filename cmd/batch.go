package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/laknarayana9/AgenticUnderwriting/internal/intake"
	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
	"github.com/laknarayana9/AgenticUnderwriting/internal/store"
	"github.com/laknarayana9/AgenticUnderwriting/internal/workflow"
)

var (
	batchFile  string
	batchLimit int
	batchMode  string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Underwrite submissions from a batch file",
	Long:  "Reads submissions from a JSON, JSONL, or XLSX file and underwrites them concurrently. Each submission gets its own persisted run record; individual failures do not abort the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		engine, err := env.Engine(batchMode)
		if err != nil {
			return err
		}

		subs, err := intake.ReadFile(batchFile)
		if err != nil {
			return err
		}

		return processBatch(ctx, subs, batchLimit, cfg.Batch.MaxConcurrent, engine, env.Store)
	},
}

// processBatch applies limit, then underwrites submissions concurrently.
func processBatch(ctx context.Context, subs []model.QuoteSubmission, limit, concurrency int, engine *workflow.Engine, st store.Store) error {
	if len(subs) == 0 {
		zap.L().Info("no submissions found")
		return nil
	}

	if limit > 0 && len(subs) > limit {
		subs = subs[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("submissions", len(subs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var completed, waiting, failed atomic.Int64

	for _, sub := range subs {
		g.Go(func() error {
			log := zap.L().With(zap.String("applicant", sub.ApplicantName))

			runID := uuid.NewString()
			state, runErr := engine.Run(gctx, sub, nil)
			rec := model.NewRunRecord(runID, state, runErr)

			if err := st.SaveRun(gctx, rec); err != nil {
				failed.Add(1)
				log.Error("save run failed", zap.String("run_id", runID), zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			switch rec.Status {
			case model.RunStatusFailed:
				failed.Add(1)
				log.Error("underwriting failed", zap.String("run_id", runID), zap.Error(runErr))
			case model.RunStatusWaitingForInfo:
				waiting.Add(1)
				log.Info("underwriting needs info", zap.String("run_id", runID))
			default:
				completed.Add(1)
				log.Info("underwriting complete",
					zap.String("run_id", runID),
					zap.String("decision", string(state.Decision.Decision)),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("completed", completed.Load()),
		zap.Int64("waiting_for_info", waiting.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to a JSON, JSONL, or XLSX submissions file (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of submissions to process (0 = all)")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "workflow mode: basic or interactive (default from config)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

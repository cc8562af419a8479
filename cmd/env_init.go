package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/laknarayana9/AgenticUnderwriting/internal/retrieval"
	"github.com/laknarayana9/AgenticUnderwriting/internal/store"
	"github.com/laknarayana9/AgenticUnderwriting/internal/tools"
	"github.com/laknarayana9/AgenticUnderwriting/internal/workflow"
)

// underwriterEnv holds the initialized store, guideline index, and workflow
// engines needed by the quote/batch/serve commands.
type underwriterEnv struct {
	Store       store.Store
	Guidelines  *retrieval.Engine
	Basic       *workflow.Engine
	Interactive *workflow.Engine
}

// Close releases resources held by the environment.
func (e *underwriterEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// Engine returns the workflow engine for the given mode, falling back to the
// configured default when mode is empty.
func (e *underwriterEnv) Engine(mode string) (*workflow.Engine, error) {
	if mode == "" {
		mode = cfg.Workflow.Mode
	}
	switch workflow.Mode(mode) {
	case workflow.ModeBasic:
		return e.Basic, nil
	case workflow.ModeInteractive:
		return e.Interactive, nil
	default:
		return nil, eris.Errorf("unknown workflow mode: %s", mode)
	}
}

// initEnv sets up the store, loads and indexes the guideline corpus, and
// builds both workflow engine variants. Callers should defer env.Close().
func initEnv(ctx context.Context, cmdMode string) (*underwriterEnv, error) {
	if err := cfg.Validate(cmdMode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	guidelines, err := initGuidelines()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	normalize := tools.NewAddressNormalizer()
	hazard := tools.NewHazardScorer()
	rater := tools.NewRatingTool()

	topK := workflow.WithTopK(cfg.Retrieval.TopK)
	return &underwriterEnv{
		Store:       st,
		Guidelines:  guidelines,
		Basic:       workflow.New(workflow.ModeBasic, normalize, hazard, guidelines, rater, topK),
		Interactive: workflow.New(workflow.ModeInteractive, normalize, hazard, guidelines, rater, topK),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "underwriting.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initGuidelines builds the retrieval index from the configured data
// directory, or from the embedded corpus when none is set.
func initGuidelines() (*retrieval.Engine, error) {
	var (
		docs []retrieval.Document
		err  error
	)
	if cfg.Retrieval.DataDir != "" {
		docs, err = retrieval.LoadDir(cfg.Retrieval.DataDir)
	} else {
		docs, err = retrieval.DefaultDocuments()
	}
	if err != nil {
		return nil, eris.Wrap(err, "load guideline documents")
	}

	engine := retrieval.NewEngine(retrieval.WithChunking(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap))
	chunks, err := engine.Ingest(docs)
	if err != nil {
		return nil, eris.Wrap(err, "index guideline documents")
	}

	zap.L().Info("guideline corpus indexed",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", chunks),
	)
	return engine, nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// Pool abstracts pgxpool.Pool so the Postgres store can be unit tested
// with pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS run_records (
	run_id         TEXT PRIMARY KEY,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	status         TEXT NOT NULL,
	workflow_state JSONB NOT NULL,
	stage_outputs  JSONB,
	error_message  TEXT
);

CREATE INDEX IF NOT EXISTS idx_run_records_status ON run_records(status);
CREATE INDEX IF NOT EXISTS idx_run_records_created_at ON run_records(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, rec *model.RunRecord) error {
	stateJSON, err := json.Marshal(rec.WorkflowState)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal workflow state")
	}
	outputsJSON, err := json.Marshal(rec.StageOutputs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stage outputs")
	}

	rec.UpdatedAt = time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO run_records (run_id, created_at, updated_at, status, workflow_state, stage_outputs, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (run_id) DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			status = EXCLUDED.status,
			workflow_state = EXCLUDED.workflow_state,
			stage_outputs = EXCLUDED.stage_outputs,
			error_message = EXCLUDED.error_message`,
		rec.RunID, rec.CreatedAt, rec.UpdatedAt, string(rec.Status), stateJSON, outputsJSON, nullable(rec.ErrorMessage),
	)
	return eris.Wrapf(err, "postgres: save run %s", rec.RunID)
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.RunRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT run_id, created_at, updated_at, status, workflow_state, stage_outputs, error_message
		 FROM run_records WHERE run_id = $1`,
		runID,
	)
	rec, err := scanPostgresRecord(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return rec, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.RunRecord, error) {
	query := `SELECT run_id, created_at, updated_at, status, workflow_state, stage_outputs, error_message
		 FROM run_records WHERE 1=1`
	var args []any
	arg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if filter.Status != "" {
		query += ` AND status = $` + strconv.Itoa(arg(string(filter.Status)))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT $` + strconv.Itoa(arg(limit))
	if filter.Offset > 0 {
		query += ` OFFSET $` + strconv.Itoa(arg(filter.Offset))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var records []model.RunRecord
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list runs scan")
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPostgresRecord(row pgx.Row) (*model.RunRecord, error) {
	var rec model.RunRecord
	var status string
	var stateJSON []byte
	var outputsJSON []byte
	var errMsg *string

	err := row.Scan(&rec.RunID, &rec.CreatedAt, &rec.UpdatedAt, &status, &stateJSON, &outputsJSON, &errMsg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("run record not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan run record")
	}

	rec.Status = model.RunStatus(status)
	if err := json.Unmarshal(stateJSON, &rec.WorkflowState); err != nil {
		return nil, eris.Wrap(err, "unmarshal workflow state")
	}
	if len(outputsJSON) > 0 && string(outputsJSON) != "null" {
		if err := json.Unmarshal(outputsJSON, &rec.StageOutputs); err != nil {
			return nil, eris.Wrap(err, "unmarshal stage outputs")
		}
	}
	if errMsg != nil {
		rec.ErrorMessage = *errMsg
	}
	return &rec, nil
}


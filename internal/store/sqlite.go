package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode so concurrent runs can append records without blocking readers.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS run_records (
	run_id         TEXT PRIMARY KEY,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL,
	status         TEXT NOT NULL,
	workflow_state TEXT NOT NULL,
	stage_outputs  TEXT,
	error_message  TEXT
);

CREATE INDEX IF NOT EXISTS idx_run_records_status ON run_records(status);
CREATE INDEX IF NOT EXISTS idx_run_records_created_at ON run_records(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, rec *model.RunRecord) error {
	stateJSON, err := json.Marshal(rec.WorkflowState)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal workflow state")
	}
	outputsJSON, err := json.Marshal(rec.StageOutputs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stage outputs")
	}

	rec.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_records (run_id, created_at, updated_at, status, workflow_state, stage_outputs, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			updated_at = excluded.updated_at,
			status = excluded.status,
			workflow_state = excluded.workflow_state,
			stage_outputs = excluded.stage_outputs,
			error_message = excluded.error_message`,
		rec.RunID, rec.CreatedAt, rec.UpdatedAt, string(rec.Status), string(stateJSON), string(outputsJSON), nullable(rec.ErrorMessage),
	)
	return eris.Wrapf(err, "sqlite: save run %s", rec.RunID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, created_at, updated_at, status, workflow_state, stage_outputs, error_message
		 FROM run_records WHERE run_id = ?`,
		runID,
	)
	return scanRunRecord(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.RunRecord, error) {
	query := `SELECT run_id, created_at, updated_at, status, workflow_state, stage_outputs, error_message
		 FROM run_records WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var records []model.RunRecord
	for rows.Next() {
		rec, err := scanRunRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRunRecord(row scannable) (*model.RunRecord, error) {
	var rec model.RunRecord
	var status string
	var stateJSON string
	var outputsJSON, errMsg sql.NullString

	err := row.Scan(&rec.RunID, &rec.CreatedAt, &rec.UpdatedAt, &status, &stateJSON, &outputsJSON, &errMsg)
	if err == sql.ErrNoRows {
		return nil, eris.New("run record not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run record")
	}

	rec.Status = model.RunStatus(status)
	if err := json.Unmarshal([]byte(stateJSON), &rec.WorkflowState); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal workflow state")
	}
	if outputsJSON.Valid && outputsJSON.String != "" && outputsJSON.String != "null" {
		if err := json.Unmarshal([]byte(outputsJSON.String), &rec.StageOutputs); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal stage outputs")
		}
	}
	if errMsg.Valid {
		rec.ErrorMessage = errMsg.String
	}
	return &rec, nil
}

package model

import "time"

// RunStatus is the persistence-boundary view of a run's lifecycle.
type RunStatus string

const (
	RunStatusRunning        RunStatus = "running"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusWaitingForInfo RunStatus = "waiting_for_info"
)

// RunRecord is the audit snapshot persisted for each workflow run. Created
// once per run, updated in place on completion/failure or when a
// missing-info round resumes it. Never deleted by the core.
type RunRecord struct {
	RunID         string            `json:"run_id"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Status        RunStatus         `json:"status"`
	WorkflowState WorkflowState     `json:"workflow_state"`
	StageOutputs  map[string]string `json:"stage_outputs,omitempty"`
	ErrorMessage  string            `json:"error_message,omitempty"`
}

// NewRunRecord converts a finished (or failed) WorkflowState into a
// RunRecord. Status is derived: runErr means failed; a REFER decision with
// open questions means the run is waiting on the applicant; anything else
// with a decision is completed.
func NewRunRecord(runID string, state *WorkflowState, runErr error) *RunRecord {
	now := time.Now().UTC()
	rec := &RunRecord{
		RunID:         runID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Status:        RunStatusRunning,
		WorkflowState: *state,
		StageOutputs:  stageOutputs(state),
	}

	switch {
	case runErr != nil:
		rec.Status = RunStatusFailed
		rec.ErrorMessage = runErr.Error()
	case state.Decision != nil && state.Decision.Decision == DecisionRefer && len(state.Decision.RequiredQuestions) > 0:
		rec.Status = RunStatusWaitingForInfo
	case state.Decision != nil:
		rec.Status = RunStatusCompleted
	}

	return rec
}

// Resume folds a fresh WorkflowState from a missing-info round back into an
// existing record, preserving the original creation time.
func (r *RunRecord) Resume(state *WorkflowState, runErr error) {
	next := NewRunRecord(r.RunID, state, runErr)
	next.CreatedAt = r.CreatedAt
	*r = *next
}

// stageOutputs builds a short per-stage summary from the tool-call log for
// audit display.
func stageOutputs(state *WorkflowState) map[string]string {
	out := make(map[string]string, len(state.ToolCalls))
	for _, tc := range state.ToolCalls {
		out[tc.ToolName] = tc.Timestamp.Format(time.RFC3339)
	}
	if state.CurrentStage != "" {
		out["final_stage"] = state.CurrentStage
	}
	return out
}

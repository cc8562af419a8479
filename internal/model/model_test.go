package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAnswer_StringFields(t *testing.T) {
	var sub QuoteSubmission

	assert.True(t, sub.ApplyAnswer("applicant_name", "  Jane Doe  "))
	assert.Equal(t, "Jane Doe", sub.ApplicantName)

	assert.True(t, sub.ApplyAnswer("property_type", "condo"))
	assert.Equal(t, "condo", sub.PropertyType)
}

func TestApplyAnswer_NumericCoercion(t *testing.T) {
	var sub QuoteSubmission

	// JSON decoding yields float64.
	assert.True(t, sub.ApplyAnswer("construction_year", float64(1995)))
	require.NotNil(t, sub.ConstructionYear)
	assert.Equal(t, 1995, *sub.ConstructionYear)

	// Form values arrive as strings.
	assert.True(t, sub.ApplyAnswer("square_footage", "1800.5"))
	require.NotNil(t, sub.SquareFootage)
	assert.Equal(t, 1800.5, *sub.SquareFootage)

	assert.True(t, sub.ApplyAnswer("coverage_amount", 250000))
	assert.Equal(t, 250000.0, sub.CoverageAmount)
}

func TestApplyAnswer_Rejections(t *testing.T) {
	var sub QuoteSubmission

	assert.False(t, sub.ApplyAnswer("unknown_field", "value"))
	assert.False(t, sub.ApplyAnswer("coverage_amount", "not a number"))
	assert.False(t, sub.ApplyAnswer("construction_year", []int{1995}))
	assert.Nil(t, sub.ConstructionYear)
}

func TestHazardScores_Max(t *testing.T) {
	h := HazardScores{WildfireRisk: 0.2, FloodRisk: 0.7, WindRisk: 0.1, EarthquakeRisk: 0.5}
	assert.Equal(t, 0.7, h.Max())
}

func TestHazardScores_InBounds(t *testing.T) {
	assert.True(t, HazardScores{WildfireRisk: 0, FloodRisk: 1}.InBounds())
	assert.False(t, HazardScores{WildfireRisk: 1.01}.InBounds())
	assert.False(t, HazardScores{FloodRisk: -0.01}.InBounds())
}

func TestHasHighSeverityTrigger(t *testing.T) {
	a := &UWAssessment{Triggers: []UWTrigger{
		{TriggerType: "construction_age", Severity: SeverityMedium},
	}}
	assert.False(t, a.HasHighSeverityTrigger())

	a.Triggers = append(a.Triggers, UWTrigger{TriggerType: "wildfire_risk", Severity: SeverityHigh})
	assert.True(t, a.HasHighSeverityTrigger())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.239))
	assert.Equal(t, 0.0, Round2(0.0001))
	assert.Equal(t, -2.57, Round2(-2.566))
}

func TestPremiumBreakdown_Consistent(t *testing.T) {
	p := PremiumBreakdown{BasePremium: 675.00, HazardSurcharge: 214.31, TotalPremium: 889.31}
	assert.True(t, p.Consistent())

	p.TotalPremium = 889.32
	assert.False(t, p.Consistent())
}

func TestCitationKey(t *testing.T) {
	c := RetrievalChunk{DocID: "wildfire_guidelines", Section: "Mitigation"}
	assert.Equal(t, "wildfire_guidelines:Mitigation", c.CitationKey())
}

func TestAppendToolCall(t *testing.T) {
	var state WorkflowState

	state.AppendToolCall("validate_submission", map[string]any{"a": 1}, map[string]any{"valid": true})
	state.AppendToolCall("hazard_score", nil, nil)

	require.Len(t, state.ToolCalls, 2)
	assert.Equal(t, "validate_submission", state.ToolCalls[0].ToolName)
	assert.False(t, state.ToolCalls[0].Timestamp.IsZero())
	assert.True(t, state.HasToolCall("hazard_score"))
	assert.False(t, state.HasToolCall("rating_calculation"))
}

func TestNewRunRecord_StatusDerivation(t *testing.T) {
	state := &WorkflowState{}

	// Error wins over everything.
	rec := NewRunRecord("r1", state, errors.New("boom"))
	assert.Equal(t, RunStatusFailed, rec.Status)
	assert.Equal(t, "boom", rec.ErrorMessage)

	// REFER with open questions waits for info.
	state.Decision = &Decision{
		Decision:          DecisionRefer,
		RequiredQuestions: []UWQuestion{{QuestionID: "missing_construction_year"}},
	}
	rec = NewRunRecord("r2", state, nil)
	assert.Equal(t, RunStatusWaitingForInfo, rec.Status)

	// REFER without questions is complete.
	state.Decision = &Decision{Decision: DecisionRefer}
	rec = NewRunRecord("r3", state, nil)
	assert.Equal(t, RunStatusCompleted, rec.Status)

	// ACCEPT is complete.
	state.Decision = &Decision{Decision: DecisionAccept}
	rec = NewRunRecord("r4", state, nil)
	assert.Equal(t, RunStatusCompleted, rec.Status)

	// No decision at all: still running.
	rec = NewRunRecord("r5", &WorkflowState{}, nil)
	assert.Equal(t, RunStatusRunning, rec.Status)
}

func TestRunRecord_StageOutputs(t *testing.T) {
	state := &WorkflowState{}
	state.AppendToolCall("validate_submission", nil, nil)
	state.AppendToolCall("rag_retrieval", nil, nil)
	state.Decision = &Decision{Decision: DecisionAccept}

	rec := NewRunRecord("r1", state, nil)
	assert.Contains(t, rec.StageOutputs, "validate_submission")
	assert.Contains(t, rec.StageOutputs, "rag_retrieval")
}

func TestRunRecord_Resume(t *testing.T) {
	state := &WorkflowState{Decision: &Decision{
		Decision:          DecisionRefer,
		RequiredQuestions: []UWQuestion{{QuestionID: "missing_square_footage"}},
	}}
	rec := NewRunRecord("r1", state, nil)
	created := rec.CreatedAt

	time.Sleep(5 * time.Millisecond)

	resumed := &WorkflowState{Decision: &Decision{Decision: DecisionAccept}}
	rec.Resume(resumed, nil)

	assert.Equal(t, "r1", rec.RunID)
	assert.Equal(t, RunStatusCompleted, rec.Status)
	assert.Equal(t, created, rec.CreatedAt)
	assert.True(t, rec.UpdatedAt.After(created))
	assert.Equal(t, DecisionAccept, rec.WorkflowState.Decision.Decision)
}

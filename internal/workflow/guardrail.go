package workflow

import (
	"context"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// applyCitationGuardrail enforces the evidence invariant: no non-REFER
// decision may be produced from an assessment with zero citations. When the
// assessment lacks citations the guardrail writes the terminal REFER
// decision itself and the engine skips rating; the decide node passes the
// decision through unchanged.
func (e *Engine) applyCitationGuardrail(_ context.Context, state *model.WorkflowState) error {
	assessment := state.UWAssessment

	if assessment == nil || len(assessment.Citations) == 0 {
		decision := &model.Decision{
			Decision:  model.DecisionRefer,
			Rationale: "Insufficient evidence: underwriting assessment lacks supporting guideline citations",
			Citations: []string{},
			NextSteps: []string{
				"Manual underwriter review required",
				"Guideline citations needed for decision",
			},
		}
		state.Decision = decision
		state.CitationGuardrailTriggered = true

		var have []string
		if assessment != nil {
			have = assessment.Citations
		}
		state.AppendToolCall("citation_guardrail",
			map[string]any{"assessment_citations": have},
			map[string]any{"guardrail_triggered": true, "forced_decision": *decision},
		)
	} else {
		state.CitationGuardrailTriggered = false
	}

	state.CurrentStage = string(StageGuardrail)
	return nil
}

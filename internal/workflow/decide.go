package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// makeDecision produces the terminal decision. Priority order, first match
// wins:
//  1. the citation guardrail already set a decision: pass through unchanged
//  2. missing_info non-empty: REFER with synthesized per-field questions
//  3. eligibility >= 0.7 and no high-severity trigger: ACCEPT with premium
//  4. eligibility < 0.5 or any high-severity trigger: DECLINE
//  5. otherwise: REFER for manual review with the assessment's questions
func (e *Engine) makeDecision(_ context.Context, state *model.WorkflowState) error {
	if state.CitationGuardrailTriggered && state.Decision != nil {
		state.CurrentStage = string(StageDecide)
		state.AppendToolCall("decision_making",
			map[string]any{"guardrail_triggered": true},
			map[string]any{"decision": *state.Decision},
		)
		return nil
	}

	var decision *model.Decision

	switch {
	case len(state.MissingInfo) > 0:
		decision = &model.Decision{
			Decision:          model.DecisionRefer,
			Rationale:         "Missing required information: " + strings.Join(state.MissingInfo, ", "),
			Citations:         []string{},
			RequiredQuestions: MissingFieldQuestions(state.MissingInfo),
			NextSteps:         []string{"Provide missing information and resubmit"},
		}

	default:
		assessment := state.UWAssessment
		if assessment == nil {
			return eris.New("decide: no assessment and no missing info")
		}

		switch {
		case assessment.EligibilityScore >= 0.7 && !assessment.HasHighSeverityTrigger():
			decision = &model.Decision{
				Decision:  model.DecisionAccept,
				Rationale: fmt.Sprintf("Property meets eligibility criteria. Score: %.2f", assessment.EligibilityScore),
				Citations: assessment.Citations,
				Premium:   state.PremiumBreakdown,
				NextSteps: []string{"Policy issuance", "Payment collection", "Policy document delivery"},
			}

		case assessment.EligibilityScore < 0.5 || assessment.HasHighSeverityTrigger():
			decision = &model.Decision{
				Decision:  model.DecisionDecline,
				Rationale: fmt.Sprintf("Property does not meet eligibility requirements. Score: %.2f", assessment.EligibilityScore),
				Citations: assessment.Citations,
				NextSteps: []string{
					"Notify applicant of decline",
					"Provide specific reasons",
					"Suggest improvements for future consideration",
				},
			}

		default:
			decision = &model.Decision{
				Decision:          model.DecisionRefer,
				Rationale:         fmt.Sprintf("Property requires manual review. Score: %.2f", assessment.EligibilityScore),
				Citations:         assessment.Citations,
				RequiredQuestions: assessment.RequiredQuestions,
				NextSteps:         []string{"Underwriter manual review", "Additional documentation may be required"},
			}
		}
	}

	state.Decision = decision
	state.CurrentStage = string(StageDecide)

	input := map[string]any{"missing_info": state.MissingInfo}
	if state.UWAssessment != nil {
		input["eligibility_score"] = state.UWAssessment.EligibilityScore
		input["triggers"] = state.UWAssessment.Triggers
	}
	state.AppendToolCall("decision_making", input, map[string]any{"decision": *decision})
	return nil
}

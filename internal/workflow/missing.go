package workflow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// handleMissingInfo has two mutually exclusive behaviors. With answers
// supplied at invocation it applies them to the submission, clears the
// missing-field list, and lets the engine re-route to enrich. Without
// answers it synthesizes one question per missing field and sets a terminal
// REFER decision carrying them.
func (e *Engine) handleMissingInfo(_ context.Context, state *model.WorkflowState) error {
	if len(state.AdditionalAnswers) > 0 {
		applied := make([]string, 0, len(state.AdditionalAnswers))
		var skipped []string
		for field, value := range state.AdditionalAnswers {
			if state.QuoteSubmission.ApplyAnswer(field, value) {
				applied = append(applied, field)
			} else {
				skipped = append(skipped, field)
			}
		}
		if len(skipped) > 0 {
			zap.L().Warn("workflow: unusable answers ignored", zap.Strings("fields", skipped))
		}

		state.AppendToolCall("process_additional_answers",
			map[string]any{"additional_answers": state.AdditionalAnswers},
			map[string]any{
				"applied":            applied,
				"skipped":            skipped,
				"updated_submission": state.QuoteSubmission,
			},
		)

		state.MissingInfo = nil
		state.AdditionalAnswers = nil // consumed: the decide back-edge must not loop again
		state.CurrentStage = string(StageMissingInfo)
		return nil
	}

	questions := MissingFieldQuestions(state.MissingInfo)
	decision := &model.Decision{
		Decision:          model.DecisionRefer,
		Rationale:         "Additional information required: " + strings.Join(state.MissingInfo, ", "),
		Citations:         []string{},
		RequiredQuestions: questions,
		NextSteps:         []string{"Provide missing information and resubmit"},
	}
	state.Decision = decision
	state.CurrentStage = string(StageMissingInfo)
	state.AppendToolCall("generate_missing_info_questions",
		map[string]any{"missing_info": state.MissingInfo},
		map[string]any{"questions": questions},
	)
	return nil
}

// MissingFieldQuestions synthesizes one required text question per missing
// field, with the id form missing_<field>.
func MissingFieldQuestions(fields []string) []model.UWQuestion {
	questions := make([]model.UWQuestion, 0, len(fields))
	for _, field := range fields {
		questions = append(questions, model.UWQuestion{
			QuestionID:   "missing_" + field,
			QuestionText: "Please provide " + strings.ReplaceAll(field, "_", " "),
			QuestionType: model.QuestionText,
			Required:     true,
		})
	}
	return questions
}

package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

const maxCoverageAmount = 10_000_000

// validateSubmission checks the submission for completeness and basic
// plausibility. Every check runs; each failure appends the canonical field
// name to missing_info (no short-circuit). Downstream branching reads only
// whether the list is empty.
func (e *Engine) validateSubmission(_ context.Context, state *model.WorkflowState) error {
	sub := &state.QuoteSubmission

	var missing []string
	problems := map[string]string{}
	flag := func(field, reason string) {
		missing = append(missing, field)
		problems[field] = reason
	}

	if strings.TrimSpace(sub.ApplicantName) == "" {
		flag("applicant_name", "applicant name is required")
	}
	if strings.TrimSpace(sub.Address) == "" {
		flag("address", "address is required")
	}
	if strings.TrimSpace(sub.PropertyType) == "" {
		flag("property_type", "property type is required")
	}
	if sub.CoverageAmount <= 0 {
		flag("coverage_amount", "coverage amount must be greater than zero")
	} else if sub.CoverageAmount > maxCoverageAmount {
		flag("coverage_amount", "coverage amount exceeds maximum limit")
	}
	switch {
	case sub.ConstructionYear == nil:
		flag("construction_year", "construction year is required")
	case *sub.ConstructionYear > time.Now().Year():
		flag("construction_year", "construction year cannot be in the future")
	case *sub.ConstructionYear < 1800:
		flag("construction_year", "construction year seems too old")
	}
	if sub.SquareFootage == nil {
		flag("square_footage", "square footage is required")
	}

	state.MissingInfo = missing
	state.CurrentStage = string(StageValidate)
	state.AppendToolCall("validate_submission",
		map[string]any{"submission": *sub},
		map[string]any{
			"missing_info": missing,
			"problems":     problems,
			"valid":        len(missing) == 0,
		},
	)
	return nil
}

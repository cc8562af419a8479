package workflow

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// ratePolicy prices the submission. Runs only when the citation guardrail
// passed; enrichment is guaranteed present on this path.
func (e *Engine) ratePolicy(ctx context.Context, state *model.WorkflowState) error {
	sub := &state.QuoteSubmission
	if state.EnrichmentResult == nil {
		return eris.New("rate: enrichment result missing")
	}
	hazard := state.EnrichmentResult.HazardScores

	premium, err := e.rater.Price(ctx, sub.CoverageAmount, sub.PropertyType, hazard, sub.ConstructionYear)
	if err != nil {
		return eris.Wrap(err, "rate: price")
	}
	if !premium.Consistent() {
		return eris.Errorf("rate: premium total %.2f != base + surcharge", premium.TotalPremium)
	}

	state.PremiumBreakdown = premium
	state.CurrentStage = string(StageRate)
	state.AppendToolCall("rating_calculation",
		map[string]any{
			"coverage_amount":   sub.CoverageAmount,
			"property_type":     sub.PropertyType,
			"hazard_scores":     hazard,
			"construction_year": sub.ConstructionYear,
		},
		map[string]any{"premium_breakdown": *premium},
	)
	return nil
}

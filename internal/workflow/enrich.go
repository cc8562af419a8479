package workflow

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
)

// enrichData normalizes the address and scores hazards, assembling the
// EnrichmentResult. Collaborator failures are not swallowed: rating and
// assessment both need complete hazard data, so a partial enrichment is
// worse than a failed run.
func (e *Engine) enrichData(ctx context.Context, state *model.WorkflowState) error {
	sub := &state.QuoteSubmission

	addr, err := e.normalize.Normalize(ctx, sub)
	if err != nil {
		return eris.Wrap(err, "enrich: normalize address")
	}
	state.AppendToolCall("address_normalize",
		map[string]any{"address": sub.Address},
		map[string]any{"normalized_address": *addr},
	)

	scores, err := e.hazard.Score(ctx, addr)
	if err != nil {
		return eris.Wrap(err, "enrich: hazard score")
	}
	if !scores.InBounds() {
		return eris.Errorf("enrich: hazard scores out of bounds: %+v", *scores)
	}
	state.AppendToolCall("hazard_score",
		map[string]any{"address": *addr},
		map[string]any{"hazard_scores": *scores},
	)

	state.EnrichmentResult = &model.EnrichmentResult{
		NormalizedAddress: *addr,
		HazardScores:      *scores,
		PropertyDetails: map[string]any{
			"property_type":     sub.PropertyType,
			"construction_year": sub.ConstructionYear,
			"square_footage":    sub.SquareFootage,
			"roof_type":         sub.RoofType,
			"foundation_type":   sub.FoundationType,
		},
	}
	state.CurrentStage = string(StageEnrich)
	return nil
}
